package metrics

import (
	"context"
	"time"

	"minerva/pkg/logger"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// CustomCollector collects platform-level gauges from the databases
type CustomCollector struct {
	log      *logger.Logger
	postgres *sqlx.DB
	redis    *redis.Client

	// Descriptors
	totalUsers         *prometheus.Desc
	totalStrategies    *prometheus.Desc
	totalSubscriptions *prometheus.Desc
	signals24h         *prometheus.Desc
	memoryEntries      *prometheus.Desc
}

// NewCustomCollector creates a new custom metrics collector
func NewCustomCollector(log *logger.Logger, postgres *sqlx.DB, rdb *redis.Client) *CustomCollector {
	return &CustomCollector{
		log:      log,
		postgres: postgres,
		redis:    rdb,

		totalUsers: prometheus.NewDesc(
			"minerva_total_users",
			"Total number of registered users",
			nil, nil,
		),
		totalStrategies: prometheus.NewDesc(
			"minerva_total_strategies",
			"Total number of strategies by status",
			[]string{"status"}, nil,
		),
		totalSubscriptions: prometheus.NewDesc(
			"minerva_total_subscriptions",
			"Total number of subscriptions by state",
			[]string{"state"}, nil,
		),
		signals24h: prometheus.NewDesc(
			"minerva_signals_24h",
			"Signals generated in the last 24h by kind",
			[]string{"kind"}, nil,
		),
		memoryEntries: prometheus.NewDesc(
			"minerva_agent_memory_entries",
			"Stored agent memory entries",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *CustomCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalUsers
	ch <- c.totalStrategies
	ch <- c.totalSubscriptions
	ch <- c.signals24h
	ch <- c.memoryEntries
}

// Collect implements prometheus.Collector
func (c *CustomCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.collectUserCount(ctx, ch)
	c.collectStrategyStats(ctx, ch)
	c.collectSubscriptionStats(ctx, ch)
	c.collectSignalStats(ctx, ch)
	c.collectMemoryEntries(ctx, ch)
}

func (c *CustomCollector) collectUserCount(ctx context.Context, ch chan<- prometheus.Metric) {
	var count int
	err := c.postgres.GetContext(ctx, &count, "SELECT COUNT(*) FROM users WHERE is_active = true")
	if err != nil {
		c.log.Error("Failed to collect user count metric", "error", err)
		return
	}

	ch <- prometheus.MustNewConstMetric(
		c.totalUsers,
		prometheus.GaugeValue,
		float64(count),
	)
}

func (c *CustomCollector) collectStrategyStats(ctx context.Context, ch chan<- prometheus.Metric) {
	type StrategyStat struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}

	var stats []StrategyStat
	err := c.postgres.SelectContext(ctx, &stats, `
		SELECT status, COUNT(*) as count
		FROM strategies
		GROUP BY status
	`)
	if err != nil {
		c.log.Error("Failed to collect strategy stats", "error", err)
		return
	}

	for _, stat := range stats {
		ch <- prometheus.MustNewConstMetric(
			c.totalStrategies,
			prometheus.GaugeValue,
			float64(stat.Count),
			stat.Status,
		)
	}
}

func (c *CustomCollector) collectSubscriptionStats(ctx context.Context, ch chan<- prometheus.Metric) {
	type SubscriptionStat struct {
		Active bool `db:"is_active"`
		Count  int  `db:"count"`
	}

	var stats []SubscriptionStat
	err := c.postgres.SelectContext(ctx, &stats, `
		SELECT is_active, COUNT(*) as count
		FROM subscriptions
		GROUP BY is_active
	`)
	if err != nil {
		c.log.Error("Failed to collect subscription stats", "error", err)
		return
	}

	for _, stat := range stats {
		state := "active"
		if !stat.Active {
			state = "paused"
		}
		ch <- prometheus.MustNewConstMetric(
			c.totalSubscriptions,
			prometheus.GaugeValue,
			float64(stat.Count),
			state,
		)
	}
}

func (c *CustomCollector) collectSignalStats(ctx context.Context, ch chan<- prometheus.Metric) {
	type SignalStat struct {
		Kind  string `db:"kind"`
		Count int    `db:"count"`
	}

	var stats []SignalStat
	err := c.postgres.SelectContext(ctx, &stats, `
		SELECT kind, COUNT(*) as count
		FROM signals
		WHERE created_at > NOW() - INTERVAL '24 hours'
		GROUP BY kind
	`)
	if err != nil {
		c.log.Error("Failed to collect signal stats", "error", err)
		return
	}

	for _, stat := range stats {
		ch <- prometheus.MustNewConstMetric(
			c.signals24h,
			prometheus.GaugeValue,
			float64(stat.Count),
			stat.Kind,
		)
	}
}

func (c *CustomCollector) collectMemoryEntries(ctx context.Context, ch chan<- prometheus.Metric) {
	var count int
	err := c.postgres.GetContext(ctx, &count, "SELECT COUNT(*) FROM memories")
	if err != nil {
		c.log.Error("Failed to collect memory entry count", "error", err)
		return
	}

	ch <- prometheus.MustNewConstMetric(
		c.memoryEntries,
		prometheus.GaugeValue,
		float64(count),
	)
}

// RegisterCustomCollector registers the custom collector
func RegisterCustomCollector(collector *CustomCollector) {
	prometheus.MustRegister(collector)
}
