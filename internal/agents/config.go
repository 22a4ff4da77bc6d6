package agents

import "time"

// Config captures static settings for an agent instance. Immutable
// after construction.
type Config struct {
	ID   string
	Type AgentType
	Name string

	Provider    string
	Model       string
	Temperature float64
	MaxTokens   int

	MaxRetries    int
	Timeout       time.Duration
	MaxIterations int

	Tools        []string
	SystemPrompt string

	Extra map[string]interface{}
}

// withDefaults fills zero-valued limits from platform defaults.
func (c Config) withDefaults() Config {
	if c.ID == "" {
		c.ID = string(c.Type)
	}
	if c.Name == "" {
		c.Name = string(c.Type)
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 4096
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.Timeout == 0 {
		c.Timeout = 2 * time.Minute
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = 10
	}
	return c
}

// DefaultConfigs is the static table of per-type agent settings
// consulted by the factory.
var DefaultConfigs = map[AgentType]Config{
	AgentTechnicalAnalyst: {
		Type:          AgentTechnicalAnalyst,
		Name:          "TechnicalAnalyst",
		Tools:         []string{"get_stock_price", "get_kline", "sma", "ema", "rsi", "macd", "bollinger"},
		MaxIterations: 8,
	},
	AgentFundamentalAnalyst: {
		Type:          AgentFundamentalAnalyst,
		Name:          "FundamentalAnalyst",
		Tools:         []string{"get_stock_price", "get_market_overview"},
		MaxIterations: 6,
	},
	AgentSentimentAnalyst: {
		Type:          AgentSentimentAnalyst,
		Name:          "SentimentAnalyst",
		Tools:         []string{"get_market_overview"},
		MaxIterations: 5,
	},
	AgentStrategyAnalyzer: {
		Type:          AgentStrategyAnalyzer,
		Name:          "StrategyAnalyzer",
		Tools:         []string{"get_stock_price", "get_kline", "sma", "rsi", "macd"},
		MaxIterations: 10,
	},
	AgentRiskAssessor: {
		Type:          AgentRiskAssessor,
		Name:          "RiskAssessor",
		Tools:         []string{"get_stock_price", "get_kline", "bollinger"},
		MaxIterations: 6,
	},
	AgentSignalGenerator: {
		Type:          AgentSignalGenerator,
		Name:          "SignalGenerator",
		Tools:         []string{},
		MaxIterations: 4,
	},
	AgentOrchestrator: {
		Type:          AgentOrchestrator,
		Name:          "Orchestrator",
		Tools:         []string{},
		MaxIterations: 10,
	},
	AgentSupervisor: {
		Type:          AgentSupervisor,
		Name:          "Supervisor",
		Tools:         []string{},
		MaxIterations: 10,
	},
}
