package tools

import "time"

// Category classifies a tool for discovery.
type Category string

const (
	CategoryDataFetch    Category = "data_fetch"
	CategoryAnalysis     Category = "analysis"
	CategoryCalculation  Category = "calculation"
	CategoryMarketData   Category = "market_data"
	CategoryNews         Category = "news"
	CategoryTechnical    Category = "technical"
	CategoryFundamental  Category = "fundamental"
	CategoryRisk         Category = "risk"
	CategoryNotification Category = "notification"
	CategoryUtility      Category = "utility"
)

// RateLimit caps how often a tool may be invoked.
type RateLimit struct {
	Requests int           // Max requests per window
	Window   time.Duration // Window length
}

// Metadata describes a tool at registration time. Read-only after startup.
type Metadata struct {
	Name        string
	Description string
	Category    Category
	Version     string
	RateLimit   *RateLimit
	// Parameters is the JSON schema of the tool's arguments, in the shape
	// expected by function-calling chat APIs.
	Parameters map[string]interface{}
}
