package ai

import "strings"

// USD per million tokens. Unknown models report zero cost.
var modelPricing = map[string]struct{ in, out float64 }{
	"gpt-4o":            {2.50, 10.00},
	"gpt-4o-mini":       {0.15, 0.60},
	"deepseek-chat":     {0.27, 1.10},
	"deepseek-reasoner": {0.55, 2.19},
	"qwen3-max":         {1.20, 6.00},
	"qwen-plus":         {0.40, 1.20},
	"qwen-turbo":        {0.05, 0.20},
}

// CostUSD estimates the dollar cost of a single request.
func CostUSD(model string, usage Usage) (input, output float64) {
	p, ok := modelPricing[model]
	if !ok {
		return 0, 0
	}
	input = float64(usage.PromptTokens) * p.in / 1e6
	output = float64(usage.CompletionTokens) * p.out / 1e6
	return input, output
}

// ModelFamily groups model ids for cost aggregation ("gpt-4o-mini" -> "gpt").
func ModelFamily(model string) string {
	if i := strings.IndexByte(model, '-'); i > 0 {
		return model[:i]
	}
	return model
}
