package ai

// ProviderName identifies a supported AI provider.
type ProviderName string

const (
	ProviderOpenAI   ProviderName = "openai"
	ProviderDeepSeek ProviderName = "deepseek"
	ProviderAlibaba  ProviderName = "alibaba"
)

// Default base URLs for the OpenAI-compatible chat endpoints.
const (
	openAIBaseURL   = "https://api.openai.com/v1"
	deepSeekBaseURL = "https://api.deepseek.com/v1"
	alibabaBaseURL  = "https://dashscope.aliyuncs.com/compatible-mode/v1"
)
