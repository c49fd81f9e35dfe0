// DeepSeek Provider implementation using go-openai library.
//
// DeepSeek exposes an OpenAI-compatible API under a different base URL,
// so it reuses OpenAIProvider with its own name and endpoint.

package llm

const deepseekBaseURL = "https://api.deepseek.com/v1"

// NewDeepSeekProvider creates a new DeepSeek provider.
func NewDeepSeekProvider(apiKey, model string, maxTokens uint32, temperature float32) *OpenAIProvider {
	return newCompatibleProvider("deepseek", deepseekBaseURL, apiKey, model, maxTokens, temperature)
}
