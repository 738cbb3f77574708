package factory

import (
	"fmt"

	"voicepad-be/pkg/llm"
	"voicepad-be/pkg/llm/gemini"
	"voicepad-be/pkg/llm/ollama"
	"voicepad-be/pkg/llm/openai"
)

// NewLLMProvider builds the configured completion backend. An empty apiKey
// for a hosted provider is an error here rather than a silent 401 later.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "gemini":
		if apiKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return gemini.NewGeminiProvider(apiKey, modelName), nil
	case "openai":
		if apiKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		return openai.NewOpenAIProvider(apiKey, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
