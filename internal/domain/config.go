package domain

// Provider defaults, matching the OpenAI models the service was built against.
const (
	DefaultEmbeddingModel  = "text-embedding-ada-002"
	DefaultCompletionModel = "gpt-3.5-turbo"
	DefaultMaxTokens       = 200
	DefaultTemperature     = 0.2
	DefaultMaxWords        = 500
)

// SystemPrompt constrains the assistant to the retrieved context.
const SystemPrompt = "You are a helpful assistant that answers using the given context."
