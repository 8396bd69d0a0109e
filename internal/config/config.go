package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Agent: AgentConfig{
			BaseURL:        "https://us-central1-aiplatform.googleapis.com/v1",
			Credentials:    "${GOOGLE_CREDENTIALS}",
			TimeoutSeconds: 120,
		},
		Gemini: GeminiConfig{
			APIKey:              "${GEMINI_API_KEY}",
			BaseURL:             "https://generativelanguage.googleapis.com/v1beta",
			TextModel:           "gemini-1.5-flash",
			ImageModels:         []string{"gemini-2.5-flash-image-preview"},
			TextTimeoutSeconds:  120,
			ImageTimeoutSeconds: 300,
			Retry: RetryConfig{
				MaxAttempts:      3,
				BaseDelaySeconds: 2,
				Multiplier:       2,
			},
		},
		Server: ServerConfig{
			AgentPort:      8000,
			ProcessorPort:  8001,
			Bind:           "loopback",
			AllowedOrigins: []string{"*"},
		},
		Processor: ProcessorConfig{
			ImagesPerRequest:      1,
			MaxConcurrent:         4,
			WebhookTimeoutSeconds: 30,
		},
		Outputs: OutputsConfig{
			Dir:   "outputs",
			Index: "sqlite",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
