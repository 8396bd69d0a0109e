package config

// Config is the root configuration for the JustifyAI backend services.
type Config struct {
	Agent     AgentConfig     `yaml:"agent,omitempty"`
	Gemini    GeminiConfig    `yaml:"gemini,omitempty"`
	Server    ServerConfig    `yaml:"server,omitempty"`
	Processor ProcessorConfig `yaml:"processor,omitempty"`
	Outputs   OutputsConfig   `yaml:"outputs,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
}

// AgentConfig points at the hosted conversational agent backend.
type AgentConfig struct {
	BaseURL string `yaml:"baseUrl,omitempty"` // agent backend API root
	// EngineID is the fully-qualified reasoning engine resource name,
	// e.g. "projects/NNN/locations/us-central1/reasoningEngines/NNN".
	EngineID string `yaml:"engineId,omitempty"`
	// Credentials is service-account JSON, usually "${GOOGLE_CREDENTIALS}".
	Credentials string `yaml:"credentials,omitempty"`
	// Token is a static bearer token alternative to Credentials.
	Token          string `yaml:"token,omitempty"`
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"`
}

// GeminiConfig configures the generative-model API used for formatting
// and image generation.
type GeminiConfig struct {
	APIKey    string `yaml:"apiKey,omitempty"` // usually "${GEMINI_API_KEY}"
	BaseURL   string `yaml:"baseUrl,omitempty"`
	TextModel string `yaml:"textModel,omitempty"`
	// ImageModels is the priority-ordered fallback list tried per image slot.
	ImageModels         []string    `yaml:"imageModels,omitempty"`
	TextTimeoutSeconds  int         `yaml:"textTimeoutSeconds,omitempty"`
	ImageTimeoutSeconds int         `yaml:"imageTimeoutSeconds,omitempty"`
	Retry               RetryConfig `yaml:"retry,omitempty"`
}

// RetryConfig defines the transient-error backoff schedule for model calls.
type RetryConfig struct {
	MaxAttempts      int     `yaml:"maxAttempts,omitempty"`
	BaseDelaySeconds int     `yaml:"baseDelaySeconds,omitempty"`
	Multiplier       float64 `yaml:"multiplier,omitempty"`
}

// ServerConfig controls the two HTTP listeners.
type ServerConfig struct {
	AgentPort      int      `yaml:"agentPort,omitempty"`
	ProcessorPort  int      `yaml:"processorPort,omitempty"`
	Bind           string   `yaml:"bind,omitempty"` // "loopback" | "lan" | "custom"
	CustomBindHost string   `yaml:"customBindHost,omitempty"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

// ProcessorConfig tunes the processing pipeline.
type ProcessorConfig struct {
	ImagesPerRequest int `yaml:"imagesPerRequest,omitempty"`
	// MaxConcurrent bounds simultaneous blocking generative-model calls.
	MaxConcurrent         int `yaml:"maxConcurrent,omitempty"`
	WebhookTimeoutSeconds int `yaml:"webhookTimeoutSeconds,omitempty"`
}

// OutputsConfig controls durable result persistence.
type OutputsConfig struct {
	Dir string `yaml:"dir,omitempty"` // root for result records and images
	// Index selects the pipeline-run record index: "sqlite" or "none".
	Index string `yaml:"index,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" ... "trace"
}
