package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables expand to the empty string so a missing credential is
// detected by validation instead of being sent upstream verbatim.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so API keys can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.Agent.Credentials = expandEnvVars(cfg.Agent.Credentials)
	cfg.Agent.Token = expandEnvVars(cfg.Agent.Token)
	cfg.Gemini.APIKey = expandEnvVars(cfg.Gemini.APIKey)
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			expandSensitiveFields(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// LoadRaw reads the config file into a generic map for path-based access.
func LoadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}
	return raw, nil
}

// SaveRaw writes a generic map back to a YAML config file.
func SaveRaw(path string, raw map[string]any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	def := Defaults()
	if cfg.Agent.BaseURL == "" {
		cfg.Agent.BaseURL = def.Agent.BaseURL
	}
	if cfg.Agent.TimeoutSeconds == 0 {
		cfg.Agent.TimeoutSeconds = def.Agent.TimeoutSeconds
	}
	if cfg.Gemini.BaseURL == "" {
		cfg.Gemini.BaseURL = def.Gemini.BaseURL
	}
	if cfg.Gemini.TextModel == "" {
		cfg.Gemini.TextModel = def.Gemini.TextModel
	}
	if len(cfg.Gemini.ImageModels) == 0 {
		cfg.Gemini.ImageModels = def.Gemini.ImageModels
	}
	if cfg.Gemini.TextTimeoutSeconds == 0 {
		cfg.Gemini.TextTimeoutSeconds = def.Gemini.TextTimeoutSeconds
	}
	if cfg.Gemini.ImageTimeoutSeconds == 0 {
		cfg.Gemini.ImageTimeoutSeconds = def.Gemini.ImageTimeoutSeconds
	}
	if cfg.Gemini.Retry.MaxAttempts == 0 {
		cfg.Gemini.Retry.MaxAttempts = def.Gemini.Retry.MaxAttempts
	}
	if cfg.Gemini.Retry.BaseDelaySeconds == 0 {
		cfg.Gemini.Retry.BaseDelaySeconds = def.Gemini.Retry.BaseDelaySeconds
	}
	if cfg.Gemini.Retry.Multiplier == 0 {
		cfg.Gemini.Retry.Multiplier = def.Gemini.Retry.Multiplier
	}
	if cfg.Server.AgentPort == 0 {
		cfg.Server.AgentPort = def.Server.AgentPort
	}
	if cfg.Server.ProcessorPort == 0 {
		cfg.Server.ProcessorPort = def.Server.ProcessorPort
	}
	if cfg.Server.Bind == "" {
		cfg.Server.Bind = def.Server.Bind
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = def.Server.AllowedOrigins
	}
	if cfg.Processor.ImagesPerRequest == 0 {
		cfg.Processor.ImagesPerRequest = def.Processor.ImagesPerRequest
	}
	if cfg.Processor.MaxConcurrent == 0 {
		cfg.Processor.MaxConcurrent = def.Processor.MaxConcurrent
	}
	if cfg.Processor.WebhookTimeoutSeconds == 0 {
		cfg.Processor.WebhookTimeoutSeconds = def.Processor.WebhookTimeoutSeconds
	}
	if cfg.Outputs.Dir == "" {
		cfg.Outputs.Dir = def.Outputs.Dir
	}
	if cfg.Outputs.Index == "" {
		cfg.Outputs.Index = def.Outputs.Index
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
}

// applyEnvOverrides reads JUSTIFYAI_* environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("JUSTIFYAI_AGENT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.AgentPort = port
		}
	}
	if v := os.Getenv("JUSTIFYAI_PROCESSOR_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.ProcessorPort = port
		}
	}
	if v := os.Getenv("JUSTIFYAI_BIND"); v != "" {
		cfg.Server.Bind = v
	}
	if v := os.Getenv("JUSTIFYAI_OUTPUTS_DIR"); v != "" {
		cfg.Outputs.Dir = v
	}
	if v := os.Getenv("JUSTIFYAI_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	// PORT is honored for single-service deployments on managed platforms.
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.AgentPort = port
		}
	}
}
