package config

import "fmt"

// Issue is a single validation problem.
type Issue struct {
	Path    string
	Message string
}

var validBinds = map[string]bool{
	"loopback": true,
	"lan":      true,
	"custom":   true,
}

// Validate checks the configuration for the requested services and returns
// all problems found. An empty slice means the config is usable.
func Validate(cfg *Config, agent, processor bool) []Issue {
	var issues []Issue

	if cfg.Server.AgentPort < 1 || cfg.Server.AgentPort > 65535 {
		issues = append(issues, Issue{
			Path:    "server.agentPort",
			Message: fmt.Sprintf("port %d out of range", cfg.Server.AgentPort),
		})
	}
	if cfg.Server.ProcessorPort < 1 || cfg.Server.ProcessorPort > 65535 {
		issues = append(issues, Issue{
			Path:    "server.processorPort",
			Message: fmt.Sprintf("port %d out of range", cfg.Server.ProcessorPort),
		})
	}
	if agent && processor && cfg.Server.AgentPort == cfg.Server.ProcessorPort {
		issues = append(issues, Issue{
			Path:    "server.processorPort",
			Message: "agent and processor services cannot share a port",
		})
	}
	if !validBinds[cfg.Server.Bind] {
		issues = append(issues, Issue{
			Path:    "server.bind",
			Message: "must be one of: loopback, lan, custom",
		})
	}
	if cfg.Server.Bind == "custom" && cfg.Server.CustomBindHost == "" {
		issues = append(issues, Issue{
			Path:    "server.customBindHost",
			Message: "required when bind is custom",
		})
	}

	if agent {
		if cfg.Agent.EngineID == "" {
			issues = append(issues, Issue{
				Path:    "agent.engineId",
				Message: "reasoning engine ID is required for the agent service",
			})
		}
		if cfg.Agent.Credentials == "" && cfg.Agent.Token == "" {
			issues = append(issues, Issue{
				Path:    "agent.credentials",
				Message: "set agent.credentials (service-account JSON) or agent.token",
			})
		}
	}

	if processor {
		if cfg.Gemini.APIKey == "" {
			issues = append(issues, Issue{
				Path:    "gemini.apiKey",
				Message: "API key is required for the processor service",
			})
		}
		if cfg.Gemini.Retry.MaxAttempts < 1 {
			issues = append(issues, Issue{
				Path:    "gemini.retry.maxAttempts",
				Message: "must be at least 1",
			})
		}
		if cfg.Gemini.Retry.Multiplier < 1 {
			issues = append(issues, Issue{
				Path:    "gemini.retry.multiplier",
				Message: "must be at least 1",
			})
		}
		if cfg.Processor.ImagesPerRequest < 1 {
			issues = append(issues, Issue{
				Path:    "processor.imagesPerRequest",
				Message: "must be at least 1",
			})
		}
		if cfg.Processor.MaxConcurrent < 1 {
			issues = append(issues, Issue{
				Path:    "processor.maxConcurrent",
				Message: "must be at least 1",
			})
		}
		if cfg.Outputs.Index != "sqlite" && cfg.Outputs.Index != "none" {
			issues = append(issues, Issue{
				Path:    "outputs.index",
				Message: "must be one of: sqlite, none",
			})
		}
	}

	return issues
}
