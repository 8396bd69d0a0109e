package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/codebyNJ/Justifyai/internal/agentapi"
	"github.com/codebyNJ/Justifyai/internal/artifacts"
	"github.com/codebyNJ/Justifyai/internal/config"
	"github.com/codebyNJ/Justifyai/internal/gateway"
	"github.com/codebyNJ/Justifyai/internal/gemini"
	"github.com/codebyNJ/Justifyai/internal/processor"
	"github.com/codebyNJ/Justifyai/internal/retry"
	"github.com/codebyNJ/Justifyai/internal/session"
)

// loadConfig loads and validates config for the services being started.
func loadConfig(agent, proc bool) (config.Config, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return config.Config{}, err
	}

	issues := config.Validate(&cfg, agent, proc)
	if len(issues) > 0 {
		for _, issue := range issues {
			log.Error().Str("path", issue.Path).Msg(issue.Message)
		}
		return config.Config{}, fmt.Errorf("config validation failed with %d issue(s)", len(issues))
	}
	return cfg, nil
}

// buildAgentServer assembles the agent gateway from config.
func buildAgentServer(ctx context.Context, cfg config.Config) (*gateway.AgentServer, error) {
	client, err := agentapi.NewHTTPClient(ctx, cfg.Agent, log)
	if err != nil {
		return nil, err
	}
	sessions := session.New(client, log)
	return gateway.NewAgentServer(cfg, client, sessions, log), nil
}

// buildProcessorServer assembles the processing service from config. The
// returned cleanup closes the run index, if one was opened.
func buildProcessorServer(cfg config.Config) (*gateway.ProcessorServer, func(), error) {
	cleanup := func() {}

	var db *artifacts.DB
	if cfg.Outputs.Index == "sqlite" {
		dbPath := filepath.Join(paths.Data, "justifyai.db")
		var err error
		db, err = artifacts.OpenDB(dbPath, log)
		if err != nil {
			return nil, cleanup, fmt.Errorf("opening run index: %w", err)
		}
		cleanup = func() { db.Close() }
	}

	store, err := artifacts.NewStore(cfg.Outputs.Dir, db, log)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}

	client := gemini.NewHTTPClient(cfg.Gemini, log)
	policy := retry.Policy{
		MaxAttempts: cfg.Gemini.Retry.MaxAttempts,
		BaseDelay:   time.Duration(cfg.Gemini.Retry.BaseDelaySeconds) * time.Second,
		Multiplier:  cfg.Gemini.Retry.Multiplier,
	}

	formatter := processor.NewFormatter(client, cfg.Gemini.TextModel, policy, log)
	generator := processor.NewGenerator(client, cfg.Gemini.ImageModels, policy, cfg.Processor.MaxConcurrent, store, log)
	pipeline := processor.NewPipeline(formatter, generator, store, cfg.Processor, log)

	return gateway.NewProcessorServer(cfg, pipeline, generator, store, log), cleanup, nil
}
