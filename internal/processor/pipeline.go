package processor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codebyNJ/Justifyai/internal/artifacts"
	"github.com/codebyNJ/Justifyai/internal/config"
	"github.com/codebyNJ/Justifyai/internal/domain"
	"github.com/codebyNJ/Justifyai/internal/logging"
)

const imagePromptPrefix = "Create a visual representation of: "
const imagePromptLen = 100

// Input is one processing request.
type Input struct {
	Output         domain.APIOutput
	GenerateImages bool
	ImageCount     int
}

// Hooks receive intermediate outputs as they become ready. Either hook may
// be nil. Pipelines call hooks from a single goroutine, in order: formatted
// content first, then each image artifact.
type Hooks struct {
	OnFormatted func(domain.FormattedContent, []string)
	OnImage     func(domain.ImageArtifact)
}

// Pipeline runs the full processing flow: link extraction, reformatting,
// optional image generation, and result persistence.
type Pipeline struct {
	formatter *Formatter
	generator *Generator
	store     *artifacts.Store
	defaults  config.ProcessorConfig
	log       *logging.Logger

	now func() time.Time
}

// NewPipeline wires the pipeline stages together.
func NewPipeline(formatter *Formatter, generator *Generator, store *artifacts.Store, defaults config.ProcessorConfig, log *logging.Logger) *Pipeline {
	return &Pipeline{
		formatter: formatter,
		generator: generator,
		store:     store,
		defaults:  defaults,
		log:       log.Sub("pipeline"),
		now:       time.Now,
	}
}

// Validate rejects inputs the pipeline cannot work on.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Output.Response) == "" {
		return fmt.Errorf("response must not be empty")
	}
	if strings.TrimSpace(in.Output.SessionID) == "" {
		return fmt.Errorf("sessionId must not be empty")
	}
	return nil
}

// Run processes in and returns the aggregate result. Model failures are
// reported inside the result, not as an error; the error return covers
// invalid input and cancelled contexts only.
func (p *Pipeline) Run(ctx context.Context, in Input) (domain.ProcessingResult, error) {
	return p.RunStaged(ctx, in, Hooks{})
}

// RunStaged is Run with stage hooks for streaming delivery modes.
func (p *Pipeline) RunStaged(ctx context.Context, in Input, hooks Hooks) (domain.ProcessingResult, error) {
	if err := in.Validate(); err != nil {
		return domain.ProcessingResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.ProcessingResult{}, err
	}

	start := p.now()
	result := domain.ProcessingResult{
		OriginalQuery: domain.QueryPreview(in.Output.Response),
		SessionID:     in.Output.SessionID,
		Timestamp:     start.UTC(),
	}

	result.Proof = ExtractHyperlinks(in.Output.Response)

	formatted, err := p.formatter.FormatBoth(ctx, in.Output.Response)
	if err != nil {
		if ctx.Err() != nil {
			return domain.ProcessingResult{}, ctx.Err()
		}
		p.log.Error().Str("sessionId", in.Output.SessionID).Err(err).Msg("formatting failed")
		result.Status = domain.StatusError
		result.Error = err.Error()
		result.Images = []domain.ImageArtifact{}
		p.persist(ctx, result)
		return result, nil
	}
	result.FormattedContent = formatted
	if hooks.OnFormatted != nil {
		hooks.OnFormatted(formatted, result.Proof)
	}

	result.Images = []domain.ImageArtifact{}
	if in.GenerateImages {
		count := in.ImageCount
		if count < 1 {
			count = p.defaults.ImagesPerRequest
		}
		if count < 1 {
			count = 1
		}

		prompt := imagePrompt(in.Output.Response)
		result.Images = p.generator.Generate(ctx, prompt, count, start.Unix())
		if hooks.OnImage != nil {
			for _, img := range result.Images {
				hooks.OnImage(img)
			}
		}
	}

	result.Status = domain.StatusSuccess
	p.persist(ctx, result)

	p.log.Info().
		Str("sessionId", in.Output.SessionID).
		Int("links", len(result.Proof)).
		Int("images", len(result.Images)).
		Dur("duration", p.now().Sub(start)).
		Msg("processing complete")
	return result, nil
}

// persist writes the result record; persistence problems are logged, never
// surfaced to the caller.
func (p *Pipeline) persist(ctx context.Context, result domain.ProcessingResult) {
	if p.store == nil {
		return
	}
	if _, err := p.store.SaveResult(ctx, result); err != nil {
		p.log.Warn().Str("sessionId", result.SessionID).Err(err).Msg("result persist failed")
	}
}

func imagePrompt(response string) string {
	if len(response) > imagePromptLen {
		response = response[:imagePromptLen]
	}
	return imagePromptPrefix + response
}
