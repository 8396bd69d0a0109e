package processor

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/codebyNJ/Justifyai/internal/artifacts"
	"github.com/codebyNJ/Justifyai/internal/domain"
	"github.com/codebyNJ/Justifyai/internal/gemini"
	"github.com/codebyNJ/Justifyai/internal/logging"
	"github.com/codebyNJ/Justifyai/internal/retry"
)

// Generator renders images for processed queries. Each requested image is a
// slot: the model fallback list is walked per slot, with transient failures
// retried per model, and a slot that exhausts every model yields an error
// artifact rather than failing the batch.
type Generator struct {
	client        gemini.Client
	models        []string
	policy        retry.Policy
	maxConcurrent int
	store         *artifacts.Store
	log           *logging.Logger
}

// NewGenerator builds a generator over the priority-ordered model list.
func NewGenerator(client gemini.Client, models []string, policy retry.Policy, maxConcurrent int, store *artifacts.Store, log *logging.Logger) *Generator {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Generator{
		client:        client,
		models:        models,
		policy:        policy,
		maxConcurrent: maxConcurrent,
		store:         store,
		log:           log.Sub("images"),
	}
}

// Generate renders count images for prompt. The returned slice always has
// exactly count entries, in slot order; failed slots carry error artifacts.
func (g *Generator) Generate(ctx context.Context, prompt string, count int, ts int64) []domain.ImageArtifact {
	out := make([]domain.ImageArtifact, count)

	var eg errgroup.Group
	eg.SetLimit(g.maxConcurrent)
	for slot := 0; slot < count; slot++ {
		eg.Go(func() error {
			out[slot] = g.generateSlot(ctx, prompt, ts, slot)
			return nil
		})
	}
	eg.Wait()
	return out
}

func (g *Generator) generateSlot(ctx context.Context, prompt string, ts int64, slot int) domain.ImageArtifact {
	var failures []string
	for _, model := range g.models {
		var data []byte
		err := g.policy.Do(ctx, retry.IsTransient, func(ctx context.Context) error {
			var genErr error
			data, genErr = g.client.GenerateImage(ctx, model, prompt)
			return genErr
		})
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", model, err))
			g.log.Warn().Int("slot", slot).Str("model", model).Err(err).Msg("image model failed")
			if ctx.Err() != nil {
				break
			}
			continue
		}

		filename, saveErr := g.store.SaveImage(ts, slot, model, data)
		if saveErr != nil {
			g.log.Warn().Int("slot", slot).Err(saveErr).Msg("image persist failed")
		}

		return domain.ImageArtifact{
			ID:         uuid.NewString(),
			Filename:   filename,
			Base64Data: base64.StdEncoding.EncodeToString(data),
			Format:     domain.ImageFormatPNG,
			SizeBytes:  len(data),
			Prompt:     prompt,
			ModelUsed:  model,
		}
	}

	summary := "all models failed: " + strings.Join(failures, "; ")
	note := fmt.Sprintf("prompt: %s\nmodels tried: %s\ntime: %s\nerrors: %s\n",
		prompt,
		strings.Join(g.models, ", "),
		time.Unix(ts, 0).UTC().Format(time.RFC3339),
		strings.Join(failures, "; "))
	filename, err := g.store.SaveErrorNote(ts, slot, note)
	if err != nil {
		g.log.Warn().Int("slot", slot).Err(err).Msg("error note persist failed")
	}

	return domain.ImageArtifact{
		ID:       uuid.NewString(),
		Filename: filename,
		Format:   domain.ImageFormatError,
		Prompt:   prompt,
		Error:    summary,
	}
}
