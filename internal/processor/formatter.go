package processor

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/codebyNJ/Justifyai/internal/domain"
	"github.com/codebyNJ/Justifyai/internal/gemini"
	"github.com/codebyNJ/Justifyai/internal/logging"
	"github.com/codebyNJ/Justifyai/internal/retry"
)

const concisePromptTemplate = `Reformat the following content in a concise, ` +
	`easy-to-read way. Keep the key facts and conclusions, drop filler, and ` +
	`stay under 200 words.

Content:
%s`

const detailedPromptTemplate = `Reformat the following content as a detailed, ` +
	`well-structured explanation. Organize it with clear sections, preserve ` +
	`every fact, and expand on the reasoning where it helps understanding.

Content:
%s`

// Formatter produces the concise and detailed reformattings of agent replies.
type Formatter struct {
	client gemini.Client
	model  string
	policy retry.Policy
	log    *logging.Logger
}

// NewFormatter builds a formatter that retries transient model failures
// according to policy.
func NewFormatter(client gemini.Client, model string, policy retry.Policy, log *logging.Logger) *Formatter {
	return &Formatter{
		client: client,
		model:  model,
		policy: policy,
		log:    log.Sub("formatter"),
	}
}

// Format produces a single reformatting of content in the given style.
func (f *Formatter) Format(ctx context.Context, style, content string) (string, error) {
	var template string
	switch style {
	case domain.StyleConcise:
		template = concisePromptTemplate
	case domain.StyleDetailed:
		template = detailedPromptTemplate
	default:
		return "", fmt.Errorf("unknown formatting style %q", style)
	}

	var out string
	err := f.policy.Do(ctx, retry.IsTransient, func(ctx context.Context) error {
		var err error
		out, err = f.client.GenerateText(ctx, f.model, fmt.Sprintf(template, content))
		return err
	})
	if err != nil {
		return "", fmt.Errorf("%s formatting: %w", style, err)
	}
	return out, nil
}

// FormatBoth runs the concise and detailed reformattings concurrently.
// A failure of either fails the whole call.
func (f *Formatter) FormatBoth(ctx context.Context, content string) (domain.FormattedContent, error) {
	var fc domain.FormattedContent

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fc.Concise, err = f.Format(ctx, domain.StyleConcise, content)
		return err
	})
	g.Go(func() error {
		var err error
		fc.Detailed, err = f.Format(ctx, domain.StyleDetailed, content)
		return err
	})

	if err := g.Wait(); err != nil {
		return domain.FormattedContent{}, err
	}
	return fc, nil
}
