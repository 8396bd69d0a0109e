package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/codebyNJ/Justifyai/internal/domain"
	"github.com/codebyNJ/Justifyai/internal/logging"
)

// webhookDeliverer posts pipeline results to caller-supplied URLs.
// Delivery is best effort: failures are logged and never retried.
type webhookDeliverer struct {
	client *http.Client
	log    *logging.Logger
}

func newWebhookDeliverer(timeout time.Duration, log *logging.Logger) *webhookDeliverer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &webhookDeliverer{
		client: &http.Client{Timeout: timeout},
		log:    log.Sub("webhook"),
	}
}

func (d *webhookDeliverer) Deliver(ctx context.Context, url string, result domain.ProcessingResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		d.log.Error().Err(err).Msg("webhook payload encode failed")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		d.log.Error().Str("url", url).Err(err).Msg("webhook request build failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		d.log.Warn().Str("url", url).Err(err).Msg("webhook delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		d.log.Warn().Str("url", url).Int("status", resp.StatusCode).Msg("webhook rejected")
		return
	}
	d.log.Info().Str("url", url).Str("sessionId", result.SessionID).Msg("webhook delivered")
}
