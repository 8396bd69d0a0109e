package gateway

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/codebyNJ/Justifyai/internal/artifacts"
	"github.com/codebyNJ/Justifyai/internal/config"
	"github.com/codebyNJ/Justifyai/internal/domain"
	"github.com/codebyNJ/Justifyai/internal/logging"
	"github.com/codebyNJ/Justifyai/internal/processor"
	"github.com/codebyNJ/Justifyai/internal/version"
)

// processingTimeout bounds one full pipeline run, image generation included.
const processingTimeout = 10 * time.Minute

// ProcessorServer exposes the processing pipeline over HTTP in three
// delivery modes: aggregate, server-sent events, and webhook.
type ProcessorServer struct {
	*Server
	pipeline  *processor.Pipeline
	generator *processor.Generator
	store     *artifacts.Store
	cfg       config.ProcessorConfig
	log       *logging.Logger
	webhooks  *webhookDeliverer
	startedAt time.Time
}

// NewProcessorServer wires the processor routes.
func NewProcessorServer(cfg config.Config, pipeline *processor.Pipeline, generator *processor.Generator, store *artifacts.Store, log *logging.Logger) *ProcessorServer {
	plog := log.Sub("processor-gateway")
	s := &ProcessorServer{
		pipeline:  pipeline,
		generator: generator,
		store:     store,
		cfg:       cfg.Processor,
		log:       plog,
		webhooks:  newWebhookDeliverer(time.Duration(cfg.Processor.WebhookTimeoutSeconds)*time.Second, plog),
		startedAt: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /process", s.handleProcess)
	mux.HandleFunc("POST /process-simple", s.handleProcessSimple)
	mux.HandleFunc("POST /process-streaming", s.handleProcessStreaming)
	mux.HandleFunc("POST /process-webhook", s.handleProcessWebhook)
	mux.HandleFunc("POST /generate-image", s.handleGenerateImage)
	mux.HandleFunc("GET /results", s.handleResults)

	s.Server = newServer("processor", cfg.Server, cfg.Server.ProcessorPort, mux, s.log)
	return s
}

func (s *ProcessorServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		handleNotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "justifyai processor",
		"status":  "running",
		"version": version.Version,
	})
}

func (s *ProcessorServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"uptimeSeconds": int(time.Since(s.startedAt).Seconds()),
	})
}

// processRequest is the body shared by every processing endpoint.
type processRequest struct {
	APIOutput     domain.APIOutput `json:"apiOutput"`
	GenerateImage *bool            `json:"generateImage,omitempty"`
	ImageCount    int              `json:"imageCount,omitempty"`
	WebhookURL    string           `json:"webhookUrl,omitempty"`
}

func (req processRequest) input(generateImageDefault bool) processor.Input {
	generate := generateImageDefault
	if req.GenerateImage != nil {
		generate = *req.GenerateImage
	}
	return processor.Input{
		Output:         req.APIOutput,
		GenerateImages: generate,
		ImageCount:     req.ImageCount,
	}
}

// handleProcess runs the full pipeline and returns the aggregate result.
func (s *ProcessorServer) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), processingTimeout)
	defer cancel()

	result, err := s.pipeline.Run(ctx, req.input(true))
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	writeJSON(w, resultStatusCode(result), result)
}

// handleProcessSimple runs text processing only, never images.
func (s *ProcessorServer) handleProcessSimple(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), processingTimeout)
	defer cancel()

	in := req.input(false)
	in.GenerateImages = false
	result, err := s.pipeline.Run(ctx, in)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	writeJSON(w, resultStatusCode(result), result)
}

// resultStatusCode maps a failed text stage to a server error. The body is
// the full result record either way.
func resultStatusCode(result domain.ProcessingResult) int {
	if result.Status == domain.StatusError {
		return http.StatusInternalServerError
	}
	return http.StatusOK
}

// handleProcessStreaming relays pipeline stages as server-sent events:
// formatted_content, then one image event per slot, then complete or error.
func (s *ProcessorServer) handleProcessStreaming(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if !decodeBody(w, r, &req) {
		return
	}

	in := req.input(true)
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	stream, ok := newSSEStream(w)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), processingTimeout)
	defer cancel()

	result, err := s.pipeline.RunStaged(ctx, in, processor.Hooks{
		OnFormatted: func(fc domain.FormattedContent, proof []string) {
			stream.Send("formatted_content", map[string]any{
				"formattedContent": fc,
				"proof":            proof,
			})
		},
		OnImage: func(img domain.ImageArtifact) {
			stream.Send("image", img)
		},
	})
	if err != nil {
		stream.Send("error", ErrorResponse{Error: err.Error()})
		return
	}
	if result.Status == domain.StatusError {
		stream.Send("error", ErrorResponse{Error: result.Error})
		return
	}
	stream.Send("complete", result)
}

// handleProcessWebhook answers with the formatted text as soon as it is
// ready, then finishes image generation in the background and posts the
// full result to the caller's webhook.
func (s *ProcessorServer) handleProcessWebhook(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.WebhookURL) == "" {
		writeError(w, http.StatusBadRequest, "webhookUrl is required")
		return
	}

	in := req.input(true)
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	type outcome struct {
		result domain.ProcessingResult
		err    error
	}
	formatted := make(chan map[string]any, 1)
	done := make(chan outcome, 1)

	// The run outlives this handler, so it cannot hang off r.Context().
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), processingTimeout)
		defer cancel()

		result, err := s.pipeline.RunStaged(ctx, in, processor.Hooks{
			OnFormatted: func(fc domain.FormattedContent, proof []string) {
				formatted <- map[string]any{
					"sessionId":        req.APIOutput.SessionID,
					"formattedContent": fc,
					"proof":            proof,
					"imagesPending":    in.GenerateImages,
					"webhookUrl":       req.WebhookURL,
				}
			},
		})
		done <- outcome{result: result, err: err}
	}()

	// Either the text stage completed or the run ended early because
	// formatting failed. A fast run can have both channels ready; the
	// formatted payload wins so the response and delivery behavior do not
	// depend on timing.
	select {
	case payload := <-formatted:
		writeJSON(w, http.StatusOK, payload)
	case out := <-done:
		select {
		case payload := <-formatted:
			writeJSON(w, http.StatusOK, payload)
			done <- out
		default:
			if out.err != nil {
				writeError(w, http.StatusInternalServerError, "%v", out.err)
				return
			}
			writeJSON(w, resultStatusCode(out.result), out.result)
			return
		}
	}

	if !in.GenerateImages {
		return
	}
	go func() {
		out := <-done
		if out.err != nil {
			s.log.Error().Str("sessionId", in.Output.SessionID).Err(out.err).Msg("webhook processing failed")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.WebhookTimeoutSeconds)*time.Second+time.Minute)
		defer cancel()
		s.webhooks.Deliver(ctx, req.WebhookURL, out.result)
	}()
}

type generateImageRequest struct {
	Prompt string `json:"prompt"`
	Count  int    `json:"count,omitempty"`
}

// handleGenerateImage renders images for an arbitrary prompt, outside the
// query pipeline.
func (s *ProcessorServer) handleGenerateImage(w http.ResponseWriter, r *http.Request) {
	var req generateImageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	count := req.Count
	if count < 1 {
		count = s.cfg.ImagesPerRequest
	}
	if count < 1 {
		count = 1
	}

	ctx, cancel := context.WithTimeout(r.Context(), processingTimeout)
	defer cancel()

	images := s.generator.Generate(ctx, req.Prompt, count, time.Now().Unix())
	writeJSON(w, http.StatusOK, map[string]any{
		"images": images,
		"count":  len(images),
	})
}

// handleResults lists recent pipeline runs from the artifact index.
func (s *ProcessorServer) handleResults(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}
