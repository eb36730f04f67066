package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/davidbz/quill/internal/config"
	"github.com/davidbz/quill/internal/domain"
	"github.com/davidbz/quill/internal/observability"
)

// maxRequestBody caps the POST body size.
const maxRequestBody = 1 << 20

// Handler handles HTTP requests.
type Handler struct {
	service    *domain.CompletionService
	generation *config.GenerationConfig
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(service *domain.CompletionService, generation *config.GenerationConfig) *Handler {
	return &Handler{
		service:    service,
		generation: generation,
	}
}

// HandleCompletion processes completion requests sent as a JSON body (POST)
// or as query parameters (GET).
func (h *Handler) HandleCompletion(w http.ResponseWriter, r *http.Request) {
	var (
		req *domain.CompletionRequest
		err error
	)

	switch r.Method {
	case http.MethodPost:
		req, err = decodeBody(w, r)
	case http.MethodGet:
		req, err = h.decodeQuery(r.URL.Query())
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		http.Error(w, fmt.Sprintf("invalid request: %v", err), status)
		return
	}

	ctx := observability.WithModel(r.Context(), req.Model)
	logger := observability.FromContext(ctx)
	logger.Info("completion request received",
		observability.Int("context_length", len(req.Context)),
		observability.Float64("top_p", req.TopP),
		observability.Float64("temp", req.Temp),
		observability.Int("response_length", req.ResponseLength),
	)

	response, err := h.service.Complete(ctx, req)
	if err != nil {
		logger.Error("completion failed", observability.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrNoProvider) || errors.Is(err, domain.ErrInvalidRequest) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	logger.Info("completion succeeded", observability.Int64("duration_ms", response.Duration))

	writeJSON(w, http.StatusOK, response)
}

func decodeBody(w http.ResponseWriter, r *http.Request) (*domain.CompletionRequest, error) {
	var req domain.CompletionRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	return &req, nil
}

func (h *Handler) decodeQuery(query url.Values) (*domain.CompletionRequest, error) {
	req := &domain.CompletionRequest{
		Context:        query.Get("context"),
		TopP:           h.generation.TopP,
		Temp:           h.generation.Temperature,
		ResponseLength: h.generation.TokenMaxLength,
		Model:          query.Get("model"),
	}

	if !query.Has("context") {
		return nil, errors.New("missing query parameter: context")
	}

	if raw := query.Get("top_p"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid top_p %q: %w", raw, err)
		}
		req.TopP = v
	}

	if raw := query.Get("temp"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid temp %q: %w", raw, err)
		}
		req.Temp = v
	}

	if raw := query.Get("response_length"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid response_length %q: %w", raw, err)
		}
		req.ResponseLength = v
	}

	if raw := query.Get("remove_input"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid remove_input %q: %w", raw, err)
		}
		req.RemoveInput = &v
	}

	return req, nil
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// HandleOpenAPI serves the OpenAPI document for the completion API.
func (h *Handler) HandleOpenAPI(w http.ResponseWriter, r *http.Request) {
	data, err := staticFiles.ReadFile("static/openapi.json")
	if err != nil {
		observability.FromContext(r.Context()).Error("failed to read openapi document", observability.Error(err))
		http.Error(w, "openapi document unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Status is already written, nothing left to report to the caller.
	_ = json.NewEncoder(w).Encode(v)
}
