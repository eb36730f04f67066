package client

import (
	"context"
	"errors"
	"strconv"

	"github.com/davidbz/quill/internal/display"
	"github.com/davidbz/quill/internal/domain"
	"github.com/davidbz/quill/internal/observability"
)

// DefaultPlaceholder is written when a reply has no generated_text.
const DefaultPlaceholder = "undefined"

// Completer sends a completion request and returns the decoded reply.
type Completer interface {
	Complete(ctx context.Context, req *domain.CompletionRequest) (*Response, error)
}

// Inputs are the raw control values: free text and two 0-100 sliders.
type Inputs struct {
	Context     string
	TopP        int
	Temperature int
}

// Result is what one activation wrote to the board.
type Result struct {
	Text        string
	Duration    string
	HasDuration bool
}

// Outcome is delivered once per activation.
type Outcome struct {
	Result *Result
	Err    error
}

// Handler turns control values into a request and renders the reply.
type Handler struct {
	client         Completer
	board          *display.Board
	responseLength int
	placeholder    string
	model          string
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithResponseLength sets the response_length sent with every request.
func WithResponseLength(n int) HandlerOption {
	return func(h *Handler) {
		h.responseLength = n
	}
}

// WithPlaceholder sets the text shown when generated_text is missing.
func WithPlaceholder(placeholder string) HandlerOption {
	return func(h *Handler) {
		h.placeholder = placeholder
	}
}

// WithModel requests a specific model.
func WithModel(model string) HandlerOption {
	return func(h *Handler) {
		h.model = model
	}
}

// NewHandler creates a handler writing to board.
func NewHandler(client Completer, board *display.Board, opts ...HandlerOption) *Handler {
	h := &Handler{
		client:         client,
		board:          board,
		responseLength: domain.DefaultResponseLength,
		placeholder:    DefaultPlaceholder,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewRequest scales the 0-100 slider values to fractions. Values are not clamped.
func NewRequest(prompt string, topP, temperature, responseLength int) *domain.CompletionRequest {
	return &domain.CompletionRequest{
		Context:        prompt,
		TopP:           float64(topP) / 100.0,
		Temp:           float64(temperature) / 100.0,
		ResponseLength: responseLength,
	}
}

// FormatDuration renders a duration in milliseconds as "Generated in {seconds}s".
func FormatDuration(ms float64) string {
	return "Generated in " + strconv.FormatFloat(ms/1000, 'f', -1, 64) + "s"
}

// Handle sends one request and writes the reply to the board. Failures are
// written to the text element as "Error: <message>" and returned.
func (h *Handler) Handle(ctx context.Context, in Inputs) (*Result, error) {
	req := NewRequest(in.Context, in.TopP, in.Temperature, h.responseLength)
	req.Model = h.model

	logger := observability.FromContext(ctx)

	resp, err := h.client.Complete(ctx, req)
	if err != nil {
		logger.Warn("completion request failed", observability.Error(err))
		h.board.Update("Error: "+err.Error(), "", false)
		return nil, err
	}
	if resp == nil {
		err = errors.New("empty completion reply")
		h.board.Update("Error: "+err.Error(), "", false)
		return nil, err
	}

	result := &Result{Text: h.placeholder}
	if resp.GeneratedText != nil {
		result.Text = *resp.GeneratedText
	}
	if resp.Duration != nil {
		result.Duration = FormatDuration(*resp.Duration)
		result.HasDuration = true
	}

	h.board.Update(result.Text, result.Duration, result.HasDuration)

	logger.Debug("completion rendered",
		observability.Int("text_length", len(result.Text)),
		observability.Bool("has_duration", result.HasDuration),
	)

	return result, nil
}

// Activate starts Handle in the background and returns at once. The channel
// receives exactly one Outcome and is then closed.
func (h *Handler) Activate(ctx context.Context, in Inputs) <-chan Outcome {
	out := make(chan Outcome, 1)

	go func() {
		defer close(out)
		result, err := h.Handle(ctx, in)
		out <- Outcome{Result: result, Err: err}
	}()

	return out
}
