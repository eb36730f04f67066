package display

import "sync"

// Element identifiers used by the page and the CLI.
const (
	GeneratedTextID     = "generated_text"
	GeneratedDurationID = "generated_duration"
)

// Board groups the generated text and duration elements.
type Board struct {
	mu       sync.Mutex
	text     *Element
	duration *Element
}

// NewBoard creates a board with empty elements.
func NewBoard() *Board {
	return &Board{
		text:     NewElement(GeneratedTextID),
		duration: NewElement(GeneratedDurationID),
	}
}

// Update writes one reply. Without a duration the duration element is cleared.
func (b *Board) Update(text, duration string, hasDuration bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.text.Set(text)
	if hasDuration {
		b.duration.Set(duration)
		return
	}
	b.duration.Clear()
}

// Snapshot returns the text and duration written by the same reply.
func (b *Board) Snapshot() (string, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text.Text(), b.duration.Text()
}

// Text returns the generated text element.
func (b *Board) Text() *Element {
	return b.text
}

// Duration returns the generated duration element.
func (b *Board) Duration() *Element {
	return b.duration
}
