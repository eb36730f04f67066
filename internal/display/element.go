// Package display holds the output regions the completion handler writes to.
package display

import (
	"strings"
	"sync"
	"unicode"
)

// Element is a named region whose content is replaced on every write.
type Element struct {
	mu   sync.RWMutex
	id   string
	text string
}

// NewElement creates an empty element.
func NewElement(id string) *Element {
	return &Element{id: id}
}

// ID returns the element identifier.
func (e *Element) ID() string {
	return e.id
}

// Set replaces the content with text, stored literally.
func (e *Element) Set(text string) {
	clean := Sanitize(text)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = clean
}

// Clear empties the element.
func (e *Element) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = ""
}

// Text returns the current content.
func (e *Element) Text() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.text
}

// Sanitize drops control characters other than newline and tab. Invalid
// UTF-8 bytes become U+FFFD.
func Sanitize(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
}
