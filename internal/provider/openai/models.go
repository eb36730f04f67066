package openai

import (
	"slices"
	"strings"
)

// chatModels can continue a text. The first entry is the fallback default.
//
//nolint:gochecknoglobals // Static model list
var chatModels = []string{
	"gpt-4o-mini",
	"gpt-4o",
	"gpt-4",
	"gpt-4-turbo",
	"gpt-3.5-turbo",
}

// SupportedModels returns the chat models advertised by the provider.
func SupportedModels() []string {
	return slices.Clone(chatModels)
}

// isChatModel accepts advertised models and fine-tunes of them
// (ft:<base>:<org>:<suffix>:<id>).
func isChatModel(model string) bool {
	if slices.Contains(chatModels, model) {
		return true
	}

	rest, ok := strings.CutPrefix(model, "ft:")
	if !ok {
		return false
	}
	base, _, _ := strings.Cut(rest, ":")
	return slices.Contains(chatModels, base)
}
