// Package markov provides a local generation backend: a word-bigram model
// sampled with temperature and nucleus (top_p) filtering. It needs no network
// access and stands in for an on-host language model.
package markov

import (
	"context"
	_ "embed"
	"errors"
	"math"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/davidbz/quill/internal/domain"
	"github.com/davidbz/quill/internal/observability"
)

const (
	providerName       = "markov"
	modelName          = "markov"
	defaultTemperature = 0.7
)

//go:embed corpus.txt
var defaultCorpus string

// Option configures a Provider.
type Option func(*Provider)

// WithSeed makes sampling reproducible.
func WithSeed(seed uint64) Option {
	return func(p *Provider) {
		p.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// WithCorpus replaces the built-in training text.
func WithCorpus(corpus string) Option {
	return func(p *Provider) {
		p.base = newTable(strings.Fields(corpus))
	}
}

// Provider implements the domain.Provider interface with a bigram sampler.
type Provider struct {
	name string
	base *table

	mu  sync.Mutex
	rng *rand.Rand
}

// NewProvider creates a markov provider trained on the built-in corpus.
func NewProvider(opts ...Option) *Provider {
	now := uint64(time.Now().UnixNano())
	p := &Provider{
		name: providerName,
		base: newTable(strings.Fields(defaultCorpus)),
		rng:  rand.New(rand.NewPCG(now, now>>1)),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Generate continues opts.Context with MaxLength sampled words.
func (p *Provider) Generate(ctx context.Context, opts *domain.GenerateOptions) (*domain.Generation, error) {
	if opts == nil {
		return nil, errors.New("options cannot be nil")
	}

	logger := observability.FromContext(ctx)

	prompt := strings.Fields(opts.Context)
	tbl := p.base.with(prompt)
	if tbl.empty() {
		return nil, errors.New("markov table is empty")
	}

	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}

	p.mu.Lock()
	words := make([]string, 0, max(opts.MaxLength, 0))
	prev := ""
	if len(prompt) > 0 {
		prev = prompt[len(prompt)-1]
	}
	for i := 0; i < opts.MaxLength; i++ {
		if err := ctx.Err(); err != nil {
			p.mu.Unlock()
			return nil, err
		}

		candidates := tbl.successors(prev)
		if len(candidates) == 0 {
			candidates = tbl.starters()
		}

		next := sample(p.rng, candidates, temperature, opts.TopP)
		words = append(words, next)
		prev = next
	}
	p.mu.Unlock()

	text := opts.Context
	if len(words) > 0 {
		if text != "" {
			text = strings.TrimRight(text, " ") + " "
		}
		text += strings.Join(words, " ")
	}

	logger.Debug("markov generation finished",
		observability.Int("words", len(words)),
		observability.Float64("temperature", temperature),
		observability.Float64("top_p", opts.TopP))

	return &domain.Generation{
		Text:     text,
		Model:    modelName,
		Provider: p.name,
		Usage: domain.Usage{
			PromptTokens:     len(prompt),
			CompletionTokens: len(words),
			TotalTokens:      len(prompt) + len(words),
		},
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// IsModelSupported checks if the provider supports the given model.
func (p *Provider) IsModelSupported(_ context.Context, model string) bool {
	return model == modelName
}

// SupportedModels returns a list of all models this provider supports.
func (p *Provider) SupportedModels(_ context.Context) []string {
	return []string{modelName}
}

// candidate is one possible next word with its observed count.
type candidate struct {
	word  string
	count int
}

// sample applies temperature to log-counts, keeps the nucleus whose mass
// reaches topP (always at least one word), renormalizes and draws one word
// by inverse transform sampling.
func sample(rng *rand.Rand, candidates []candidate, temperature, topP float64) string {
	probs := make([]float64, len(candidates))
	maxLogit := -math.MaxFloat64
	for i, c := range candidates {
		probs[i] = math.Log(float64(c.count)) / temperature
		maxLogit = math.Max(maxLogit, probs[i])
	}

	sum := 0.0
	for i := range probs {
		probs[i] = math.Exp(probs[i] - maxLogit)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}

	// candidates arrive sorted by count, so probs are already descending.
	keep := len(probs)
	if topP < 1 {
		cumulative := 0.0
		for i, p := range probs {
			cumulative += p
			if cumulative >= topP {
				keep = i + 1
				break
			}
		}
	}

	mass := 0.0
	for _, p := range probs[:keep] {
		mass += p
	}

	u := rng.Float64() * mass
	cumulative := 0.0
	for i, p := range probs[:keep] {
		cumulative += p
		if u < cumulative {
			return candidates[i].word
		}
	}

	return candidates[keep-1].word
}

// table holds bigram counts and the words that open a sentence.
type table struct {
	next   map[string]map[string]int
	starts map[string]int
}

func newTable(words []string) *table {
	t := &table{
		next:   make(map[string]map[string]int),
		starts: make(map[string]int),
	}
	t.add(words)
	return t
}

func (t *table) add(words []string) {
	for i, w := range words {
		if i == 0 || endsSentence(words[i-1]) {
			t.starts[w]++
		}
		if i+1 < len(words) {
			if t.next[w] == nil {
				t.next[w] = make(map[string]int)
			}
			t.next[w][words[i+1]]++
		}
	}
}

// with returns a copy of t that has also learned from words.
func (t *table) with(words []string) *table {
	if len(words) == 0 {
		return t
	}

	cp := &table{
		next:   make(map[string]map[string]int, len(t.next)),
		starts: make(map[string]int, len(t.starts)),
	}
	for w, succ := range t.next {
		inner := make(map[string]int, len(succ))
		for s, n := range succ {
			inner[s] = n
		}
		cp.next[w] = inner
	}
	for w, n := range t.starts {
		cp.starts[w] = n
	}

	cp.add(words)
	return cp
}

func (t *table) empty() bool {
	return len(t.starts) == 0
}

func (t *table) successors(word string) []candidate {
	return sortedCandidates(t.next[word])
}

func (t *table) starters() []candidate {
	return sortedCandidates(t.starts)
}

func sortedCandidates(counts map[string]int) []candidate {
	out := make([]candidate, 0, len(counts))
	for w, n := range counts {
		out = append(out, candidate{word: w, count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].word < out[j].word
	})
	return out
}

func endsSentence(word string) bool {
	return strings.HasSuffix(word, ".") || strings.HasSuffix(word, "!") || strings.HasSuffix(word, "?")
}
