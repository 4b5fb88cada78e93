package suggest

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/zephyrtronium/formula"
)

// Autocomplete tracks the text being typed and the suggestions for it. Each
// change of input starts a lookup in the background; when several lookups
// overlap, only the one for the current input is kept. It is safe to use an
// Autocomplete concurrently.
type Autocomplete struct {
	src Source
	log *zap.Logger

	mu     sync.Mutex
	input  string
	// gen counts inputs, so that a lookup can tell whether its input is
	// still current even when the same text is typed again.
	gen    uint64
	shown  []formula.Suggestion
	cancel context.CancelFunc
}

var _ formula.Resolver = (*Autocomplete)(nil)

// NewAutocomplete creates an autocomplete tracker searching src.
func NewAutocomplete(src Source, log *zap.Logger) *Autocomplete {
	if log == nil {
		log = zap.NewNop()
	}
	return &Autocomplete{src: src, log: log}
}

// Input records the current input text and starts looking up suggestions for
// it. The visible suggestions are cleared until the lookup finishes. Any
// earlier lookup still in flight is canceled and its results discarded. The
// returned channel is closed once the lookup's results have been applied or
// discarded. Blank input performs no lookup.
func (a *Autocomplete) Input(ctx context.Context, text string) <-chan struct{} {
	done := make(chan struct{})
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.input = text
	a.gen++
	gen := a.gen
	a.shown = nil
	if strings.TrimSpace(text) == "" {
		a.mu.Unlock()
		close(done)
		return done
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()
		r, err := a.src.Search(ctx, text)
		if err != nil {
			// A failed lookup just means nothing was found.
			lvl := a.log.Warn
			if ctx.Err() != nil {
				lvl = a.log.Debug
			}
			lvl("suggestion lookup failed", zap.String("query", text), zap.Error(err))
			r = nil
		}
		a.apply(gen, text, r)
	}()
	return done
}

// apply shows the results of a lookup for query if it is still the input.
func (a *Autocomplete) apply(gen uint64, query string, r []formula.Suggestion) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.gen || query != a.input {
		a.log.Debug("discarded stale suggestions", zap.String("query", query), zap.String("input", a.input))
		return
	}
	a.shown = Dedupe(r)
}

// Clear resets the input and the visible suggestions.
func (a *Autocomplete) Clear() {
	<-a.Input(context.Background(), "")
}

// Current returns the current input text.
func (a *Autocomplete) Current() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.input
}

// Suggestions returns the visible suggestions.
func (a *Autocomplete) Suggestions() []formula.Suggestion {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]formula.Suggestion(nil), a.shown...)
}

// Resolve finds the visible suggestion named text, ignoring case. It never
// waits for a lookup in flight.
func (a *Autocomplete) Resolve(text string) (formula.Suggestion, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, s := range a.shown {
		if strings.EqualFold(s.Name, text) {
			return s, true
		}
	}
	return formula.Suggestion{}, false
}
