// Package tokens counts model tokens in composed prompts.
package tokens

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/tormodhaugland/pf/internal/debug"
)

// Counter counts tokens in a string. Implementations are deterministic and
// return 0 for the empty string.
type Counter interface {
	Count(text string) int
	Name() string
}

// Estimate approximates tokens as ceil(bytes / BytesPerToken).
type Estimate struct {
	BytesPerToken int
}

func (e Estimate) Count(text string) int {
	bpt := e.BytesPerToken
	if bpt <= 0 {
		bpt = 4
	}
	return (len(text) + bpt - 1) / bpt
}

func (e Estimate) Name() string { return "estimate" }

// Tiktoken counts with a BPE encoding.
type Tiktoken struct {
	model string
	enc   *tiktoken.Tiktoken
	mu    sync.Mutex
}

// NewTiktoken loads the encoding used by model. Loading may need network
// access the first time an encoding is used.
func NewTiktoken(model string) (*Tiktoken, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, err
	}
	return &Tiktoken{model: model, enc: enc}, nil
}

func (t *Tiktoken) Count(text string) int {
	if text == "" {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.enc.Encode(text, nil, nil))
}

func (t *Tiktoken) Name() string { return "tiktoken:" + t.model }

// New returns a tiktoken counter for model, or an Estimate when the encoding
// cannot be loaded.
func New(model string, bytesPerToken int) Counter {
	if model != "" {
		tk, err := NewTiktoken(model)
		if err == nil {
			return tk
		}
		debug.Debug("tokens: falling back to estimate for %q: %v", model, err)
	}
	return Estimate{BytesPerToken: bytesPerToken}
}
