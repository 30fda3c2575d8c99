package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		name string
		bpt  int
		in   string
		want int
	}{
		{"empty", 4, "", 0},
		{"one byte", 4, "a", 1},
		{"exact", 4, "abcd", 1},
		{"round up", 4, "abcde", 2},
		{"custom ratio", 2, "abcde", 3},
		{"zero ratio defaults to 4", 0, "abcdefgh", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Estimate{BytesPerToken: tt.bpt}
			assert.Equal(t, tt.want, e.Count(tt.in))
			assert.Equal(t, e.Count(tt.in), e.Count(tt.in))
		})
	}
}

func TestNewWithoutModelEstimates(t *testing.T) {
	c := New("", 3)
	assert.Equal(t, "estimate", c.Name())
	assert.Equal(t, 2, c.Count("abcd"))
}

func TestNewUnknownModelFallsBack(t *testing.T) {
	c := New("no-such-model-xyz", 4)
	assert.Equal(t, "estimate", c.Name())
	assert.Equal(t, 0, c.Count(""))
}
