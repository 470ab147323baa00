package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short", "Bob", 8, "Bob"},
		{"exact", "Caroline", 8, "Caroline"},
		{"long", "Alexandria", 8, "Alexand…"},
		{"unicode", "张三李四王五", 4, "张三李…"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, TruncateName(tt.input, tt.maxLen))
		})
	}
}

func TestFormatScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "+12", FormatScore(12))
	assert.Equal(t, "0", FormatScore(0))
	assert.Equal(t, "-3", FormatScore(-3))
}

func TestVisibleRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		total, limit int
		start, end   int
	}{
		{"fits", 3, 8, 0, 3},
		{"empty", 0, 8, 0, 0},
		{"overflow keeps tail", 12, 8, 4, 12},
		{"no limit", 5, 0, 0, 5},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			start, end := VisibleRange(tt.total, tt.limit)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}
