package output_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/systmms/vaultkv/internal/output"
)

// TestMaskKeepsEdgesAndLength verifies long values keep their first and
// last two characters with a length-preserving masked interior
func TestMaskKeepsEdgesAndLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"six_chars", "abcdef", "ab**ef"},
		{"five_chars", "abcde", "ab*de"},
		{"long_password", "super-secret-password", "su*****************rd"},
		{"token", "hvs.CAESIJLh", "hv********Lh"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := output.Mask(tt.value, false)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, len(tt.value), "masked value must preserve length")
		})
	}
}

// TestMaskShortValuesFully verifies values of four characters or fewer are
// replaced entirely
func TestMaskShortValuesFully(t *testing.T) {
	t.Parallel()

	for _, value := range []string{"", "a", "ab", "abc", "abcd"} {
		assert.Equal(t, "****", output.Mask(value, false), "value %q", value)
	}
}

// TestMaskRevealReturnsUnchanged verifies reveal passes values through
func TestMaskRevealReturnsUnchanged(t *testing.T) {
	t.Parallel()

	for _, value := range []string{"", "ab", "abcdef", "super-secret"} {
		assert.Equal(t, value, output.Mask(value, true))
	}
}

// TestMaskCountsRunesNotBytes verifies multibyte values mask by character
func TestMaskCountsRunesNotBytes(t *testing.T) {
	t.Parallel()

	got := output.Mask("pässwörd", false)

	assert.Equal(t, "pä****rd", got)
	assert.Equal(t, 8, len([]rune(got)))
}

// TestMaskNeverLeaksInterior verifies no interior characters survive
func TestMaskNeverLeaksInterior(t *testing.T) {
	t.Parallel()

	value := "aXXXXXXXXXXb"
	got := output.Mask(value, false)

	assert.False(t, strings.Contains(got[2:len(got)-2], "X"),
		"interior must be fully masked: %q", got)
}
