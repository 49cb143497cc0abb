package postgres

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestContainsPatternEscapesWildcards(t *testing.T) {
	cases := map[string]string{
		"wok":      `%wok%`,
		"100%":     `%100\%%`,
		"a_b":      `%a\_b%`,
		`C:\pans`:  `%C:\\pans%`,
		"":         `%%`,
	}
	for in, want := range cases {
		assert.Equal(t, want, containsPattern(in), in)
	}
}
