package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Plumbers in Austin", "plumbers in austin"},
		{"  plumbers   IN\taustin ", "plumbers in austin"},
		{"PLUMBERS IN AUSTIN", "plumbers in austin"},
		{"Café König", "café könig"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalKey(tt.in), "input %q", tt.in)
	}
}

func TestCanonicalKeyEquivalenceClasses(t *testing.T) {
	variants := []string{
		"coffee shops  near ME",
		"Coffee Shops Near Me",
		"  coffee shops near me  ",
	}
	want := CanonicalKey(variants[0])
	for _, v := range variants[1:] {
		assert.Equal(t, want, CanonicalKey(v))
	}
}
