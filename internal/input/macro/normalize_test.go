package macro

import (
	"slices"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"empty", "", nil},
		{"blank", "   \t ", nil},
		{"comment only", "// nothing here", nil},
		{"indented instruction", "    wait 100", []string{"wait", "100"}},
		{"trailing comment", "wait 100 // pause", []string{"wait", "100"}},
		{"comment mid word", "type hel//lo", []string{"type", "hel"}},
		{"collapses whitespace", "type  hello \t world", []string{"type", "hello", "world"}},
		{"carriage return", "end\r", []string{"end"}},
		{"header", "greet:", []string{"greet:"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.line)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Normalize(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestHeaderName(t *testing.T) {
	tests := []struct {
		words  []string
		want   string
		header bool
	}{
		{[]string{"greet:"}, "greet", true},
		{[]string{"a:b:"}, "a:b", true},
		{[]string{":"}, "", true},
		{[]string{"greet"}, "", false},
		{[]string{"greet:", "again"}, "", false},
		{[]string{"type", "a:"}, "", false},
		{nil, "", false},
	}

	for _, tt := range tests {
		got, ok := HeaderName(tt.words)
		if ok != tt.header || got != tt.want {
			t.Errorf("HeaderName(%q) = (%q, %v), want (%q, %v)", tt.words, got, ok, tt.want, tt.header)
		}
	}
}
