package providers

import (
	"strings"
	"testing"
)

func TestParseNumberedLines(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{
			"dot style",
			"1. Hola\n2. Adios\n",
			[]string{"Hola", "Adios"},
			false,
		},
		{
			"paren style",
			"1) Hola\n2) Adios",
			[]string{"Hola", "Adios"},
			false,
		},
		{
			"preamble ignored",
			"Here are the translations:\n\n1. Hola\n2. Adios\n",
			[]string{"Hola", "Adios"},
			false,
		},
		{
			"out of order",
			"2. Adios\n1. Hola",
			[]string{"Hola", "Adios"},
			false,
		},
		{
			"missing line",
			"1. Hola\n",
			nil,
			true,
		},
		{
			"merged lines",
			"1. Hola Adios\n",
			nil,
			true,
		},
		{
			"empty response",
			"",
			nil,
			true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			want := 2
			got, err := parseNumberedLines(c.input, want)
			if c.wantErr {
				if err == nil {
					t.Fatalf("parseNumberedLines(%q) succeeded; want error", c.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseNumberedLines(%q) error: %v", c.input, err)
			}
			if len(got) != len(c.want) {
				t.Fatalf("got %d lines; want %d", len(got), len(c.want))
			}
			for i := range got {
				if got[i] != c.want[i] {
					t.Fatalf("line %d = %q; want %q", i, got[i], c.want[i])
				}
			}
		})
	}
}

func TestBuildTranslatePromptNumbersEveryLine(t *testing.T) {
	prompt := buildTranslatePrompt([]string{"first", "second"}, "Spanish")
	for _, want := range []string{"Spanish", "1. first", "2. second"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
