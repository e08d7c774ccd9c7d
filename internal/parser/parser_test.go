package parser

import (
	"reflect"
	"testing"
)

func TestExtractReferences(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []Reference
	}{
		{
			"single link",
			"see [Dracula](note:6) for details",
			[]Reference{{Target: 6, Label: "Dracula"}},
		},
		{
			"double slash form",
			"see [Dracula](note://6)",
			[]Reference{{Target: 6, Label: "Dracula"}},
		},
		{
			"multiple links in order",
			"[a](note:2) then [b](note:1)",
			[]Reference{{Target: 2, Label: "a"}, {Target: 1, Label: "b"}},
		},
		{
			"repeated target keeps first label",
			"[old name](note:3) and again [new name](note:3)",
			[]Reference{{Target: 3, Label: "old name"}},
		},
		{
			"empty label allowed",
			"[](note:4)",
			[]Reference{{Target: 4, Label: ""}},
		},
		{
			"zero id skipped",
			"[x](note:0)",
			nil,
		},
		{
			"ordinary links ignored",
			"[site](https://example.org) and [rel](/other/6)",
			nil,
		},
		{
			"no links",
			"plain text",
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractReferences(tt.body)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractReferences(%q) = %v, want %v", tt.body, got, tt.want)
			}
		})
	}
}

func TestMeasure(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Metadata
	}{
		{"empty", "", Metadata{}},
		{"one word", "hi", Metadata{Words: 1, Lines: 1, Characters: 2, SizeBytes: 2}},
		{"two lines", "one two\nthree", Metadata{Words: 3, Lines: 2, Characters: 13, SizeBytes: 13}},
		{"trailing newline not an extra line", "a\nb\n", Metadata{Words: 2, Lines: 2, Characters: 4, SizeBytes: 4}},
		{"crlf normalized", "a\r\nb", Metadata{Words: 2, Lines: 2, Characters: 4, SizeBytes: 4}},
		{"whitespace only still has lines", "  \n ", Metadata{Words: 0, Lines: 2, Characters: 4, SizeBytes: 4}},
		{"multibyte runes", "héllo", Metadata{Words: 1, Lines: 1, Characters: 5, SizeBytes: 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Measure(tt.in)
			if got != tt.want {
				t.Errorf("Measure(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}
