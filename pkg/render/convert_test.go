package render

import (
	"context"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"dot", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		_, err := ParseFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"out.svg":      FormatSVG,
		"out.PNG":      FormatPNG,
		"dir/out.pdf":  FormatPDF,
		"graph.dot":    FormatDOT,
		"out.jpeg":     FormatSVG,
		"no-extension": FormatSVG,
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestConvertSVGPassthrough(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`)
	out, err := Convert(context.Background(), svg, FormatSVG, 1)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != string(svg) {
		t.Errorf("Convert(svg) = %s", out)
	}

	if _, err := Convert(context.Background(), svg, FormatDOT, 1); err == nil {
		t.Error("converting SVG to DOT should fail")
	}
}
