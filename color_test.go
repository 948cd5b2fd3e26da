package ggshader

import (
	"image/color"
	"math"
	"testing"
)

func colorsNear(a, b RGBA) bool {
	const eps = 1e-3
	return math.Abs(a.R-b.R) < eps && math.Abs(a.G-b.G) < eps &&
		math.Abs(a.B-b.B) < eps && math.Abs(a.A-b.A) < eps
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want RGBA
		ok   bool
	}{
		{"#ff0000", Red, true},
		{"00ff00", Green, true},
		{"#00F", Blue, true},
		{"fff8", RGBA2(1, 1, 1, 136.0/255), true},
		{"#00000080", RGBA2(0, 0, 0, 128.0/255), true},
		{"", RGBA{}, false},
		{"#12345", RGBA{}, false},
		{"zzzzzz", RGBA{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseHex(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseHex(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && !colorsNear(got, tt.want) {
				t.Errorf("ParseHex(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
	if got := Hex("nope"); got != Black {
		t.Errorf("Hex(malformed) = %+v, want black", got)
	}
}

func TestPremultiply(t *testing.T) {
	c := RGBA2(1, 0.5, 0.25, 0.5)
	p := c.Premultiply()
	if !colorsNear(p, RGBA2(0.5, 0.25, 0.125, 0.5)) {
		t.Errorf("Premultiply() = %+v", p)
	}
	if back := p.Unpremultiply(); !colorsNear(back, c) {
		t.Errorf("Unpremultiply() = %+v, want %+v", back, c)
	}
	if z := Transparent.Unpremultiply(); z != Transparent {
		t.Errorf("Unpremultiply(transparent) = %+v", z)
	}
}

func TestFromColor(t *testing.T) {
	// color.RGBA is premultiplied; the result is not.
	got := FromColor(color.RGBA{R: 128, G: 0, B: 0, A: 128})
	if !colorsNear(got, RGBA2(1, 0, 0, 128.0/255)) {
		t.Errorf("FromColor() = %+v", got)
	}
	if nrgba := Red.Color().(color.NRGBA); nrgba != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("Red.Color() = %+v", nrgba)
	}
}

func TestIsOpaque(t *testing.T) {
	if !Red.IsOpaque() {
		t.Error("Red.IsOpaque() = false")
	}
	if RGBA2(1, 0, 0, 0.99).IsOpaque() {
		t.Error("translucent color reported opaque")
	}
}
