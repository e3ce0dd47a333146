package api

import "testing"

func TestAcceptsGzip(t *testing.T) {
	cases := map[string]bool{
		"":             false,
		"gzip":         true,
		"GZIP":         true,
		"identity":     false,
		"br, gzip":     true,
		"x-gzip":       false,
		" deflate ,  ": false,
	}
	for header, want := range cases {
		if got := acceptsGzip(header); got != want {
			t.Fatalf("acceptsGzip(%q) = %v, want %v", header, got, want)
		}
	}
}
