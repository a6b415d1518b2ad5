package slug_test

import (
	"strings"
	"testing"

	"biochar/internal/platform/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"Kiln #3 (North)": "kiln-3-north",
		"   ":             "untitled",
		"Rice Husk":       "rice-husk",
		"Kōn-Tiki Café":   "kon-tiki-cafe",
		"--edge--":        "edge",
	}
	for in, want := range cases {
		if got := slug.Make(in); got != want {
			t.Fatalf("Make(%q) = %q, want %q", in, got, want)
		}
	}
	long := slug.Make(strings.Repeat("ab ", 40))
	if len(long) > 48 || strings.HasSuffix(long, "-") {
		t.Fatalf("long slug not truncated cleanly: %q", long)
	}
}
