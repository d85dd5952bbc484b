package logfields

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"View", KeyView, "index.tpl", View("index.tpl")},
		{"Output", KeyOutput, "about/index.html", Output("about/index.html")},
		{"Slug", KeySlug, "about", Slug("about")},
		{"Model", KeyModel, "about.json", Model("about.json")},
		{"Controller", KeyController, "model-title", Controller("model-title")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"URL", KeyURL, "http://example", URL("http://example")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if tc.attr.Value.String() != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %s", tc.name, tc.attrVal, tc.attr.Value.String())
		}
	}
}

func TestNumericHelpers(t *testing.T) {
	if a := RunCount(3); a.Key != KeyRunCount || a.Value.Int64() != 3 {
		t.Fatalf("unexpected run count attr: %v", a)
	}
	if a := Count(2); a.Key != KeyCount || a.Value.Int64() != 2 {
		t.Fatalf("unexpected count attr: %v", a)
	}
	if a := DurationMS(1.5); a.Key != KeyDurationMS || a.Value.Float64() != 1.5 {
		t.Fatalf("unexpected duration attr: %v", a)
	}
}

func TestErrorHelper(t *testing.T) {
	if a := Error(nil); a.Value.String() != "" {
		t.Fatalf("expected empty error value, got %q", a.Value.String())
	}
	if a := Error(errors.New("boom")); a.Value.String() != "boom" {
		t.Fatalf("expected boom, got %q", a.Value.String())
	}
}

func TestShortView(t *testing.T) {
	long := strings.Repeat("x", 100)
	a := ShortView(long)
	if !strings.HasSuffix(a.Value.String(), "...") || len(a.Value.String()) != 51 {
		t.Fatalf("unexpected short view %q", a.Value.String())
	}
	if a := ShortView("index.tpl"); a.Value.String() != "index.tpl" {
		t.Fatalf("short views must be untouched, got %q", a.Value.String())
	}
}
