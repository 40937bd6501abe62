package tracing

import (
	"context"
	"testing"
)

func TestInitWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{ServiceName: "test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected shutdown error: %v", err)
	}
}

func TestTrimScheme(t *testing.T) {
	cases := map[string]string{
		"collector:4318":           "collector:4318",
		"http://collector:4318":    "collector:4318",
		"https://otel.example:443": "otel.example:443",
	}
	for in, want := range cases {
		if got := trimScheme(in); got != want {
			t.Errorf("trimScheme(%q) = %q, want %q", in, got, want)
		}
	}
}
