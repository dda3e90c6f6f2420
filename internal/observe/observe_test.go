package observe

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"none", Config{ServiceName: "tweezer"}, false},
		{"stdout", Config{ServiceName: "tweezer", Exporter: "stdout"}, false},
		{"no name", Config{Exporter: "stdout"}, true},
		{"unknown", Config{ServiceName: "tweezer", Exporter: "otlp"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTracerProviderExports(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()
	tp, err := NewTracerProvider(ctx, Config{ServiceName: "tweezer", Version: "test", Exporter: "stdout", Writer: &buf})
	if err != nil {
		t.Fatalf("NewTracerProvider: %v", err)
	}

	_, span := tp.Tracer("test").Start(ctx, "steps.FilterFindAnalyse")
	span.End()
	if err := tp.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "steps.FilterFindAnalyse") {
		t.Errorf("exported spans lack the span name:\n%s", out)
	}
	if !strings.Contains(out, "tweezer") {
		t.Errorf("exported spans lack the service name:\n%s", out)
	}
}

func TestSetupNone(t *testing.T) {
	before := otel.GetTracerProvider()
	shutdown, err := Setup(context.Background(), Config{ServiceName: "tweezer"})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if otel.GetTracerProvider() != before {
		t.Error("Setup without exporter replaced the global provider")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}
