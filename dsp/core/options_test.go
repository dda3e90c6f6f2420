package core

import "testing"

func TestApplyProcessorOptions(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(80000))
	if cfg.SampleRate != 80000 {
		t.Fatalf("sample rate = %v, want 80000", cfg.SampleRate)
	}
	cfg = ApplyProcessorOptions(WithSampleRate(-1), nil)
	if cfg.SampleRate != DefaultProcessorConfig().SampleRate {
		t.Fatalf("invalid rate should keep default, got %v", cfg.SampleRate)
	}
}
