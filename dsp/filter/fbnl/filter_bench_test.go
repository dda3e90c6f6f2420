package fbnl

import (
	"context"
	"testing"

	"github.com/cwbudde/algo-tweezer/internal/testutil"
)

func BenchmarkFilter(b *testing.B) {
	data := testutil.StepTrace([]float64{0, 8, 3, 11}, []int{4096, 4096, 4096, 4096}, 1, 7)

	b.ReportAllocs()

	for b.Loop() {
		_, _ = Filter(data, 1000, 50)
	}
}

func BenchmarkBank(b *testing.B) {
	data := testutil.StepTrace([]float64{0, 8, 3, 11}, []int{4096, 4096, 4096, 4096}, 1, 7)
	windows := []int{5, 10, 20, 40, 80}

	b.ReportAllocs()

	for b.Loop() {
		_, _ = Bank(context.Background(), data, 1000, windows)
	}
}
