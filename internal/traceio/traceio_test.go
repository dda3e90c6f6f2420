package traceio

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReadColumns(t *testing.T) {
	in := `# time psd
0 1.5

0.001,	-2
# trailing comment
0.002 3e-3
`
	got, err := ReadColumns(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadColumns: %v", err)
	}
	want := [][]float64{{0, 0.001, 0.002}, {1.5, -2, 3e-3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestReadErrors(t *testing.T) {
	if _, err := ReadColumns(strings.NewReader("1 2\n3\n")); !errors.Is(err, ErrRagged) {
		t.Errorf("ragged error = %v, want ErrRagged", err)
	}
	if _, err := ReadColumns(strings.NewReader("1\nx\n")); err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("parse error = %v, want line 2", err)
	}
	if _, err := ReadColumn(strings.NewReader("1\n"), 1); err == nil {
		t.Error("ReadColumn out of range succeeded")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	a := []float64{0, 0.5, math.Pi}
	b := []float64{-1, 1e-12, 7}

	var buf bytes.Buffer
	if err := Write(&buf, []string{"a", "b"}, a, b); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "# a\tb\n") {
		t.Errorf("header missing:\n%s", buf.String())
	}

	got, err := ReadColumn(&buf, 1)
	if err != nil {
		t.Fatalf("ReadColumn: %v", err)
	}
	if diff := cmp.Diff(b, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	if err := Write(&buf, nil, a, b[:2]); !errors.Is(err, ErrRagged) {
		t.Errorf("ragged write = %v, want ErrRagged", err)
	}
}
