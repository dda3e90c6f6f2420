package signal

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mask(s string) []bool {
	out := make([]bool, len(s))
	for i, c := range s {
		out[i] = c == '1'
	}
	return out
}

func TestContiguousSegments(t *testing.T) {
	tests := []struct {
		name string
		mask string
		opts SegmentOptions
		want []Segment
	}{
		{"empty", "", SegmentOptions{}, nil},
		{"none", "0000", SegmentOptions{}, nil},
		{"all", "111", SegmentOptions{}, []Segment{{0, 3}}},
		{"runs", "0110011101", SegmentOptions{}, []Segment{{1, 3}, {5, 8}, {9, 10}}},
		{"default rules are no-ops", "0110011101", SegmentOptions{MinLengthHigh: 1, MinDistanceCenter: 1, MinLengthLow: 1},
			[]Segment{{1, 3}, {5, 8}, {9, 10}}},
		{"min high", "0110011101", SegmentOptions{MinLengthHigh: 2}, []Segment{{1, 3}, {5, 8}}},
		{"min low", "0110011101", SegmentOptions{MinLengthLow: 2}, []Segment{{1, 3}, {5, 10}}},
		{"center distance", "1101100001", SegmentOptions{MinDistanceCenter: 4}, []Segment{{0, 5}, {9, 10}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContiguousSegments(mask(tt.mask), tt.opts)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIndexSegments(t *testing.T) {
	got := IndexSegments([]int{0, 4, 9, 20})
	want := []Segment{{0, 4}, {4, 9}, {9, 20}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if IndexSegments([]int{3}) != nil {
		t.Fatal("single index should give no segments")
	}
}

func TestSegmentCenter(t *testing.T) {
	s := Segment{Start: 2, Stop: 7}
	if s.Len() != 5 || s.Center() != 4.5 {
		t.Fatalf("Len/Center = %d/%v", s.Len(), s.Center())
	}
}
