package wipsync

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAreaSqft(t *testing.T) {
	cases := []struct {
		size string
		want string
	}{
		{"8X10", "80"},
		{"8x10", "80"},
		{" 2.6 X 9 ", "23.4"},
		{"12*15", "180"},
		{"9X12.6", "113.4"},
		{"RUNNER", "0"},
		{"", "0"},
		{"8X", "0"},
		{"8X10X12", "0"},
	}
	for _, c := range cases {
		want, _ := decimal.NewFromString(c.want)
		if got := ParseAreaSqft(c.size); !got.Equal(want) {
			t.Errorf("ParseAreaSqft(%q) = %s, want %s", c.size, got, want)
		}
	}
}

func TestChunkInts(t *testing.T) {
	chunks := chunkInts([]int{1, 2, 3, 4, 5}, 2)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[2]) != 1 || chunks[2][0] != 5 {
		t.Errorf("unexpected tail chunk: %v", chunks[2])
	}
	if got := chunkInts(nil, 2); got != nil {
		t.Errorf("chunking empty input should yield nil, got %v", got)
	}
}
