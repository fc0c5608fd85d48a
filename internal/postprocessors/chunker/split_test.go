package chunker

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/custodia-labs/intrafact/internal/core/domain"
)

func TestSplit_TailOfOverlapWordsNotEmitted(t *testing.T) {
	tests := []struct {
		name string
		text string
		size int
		want []string
	}{
		{"tail is only carried words", "a b c d", 4, []string{"a b", "b c", "c d"}},
		{"tail has a new word", "a b c d", 6, []string{"a b c", "c d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.text, tt.size, 2)
			if err != nil {
				t.Fatalf("Split: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split(%q, %d, 2) = %q, want %q", tt.text, tt.size, got, tt.want)
			}
		})
	}
}

func TestSplit_Windows(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		size    int
		overlap int
		want    []string
	}{
		{
			name:    "one word overlap",
			text:    "a b c d e f",
			size:    4,
			overlap: 2,
			want:    []string{"a b", "b c", "c d", "d e", "e f"},
		},
		{
			name:    "no overlap",
			text:    "a b c d e f",
			size:    4,
			overlap: 0,
			want:    []string{"a b", "c d", "e f"},
		},
		{
			name:    "short tail emitted",
			text:    "a b c d e",
			size:    4,
			overlap: 0,
			want:    []string{"a b", "c d", "e"},
		},
		{
			name:    "text shorter than size",
			text:    "hello there",
			size:    500,
			overlap: 50,
			want:    []string{"hello there"},
		},
		{
			name:    "whitespace collapsed",
			text:    "  alpha\n\tbeta   gamma  ",
			size:    500,
			overlap: 0,
			want:    []string{"alpha beta gamma"},
		},
		{
			name:    "long word kept whole",
			text:    "supercalifragilistic",
			size:    5,
			overlap: 0,
			want:    []string{"supercalifragilistic"},
		},
		{
			name:    "long word with neighbours",
			text:    "hi supercalifragilistic ok",
			size:    5,
			overlap: 2,
			want:    []string{"hi supercalifragilistic", "supercalifragilistic ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.text, tt.size, tt.overlap)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplit_Empty(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t\n"} {
		got, err := Split(text, 500, 50)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected no chunks for %q, got %d", text, len(got))
		}
	}
}

func TestSplit_ConfigErrors(t *testing.T) {
	tests := []struct {
		size, overlap int
	}{
		{10, 10},
		{10, 11},
		{500, 500},
		{10, -1},
		{-5, 0},
		{0, 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("size=%d overlap=%d", tt.size, tt.overlap), func(t *testing.T) {
			_, err := Split("some words here", tt.size, tt.overlap)
			if !errors.Is(err, domain.ErrChunkConfig) {
				t.Errorf("expected ErrChunkConfig, got %v", err)
			}
		})
	}
}

// wordText builds roughly n characters of space-separated words.
func wordText(n int) string {
	var b strings.Builder
	for i := 0; b.Len() < n; i++ {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "w%04d", i)
	}
	return b.String()
}

func sharedBoundary(prev, next string) int {
	pw := strings.Fields(prev)
	nw := strings.Fields(next)
	best := 0
	for k := 1; k <= len(pw) && k <= len(nw); k++ {
		if reflect.DeepEqual(pw[len(pw)-k:], nw[:k]) {
			best = k
		}
	}
	length := 0
	for _, w := range nw[:best] {
		length += len(w) + 1
	}
	return length
}

func TestSplit_OverlapCoverage(t *testing.T) {
	text := wordText(1200)

	chunks, err := Split(text, 500, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}

	for i := 1; i < len(chunks); i++ {
		if shared := sharedBoundary(chunks[i-1], chunks[i]); shared < 50 {
			t.Errorf("chunks %d and %d share %d chars, want >= 50", i-1, i, shared)
		}
	}
	for i, c := range chunks[:len(chunks)-1] {
		if len(c)+1 < 500 {
			t.Errorf("chunk %d has length %d, want window >= 500", i, len(c))
		}
	}
	if last := chunks[len(chunks)-1]; len(last) > 500 {
		t.Errorf("last chunk unexpectedly long: %d", len(last))
	}
}

func TestSplit_CoversAllWords(t *testing.T) {
	text := wordText(3000)
	chunks, err := Split(text, 120, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[string]bool)
	for _, c := range chunks {
		for _, w := range strings.Fields(c) {
			seen[w] = true
		}
	}
	for _, w := range strings.Fields(text) {
		if !seen[w] {
			t.Fatalf("word %q missing from chunks", w)
		}
	}

	last := strings.Fields(chunks[len(chunks)-1])
	words := strings.Fields(text)
	if last[len(last)-1] != words[len(words)-1] {
		t.Errorf("last chunk does not end with the last word")
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := wordText(2500)

	first, err := Split(text, 200, 40)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, _ := Split(text, 200, 40)
		if !reflect.DeepEqual(first, again) {
			t.Fatal("Split is not deterministic")
		}
	}
}

func TestSplit_TerminatesWhenOverlapCoversWindow(t *testing.T) {
	// Overlap larger than any two words: the walk is capped, output still advances.
	chunks, err := Split("aaaa bbbb cccc dddd", 9, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"aaaa bbbb", "bbbb cccc", "cccc dddd"}
	if !reflect.DeepEqual(chunks, want) {
		t.Errorf("Split() = %q, want %q", chunks, want)
	}
}
