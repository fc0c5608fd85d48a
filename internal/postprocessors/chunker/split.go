package chunker

import (
	"strings"

	"github.com/custodia-labs/intrafact/internal/core/domain"
)

// Split cuts text into word-boundary windows of roughly size characters.
//
// Words accumulate into a window, each counting len(word)+1. Once the
// window reaches size it is emitted and the next window starts with the
// trailing words of the emitted one, walking back until they cover at
// least overlap characters. The walk never takes the whole window, so
// every chunk contains at least one word the previous chunk did not.
// A pending window is emitted at the end only if it holds such a word.
//
// Words are never split: a word longer than size ends up whole in a chunk.
func Split(text string, size, overlap int) ([]string, error) {
	if err := validate(size, overlap); err != nil {
		return nil, err
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}

	var (
		chunks []string
		window []string
		length int
		fresh  int
	)

	for _, w := range words {
		window = append(window, w)
		length += len(w) + 1
		fresh++

		if length < size {
			continue
		}

		chunks = append(chunks, strings.Join(window, " "))

		keep, carried := backtrack(window, overlap)
		window = append([]string(nil), window[len(window)-keep:]...)
		length = carried
		fresh = 0
	}

	if fresh > 0 {
		chunks = append(chunks, strings.Join(window, " "))
	}

	return chunks, nil
}

// backtrack returns how many trailing words of window to carry and their
// accumulated length. It stops once overlap is covered and never keeps
// every word.
func backtrack(window []string, overlap int) (keep, length int) {
	for keep < len(window)-1 && length < overlap {
		length += len(window[len(window)-1-keep]) + 1
		keep++
	}
	return keep, length
}

func validate(size, overlap int) error {
	return domain.ChunkingSettings{ChunkSize: size, Overlap: overlap}.Validate()
}
