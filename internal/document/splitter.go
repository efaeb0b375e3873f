// Package document turns local files into overlapping text chunks ready
// for embedding.
package document

import (
	"libris/internal/apperr"
)

// Chunk is an immutable slice of a source document. Metadata always
// carries at least a "source" key naming the origin file.
type Chunk struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// Splitter windows text into chunks of Size characters with Overlap
// characters shared between consecutive windows.
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter enforces size > overlap > 0 before any file or provider is
// touched.
func NewSplitter(size, overlap int) (*Splitter, error) {
	if overlap <= 0 {
		return nil, apperr.New(apperr.Validation, "chunk_overlap must be positive")
	}
	if size <= overlap {
		return nil, apperr.New(apperr.Validation, "chunk_size must be greater than chunk_overlap")
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// Split returns the overlapping windows of text in document order. Runes
// are counted, not bytes, so multi-byte characters are never cut.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= s.size {
		return []string{text}
	}

	step := s.size - s.overlap
	var windows []string
	for start := 0; start < len(runes); start += step {
		end := start + s.size
		if end > len(runes) {
			end = len(runes)
		}
		windows = append(windows, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return windows
}
