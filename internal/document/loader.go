package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"libris/internal/apperr"
)

// page is a unit of extracted text plus the provenance metadata every
// chunk cut from it inherits.
type page struct {
	text     string
	metadata map[string]any
}

// Loader reads PDF, markdown and plain-text files from the local
// filesystem and splits them into chunks.
type Loader struct{}

func NewLoader() *Loader { return &Loader{} }

// Load turns paths into chunks of chunkSize characters with chunkOverlap
// shared between neighbours. The splitter invariant is checked before any
// file is opened.
func (l *Loader) Load(paths []string, chunkSize, chunkOverlap int) ([]Chunk, error) {
	splitter, err := NewSplitter(chunkSize, chunkOverlap)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, apperr.New(apperr.Validation, "paths cannot be empty")
	}

	var chunks []Chunk
	for _, raw := range paths {
		path, err := expandPath(raw)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(path); err != nil {
			return nil, apperr.Newf(apperr.Validation, "file not found: %s", path)
		}

		pages, err := extract(path)
		if err != nil {
			return nil, err
		}

		for _, p := range pages {
			for i, window := range splitter.Split(p.text) {
				md := make(map[string]any, len(p.metadata)+1)
				for k, v := range p.metadata {
					md[k] = v
				}
				md["chunk"] = i
				chunks = append(chunks, Chunk{Content: window, Metadata: md})
			}
		}
	}
	return chunks, nil
}

func extract(path string) ([]page, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDF(path)
	case ".txt", ".md":
		return extractPlain(path)
	default:
		return nil, apperr.Newf(apperr.Validation, "unsupported file type: %s", filepath.Ext(path))
	}
}

func extractPDF(path string) ([]page, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.Execution, fmt.Sprintf("document loader: failed to open %s", path), err)
	}
	defer f.Close()

	var pages []page
	for n := 1; n <= reader.NumPage(); n++ {
		pg := reader.Page(n)
		if pg.V.IsNull() {
			continue
		}
		text, err := pg.GetPlainText(nil)
		if err != nil {
			return nil, apperr.Wrap(apperr.Execution, fmt.Sprintf("document loader: failed to read page %d of %s", n, path), err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, page{
			text:     text,
			metadata: map[string]any{"source": path, "page": n - 1},
		})
	}
	return pages, nil
}

func extractPlain(path string) ([]page, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path was validated against the filesystem above
	if err != nil {
		return nil, apperr.Wrap(apperr.Execution, fmt.Sprintf("document loader: failed to read %s", path), err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	return []page{{
		text:     string(data),
		metadata: map[string]any{"source": path},
	}}, nil
}

func expandPath(raw string) (string, error) {
	if raw == "~" || strings.HasPrefix(raw, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", apperr.Wrap(apperr.Execution, "document loader: cannot resolve home directory", err)
		}
		return filepath.Join(home, strings.TrimPrefix(raw, "~")), nil
	}
	return filepath.Clean(raw), nil
}
