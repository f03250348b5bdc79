// Package documents turns uploaded files into the text payloads the
// analysis prompt is built from. Binary formats are not parsed; a file
// contributes whatever text reading it yields.
package documents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"unicode/utf8"

	"github.com/mnemolabs/mnemo/internal/core/models"
)

// DefaultExcerptLimit is how many bytes of each document make it into
// the analysis prompt. The cap keeps the joined request inside the
// model's payload limits; it is a tuning constant, not a correctness
// boundary.
const DefaultExcerptLimit = 2000

// ReadAll reads every file concurrently and returns the documents in
// the input order. Reads fan out and join: a partial set of results is
// never returned, the first failure aborts the whole batch.
func ReadAll(ctx context.Context, paths []string) ([]models.Document, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to read")
	}

	docs := make([]models.Document, len(paths))
	errs := make([]error, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			data, err := os.ReadFile(path)
			if err != nil {
				errs[i] = fmt.Errorf("failed to read %s: %w", path, err)
				return
			}
			docs[i] = models.Document{
				Name:    filepath.Base(path),
				RawText: string(data),
			}
		}(i, path)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// Excerpt returns a bounded prefix of text, cut on a rune boundary,
// with an ellipsis when anything was dropped.
func Excerpt(text string, limit int) string {
	if limit <= 0 {
		limit = DefaultExcerptLimit
	}
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

// Names returns the document names in order, for audit events.
func Names(docs []models.Document) []string {
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}
	return names
}
