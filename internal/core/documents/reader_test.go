package documents

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadAll_PreservesOrder(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "c.csv", "third"),
		writeFile(t, dir, "a.txt", "first"),
		writeFile(t, dir, "b.txt", "second"),
	}

	docs, err := ReadAll(context.Background(), paths)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("got %d documents, want 3", len(docs))
	}

	wantNames := []string{"c.csv", "a.txt", "b.txt"}
	wantText := []string{"third", "first", "second"}
	for i := range docs {
		if docs[i].Name != wantNames[i] {
			t.Errorf("docs[%d].Name = %q, want %q", i, docs[i].Name, wantNames[i])
		}
		if docs[i].RawText != wantText[i] {
			t.Errorf("docs[%d].RawText = %q, want %q", i, docs[i].RawText, wantText[i])
		}
	}
}

func TestReadAll_FailsWholeBatch(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "ok.txt", "fine"),
		filepath.Join(dir, "missing.txt"),
	}

	docs, err := ReadAll(context.Background(), paths)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if docs != nil {
		t.Errorf("expected no partial results, got %d documents", len(docs))
	}
}

func TestReadAll_EmptyInput(t *testing.T) {
	if _, err := ReadAll(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty path list")
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{name: "under limit unchanged", text: "short", limit: 100, want: "short"},
		{name: "exactly at limit", text: "12345", limit: 5, want: "12345"},
		{name: "over limit truncated", text: "1234567890", limit: 5, want: "12345..."},
		{name: "multibyte rune boundary", text: "hé" + strings.Repeat("x", 10), limit: 2, want: "h..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Excerpt(tt.text, tt.limit); got != tt.want {
				t.Errorf("Excerpt() = %q, want %q", got, tt.want)
			}
		})
	}
}
