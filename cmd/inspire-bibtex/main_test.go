package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/jonwraymond/inspirehep-mcp/ident"
	"github.com/jonwraymond/inspirehep-mcp/tools"
)

func TestReadIDs(t *testing.T) {
	ids, err := readIDs(strings.NewReader("# DOIs\n10.1086/345812\n\n  1207.7214  \n#skip\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != "10.1086/345812" || ids[1] != "1207.7214" {
		t.Errorf("readIDs() = %q", ids)
	}
}

type fakeBibTeX struct {
	calls atomic.Int32
}

func (f *fakeBibTeX) BibTeX(_ context.Context, typ ident.Type, value string) (tools.BibTeXResult, error) {
	f.calls.Add(1)
	if value == "10.9999/missing" {
		return tools.BibTeXResult{}, errors.New("paper not found")
	}
	return tools.BibTeXResult{InspireID: string(typ), Title: value, BibTeX: "@article{" + value + "}"}, nil
}

func TestFetchAll_KeepsInputOrder(t *testing.T) {
	src := &fakeBibTeX{}
	ids := []string{"10.1086/345812", "not an id", "1207.7214", "10.9999/missing", "84483"}
	var progress bytes.Buffer

	entries := fetchAll(context.Background(), src, ids, 3, &progress)

	if len(entries) != len(ids) {
		t.Fatalf("entries = %d", len(entries))
	}
	wantTypes := []string{"doi", "", "arxiv", "", "inspire"}
	for i, e := range entries {
		if e.id != ids[i] {
			t.Errorf("entries[%d].id = %q, want %q", i, e.id, ids[i])
		}
		if e.result.InspireID != wantTypes[i] {
			t.Errorf("entries[%d] type = %q, want %q", i, e.result.InspireID, wantTypes[i])
		}
	}
	if entries[1].err == nil || entries[3].err == nil {
		t.Error("expected failures for the unknown and missing identifiers")
	}
	if got := src.calls.Load(); got != 4 {
		t.Errorf("BibTeX calls = %d, want 4 (unknown identifiers are not fetched)", got)
	}
	if !strings.Contains(progress.String(), "[2/5] not an id: error") {
		t.Errorf("progress = %s", progress.String())
	}
}

func TestRun_WritesBibFile(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/doi/10.1103/PhysRevD.23.1693":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":       "155483",
				"metadata": map[string]any{"titles": []any{map[string]any{"title": "Inflationary universe"}}},
			})
		case r.URL.Path == "/literature/155483" && r.URL.Query().Get("format") == "bibtex":
			_, _ = w.Write([]byte("@article{Guth:1980zm,\n}\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer up.Close()

	t.Setenv("INSPIREHEP_BASE_URL", up.URL)
	t.Setenv("INSPIREHEP_RATE_LIMIT", "1000")
	t.Setenv("INSPIREHEP_LOG_LEVEL", "error")

	dir := t.TempDir()
	list := filepath.Join(dir, "dois.txt")
	if err := os.WriteFile(list, []byte("10.1103/PhysRevD.23.1693\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.bib")
	var progress bytes.Buffer

	err := run(context.Background(), []string{"-f", list, "-o", out, "10.1088/missing"}, &progress)
	if !errors.Is(err, errSomeFailed) {
		t.Fatalf("run() error = %v, want errSomeFailed", err)
	}

	bib, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(bib), "@article{Guth:1980zm,") {
		t.Errorf("bib = %q", bib)
	}
	if !strings.Contains(progress.String(), "saved 1 of 2 entries") {
		t.Errorf("progress = %s", progress.String())
	}
}

func TestRun_NoIdentifiers(t *testing.T) {
	var progress bytes.Buffer
	if err := run(context.Background(), nil, &progress); err == nil {
		t.Error("run() with no identifiers succeeded")
	}
}
