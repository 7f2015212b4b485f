package inspire

import (
	"context"
	"net/http"
	"testing"
)

func TestSearchLiterature_Params(t *testing.T) {
	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"hits": map[string]any{"total": 0, "hits": []any{}}})
	})
	c := newTestClient(t, up.URL)

	tests := []struct {
		name      string
		opts      SearchOptions
		wantSort  string
		wantSize  string
		wantPage  string
		wantField string
	}{
		{"defaults", SearchOptions{}, "bestmatch", "10", "1", LiteratureFields},
		{"clamped size", SearchOptions{Size: 250, Sort: SortMostCited}, "mostcited", "100", "1", LiteratureFields},
		{"custom", SearchOptions{Size: 3, Page: 2, Fields: "titles"}, "bestmatch", "3", "2", "titles"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.SearchLiterature(context.Background(), "t "+tt.name, tt.opts); err != nil {
				t.Fatalf("SearchLiterature() error = %v", err)
			}
			r := up.lastRequest()
			if r.URL.Path != "/literature" {
				t.Errorf("path = %q", r.URL.Path)
			}
			q := r.URL.Query()
			if q.Get("q") != "t "+tt.name {
				t.Errorf("q = %q", q.Get("q"))
			}
			if q.Get("sort") != tt.wantSort {
				t.Errorf("sort = %q, want %q", q.Get("sort"), tt.wantSort)
			}
			if q.Get("size") != tt.wantSize {
				t.Errorf("size = %q, want %q", q.Get("size"), tt.wantSize)
			}
			if q.Get("page") != tt.wantPage {
				t.Errorf("page = %q, want %q", q.Get("page"), tt.wantPage)
			}
			if q.Get("fields") != tt.wantField {
				t.Errorf("fields = %q, want %q", q.Get("fields"), tt.wantField)
			}
		})
	}
}

func TestRecordEndpoints_Paths(t *testing.T) {
	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"id": "1"})
	})
	c := newTestClient(t, up.URL)
	ctx := context.Background()

	tests := []struct {
		name       string
		call       func() error
		wantPath   string
		wantFields string
	}{
		{
			name:     "literature record",
			call:     func() error { _, err := c.GetLiteratureRecord(ctx, "3456", ""); return err },
			wantPath: "/literature/3456",
		},
		{
			name:       "arxiv",
			call:       func() error { _, err := c.GetLiteratureByArxiv(ctx, "1207.7214", "titles"); return err },
			wantPath:   "/arxiv/1207.7214",
			wantFields: "titles",
		},
		{
			name:     "doi with slash and parentheses",
			call:     func() error { _, err := c.GetLiteratureByDOI(ctx, "10.1016/0375-9474(74)90528-4", ""); return err },
			wantPath: "/doi/10.1016/0375-9474(74)90528-4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); err != nil {
				t.Fatalf("error = %v", err)
			}
			r := up.lastRequest()
			if r.URL.Path != tt.wantPath {
				t.Errorf("path = %q, want %q", r.URL.Path, tt.wantPath)
			}
			if got := r.URL.Query().Get("fields"); got != tt.wantFields {
				t.Errorf("fields = %q, want %q", got, tt.wantFields)
			}
		})
	}
}

func TestSearchAuthors(t *testing.T) {
	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"hits": map[string]any{"hits": []any{}}})
	})
	c := newTestClient(t, up.URL)

	if _, err := c.SearchAuthors(context.Background(), "Weinberg, Steven", 500); err != nil {
		t.Fatal(err)
	}
	r := up.lastRequest()
	if r.URL.Path != "/authors" {
		t.Errorf("path = %q", r.URL.Path)
	}
	if got := r.URL.Query().Get("size"); got != "100" {
		t.Errorf("size = %q, want 100", got)
	}
}

func TestFormattedEndpoints(t *testing.T) {
	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("\\bibitem{x}"))
	})
	c := newTestClient(t, up.URL)
	ctx := context.Background()

	if _, err := c.GetLiteratureFormatted(ctx, "3456", "bibtex"); err != nil {
		t.Fatal(err)
	}
	r := up.lastRequest()
	if r.URL.Path != "/literature/3456" || r.URL.Query().Get("format") != "bibtex" {
		t.Errorf("request = %s", r.URL)
	}

	text, err := c.SearchLiteratureFormatted(ctx, "recid:1 or recid:2", 250, "latex-us")
	if err != nil {
		t.Fatal(err)
	}
	if text != "\\bibitem{x}" {
		t.Errorf("text = %q", text)
	}
	q := up.lastRequest().URL.Query()
	if q.Get("size") != "250" || q.Get("format") != "latex-us" {
		t.Errorf("query = %v", q)
	}
}

func TestRecordIDFromRef(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"https://inspirehep.net/api/literature/84483", "84483"},
		{"https://inspirehep.net/api/literature/84483/", "84483"},
		{"84483", "84483"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := RecordIDFromRef(tt.ref); got != tt.want {
			t.Errorf("RecordIDFromRef(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}
