package tools

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/jonwraymond/inspirehep-mcp/inspire"
	"github.com/jonwraymond/inspirehep-mcp/observe"
)

// AuthorMetrics aggregates citation counts over the returned papers.
type AuthorMetrics struct {
	TotalCitations   int     `json:"total_citations"`
	HIndex           int     `json:"h_index"`
	HIndexNote       string  `json:"h_index_note"`
	AverageCitations float64 `json:"average_citations"`
}

// AuthorPapersResult is the get_author_papers reply.
type AuthorPapersResult struct {
	Author      map[string]any `json:"author"`
	TotalPapers int            `json:"total_papers"`
	Returned    int            `json:"returned"`
	Sort        string         `json:"sort"`
	Metrics     AuthorMetrics  `json:"metrics"`
	Papers      []PaperSummary `json:"papers"`
}

func (ts *Toolset) getAuthorPapers(ctx context.Context, args Args) (any, error) {
	name, err := args.String("author_name", "")
	if err != nil {
		return nil, err
	}
	authorID, err := args.String("author_id", "")
	if err != nil {
		return nil, err
	}
	if name == "" && authorID == "" {
		return nil, invalidArg("Either author_name or author_id must be provided")
	}
	sort, err := sortArg(args, inspire.SortMostRecent, listSorts)
	if err != nil {
		return nil, err
	}
	size, err := args.Int("size", 20)
	if err != nil {
		return nil, err
	}

	var (
		bai    string
		author map[string]any
	)
	if authorID != "" {
		bai, author = authorID, map[string]any{"bai": authorID}
	} else {
		bai, author = ts.resolveAuthor(ctx, name)
	}

	resp, err := ts.api.SearchLiterature(ctx, "a "+bai, inspire.SearchOptions{
		Sort: sort,
		Size: clamp(size, 1, inspire.MaxPageSize),
	})
	if err != nil {
		return nil, err
	}
	total, papers := ParsePapers(resp)

	return AuthorPapersResult{
		Author:      author,
		TotalPapers: total,
		Returned:    len(papers),
		Sort:        sort,
		Metrics:     authorMetrics(papers, total),
		Papers:      papers,
	}, nil
}

// resolveAuthor maps a display name to the author's INSPIRE BAI through the
// authors index. Any failure falls back to searching by the raw name.
func (ts *Toolset) resolveAuthor(ctx context.Context, name string) (string, map[string]any) {
	fallback := map[string]any{"name": name, "bai": nil, "inspire_author_id": nil}

	resp, err := ts.api.SearchAuthors(ctx, name, 1)
	if err != nil {
		ts.logger.Debug(ctx, "author resolution failed, searching by name",
			observe.Field{Key: "author_name", Value: name},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return name, fallback
	}

	hits := objects(object(resp, "hits"), "hits")
	if len(hits) == 0 {
		return name, fallback
	}
	meta := object(hits[0], "metadata")
	for _, id := range objects(meta, "ids") {
		if str(id["schema"]) != "INSPIRE BAI" {
			continue
		}
		bai := str(id["value"])
		nameInfo := object(meta, "name")
		display := str(nameInfo["value"])
		if display == "" {
			display = name
		}
		return bai, map[string]any{
			"name":              display,
			"preferred_name":    str(nameInfo["preferred_name"]),
			"bai":               bai,
			"inspire_author_id": str(hits[0]["id"]),
		}
	}
	return name, fallback
}

func authorMetrics(papers []PaperSummary, total int) AuthorMetrics {
	counts := make([]int, len(papers))
	sum := 0
	for i, p := range papers {
		counts[i] = p.CitationCount
		sum += p.CitationCount
	}

	m := AuthorMetrics{
		TotalCitations: sum,
		HIndex:         HIndex(counts),
		HIndexNote:     "Computed from all papers",
	}
	if len(papers) < total {
		m.HIndexNote = fmt.Sprintf("Computed from the %d returned papers", len(papers))
	}
	if len(papers) > 0 {
		m.AverageCitations = math.Round(float64(sum)/float64(len(papers))*10) / 10
	}
	return m
}

// HIndex returns the largest h such that h of the counts are at least h.
func HIndex(counts []int) int {
	sorted := append([]int(nil), counts...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	h := 0
	for i, c := range sorted {
		if c < i+1 {
			break
		}
		h = i + 1
	}
	return h
}
