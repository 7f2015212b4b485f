package tools

import (
	"strconv"
	"strings"
)

// InspireURL is the public landing page for literature records.
const InspireURL = "https://inspirehep.net/literature/"

const summaryAuthors = 10

// PaperSummary is the compact paper view used in result lists.
type PaperSummary struct {
	InspireID      string   `json:"inspire_id"`
	Title          string   `json:"title"`
	Authors        []string `json:"authors"`
	TotalAuthors   int      `json:"total_authors"`
	Abstract       string   `json:"abstract"`
	ArxivID        string   `json:"arxiv_id"`
	DOI            string   `json:"doi"`
	CitationCount  int      `json:"citation_count"`
	Date           string   `json:"date"`
	Publication    string   `json:"publication"`
	Collaborations []string `json:"collaborations"`
	InspireURL     string   `json:"inspire_url"`
}

// ParsePaper extracts a PaperSummary from a literature hit or record.
func ParsePaper(record map[string]any) PaperSummary {
	meta := object(record, "metadata")
	id := str(record["id"])
	if id == "" {
		id = str(meta["control_number"])
	}

	authors := objects(meta, "authors")
	names := make([]string, 0, min(len(authors), summaryAuthors))
	for _, a := range authors[:min(len(authors), summaryAuthors)] {
		names = append(names, str(a["full_name"]))
	}

	date := str(meta["earliest_date"])
	if date == "" {
		date = str(meta["legacy_creation_date"])
	}

	return PaperSummary{
		InspireID:      id,
		Title:          firstString(meta, "titles", "title"),
		Authors:        names,
		TotalAuthors:   len(authors),
		Abstract:       firstString(meta, "abstracts", "value"),
		ArxivID:        firstString(meta, "arxiv_eprints", "value"),
		DOI:            firstString(meta, "dois", "value"),
		CitationCount:  integer(meta["citation_count"]),
		Date:           date,
		Publication:    publication(meta),
		Collaborations: values(meta, "collaborations", "value"),
		InspireURL:     InspireURL + id,
	}
}

// ParsePapers parses the hits of a search response and returns them with
// the reported total.
func ParsePapers(resp map[string]any) (int, []PaperSummary) {
	hits := object(resp, "hits")
	records := objects(hits, "hits")
	papers := make([]PaperSummary, 0, len(records))
	for _, r := range records {
		papers = append(papers, ParsePaper(r))
	}
	return integer(hits["total"]), papers
}

// publication renders the first publication_info entry, e.g.
// "Phys.Rev.Lett. 19 (1967) 1264".
func publication(meta map[string]any) string {
	infos := objects(meta, "publication_info")
	if len(infos) == 0 {
		return ""
	}
	pi := infos[0]
	parts := make([]string, 0, 4)
	if j := str(pi["journal_title"]); j != "" {
		parts = append(parts, j)
	}
	if v := str(pi["journal_volume"]); v != "" {
		parts = append(parts, v)
	}
	if y := str(pi["year"]); y != "" {
		parts = append(parts, "("+y+")")
	}
	page := str(pi["page_start"])
	if page == "" {
		page = str(pi["artid"])
	}
	if page != "" {
		parts = append(parts, page)
	}
	return strings.Join(parts, " ")
}

// yearOf returns the year prefix of an ISO date, or "unknown".
func yearOf(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return "unknown"
}

func object(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	v, _ := m[key].(map[string]any)
	return v
}

func objects(m map[string]any, key string) []map[string]any {
	if m == nil {
		return nil
	}
	raw, _ := m[key].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, v := range raw {
		if o, ok := v.(map[string]any); ok {
			out = append(out, o)
		}
	}
	return out
}

func firstString(m map[string]any, list, field string) string {
	items := objects(m, list)
	if len(items) == 0 {
		return ""
	}
	return str(items[0][field])
}

func values(m map[string]any, list, field string) []string {
	items := objects(m, list)
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s := str(it[field]); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func str(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

func integer(v any) int {
	switch v := v.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case map[string]any:
		// Elasticsearch-style {"value": n} totals.
		return integer(v["value"])
	default:
		return 0
	}
}
