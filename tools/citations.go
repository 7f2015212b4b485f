package tools

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/jonwraymond/inspirehep-mcp/ident"
	"github.com/jonwraymond/inspirehep-mcp/inspire"
)

// Citation directions.
const (
	DirectionCiting  = "citing"   // papers that cite the record
	DirectionCitedBy = "cited_by" // papers the record cites
)

// maxCitations bounds the size argument of get_citations. Search pages
// are further capped at inspire.MaxPageSize.
const maxCitations = 250

var directions = []string{DirectionCiting, DirectionCitedBy}

// CitationsResult is the get_citations reply.
type CitationsResult struct {
	InspireID      string         `json:"inspire_id"`
	Direction      string         `json:"direction"`
	TotalCitations int            `json:"total_citations"`
	Returned       int            `json:"returned"`
	Timeline       map[string]int `json:"timeline"`
	Papers         []PaperSummary `json:"papers"`
}

func (ts *Toolset) getCitations(ctx context.Context, args Args) (any, error) {
	direction, err := args.String("direction", DirectionCiting)
	if err != nil {
		return nil, err
	}
	if !oneOf(direction, directions) {
		return nil, invalidArg("Invalid direction '%s'. Must be one of: %s", direction, strings.Join(directions, ", "))
	}
	raw, err := args.String("inspire_id", "")
	if err != nil {
		return nil, err
	}
	id, err := ident.NormalizeInspireID(raw)
	if err != nil {
		return nil, err
	}
	size, err := args.Int("size", 50)
	if err != nil {
		return nil, err
	}

	query := "refersto:" + id
	if direction == DirectionCitedBy {
		query = "citedby:recid:" + id
	}
	resp, err := ts.api.SearchLiterature(ctx, query, inspire.SearchOptions{
		Sort: inspire.SortMostRecent,
		Size: clamp(size, 1, maxCitations),
	})
	if err != nil {
		return nil, err
	}
	total, papers := ParsePapers(resp)

	return CitationsResult{
		InspireID:      id,
		Direction:      direction,
		TotalCitations: total,
		Returned:       len(papers),
		Timeline:       yearCounts(papers),
		Papers:         papers,
	}, nil
}

// yearCounts counts papers per publication year. encoding/json writes map
// keys in sorted order, so the result renders chronologically.
func yearCounts(papers []PaperSummary) map[string]int {
	counts := make(map[string]int)
	for _, p := range papers {
		counts[yearOf(p.Date)]++
	}
	return counts
}

var collaborationAliases = map[string]string{
	"lhcb":             "LHCb",
	"atlas":            "ATLAS",
	"cms":              "CMS",
	"alice":            "ALICE",
	"belle":            "Belle",
	"belle ii":         "Belle-II",
	"belle-ii":         "Belle-II",
	"belle2":           "Belle-II",
	"babar":            "BaBar",
	"daya bay":         "Daya Bay",
	"t2k":              "T2K",
	"nova":             "NOvA",
	"super-kamiokande": "Super-Kamiokande",
	"superkamiokande":  "Super-Kamiokande",
	"super-k":          "Super-Kamiokande",
	"planck":           "Planck",
	"ligo":             "LIGO Scientific",
	"virgo":            "VIRGO",
	"xenon":            "XENON",
	"darkside":         "DarkSide",
	"fermi-lat":        "Fermi-LAT",
	"ice cube":         "IceCube",
	"icecube":          "IceCube",
	"star":             "STAR",
	"phenix":           "PHENIX",
}

// NormalizeCollaboration maps common spellings to the collaboration name
// INSPIRE indexes, e.g. "belle2" to "Belle-II". Unknown names are trimmed
// and returned unchanged.
func NormalizeCollaboration(name string) string {
	trimmed := strings.TrimSpace(name)
	if canonical, ok := collaborationAliases[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return trimmed
}

// TopCitedPaper is an entry of CollaborationResult.TopCitedPapers.
type TopCitedPaper struct {
	Title         string `json:"title"`
	InspireID     string `json:"inspire_id"`
	CitationCount int    `json:"citation_count"`
	Date          string `json:"date"`
}

// CollaborationStats summarizes the returned papers.
type CollaborationStats struct {
	YearDistribution map[string]int `json:"year_distribution"`
	TotalCitations   int            `json:"total_citations"`
}

// CollaborationResult is the search_by_collaboration reply.
type CollaborationResult struct {
	Collaboration     string             `json:"collaboration"`
	Query             string             `json:"query"`
	TotalPublications int                `json:"total_publications"`
	Returned          int                `json:"returned"`
	Sort              string             `json:"sort"`
	YearFilter        *int               `json:"year_filter"`
	Statistics        CollaborationStats `json:"statistics"`
	TopCitedPapers    []TopCitedPaper    `json:"top_cited_papers"`
	Papers            []PaperSummary     `json:"papers"`
}

const topCited = 5

func (ts *Toolset) searchByCollaboration(ctx context.Context, args Args) (any, error) {
	name, err := args.String("collaboration_name", "")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, invalidArg("collaboration_name is required")
	}
	sortBy, err := sortArg(args, inspire.SortMostRecent, listSorts)
	if err != nil {
		return nil, err
	}
	size, err := args.Int("size", 20)
	if err != nil {
		return nil, err
	}
	year, hasYear, err := args.OptionalInt("year")
	if err != nil {
		return nil, err
	}

	collab := NormalizeCollaboration(name)
	query := "collaboration:" + collab
	var yearFilter *int
	if hasYear {
		query += " and date " + strconv.Itoa(year)
		yearFilter = &year
	}

	resp, err := ts.api.SearchLiterature(ctx, query, inspire.SearchOptions{
		Sort: sortBy,
		Size: clamp(size, 1, inspire.MaxPageSize),
	})
	if err != nil {
		return nil, err
	}
	total, papers := ParsePapers(resp)

	citations := 0
	for _, p := range papers {
		citations += p.CitationCount
	}

	ranked := append([]PaperSummary(nil), papers...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CitationCount > ranked[j].CitationCount
	})
	top := make([]TopCitedPaper, 0, topCited)
	for _, p := range ranked[:min(len(ranked), topCited)] {
		top = append(top, TopCitedPaper{
			Title:         p.Title,
			InspireID:     p.InspireID,
			CitationCount: p.CitationCount,
			Date:          p.Date,
		})
	}

	return CollaborationResult{
		Collaboration:     collab,
		Query:             query,
		TotalPublications: total,
		Returned:          len(papers),
		Sort:              sortBy,
		YearFilter:        yearFilter,
		Statistics: CollaborationStats{
			YearDistribution: yearCounts(papers),
			TotalCitations:   citations,
		},
		TopCitedPapers: top,
		Papers:         papers,
	}, nil
}
