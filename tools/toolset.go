package tools

import (
	"context"
	"errors"
	"strings"

	"github.com/jonwraymond/inspirehep-mcp/inspire"
	"github.com/jonwraymond/inspirehep-mcp/observe"
)

// API is the subset of *inspire.Client the tools call.
type API interface {
	SearchLiterature(ctx context.Context, query string, opts inspire.SearchOptions) (map[string]any, error)
	GetLiteratureRecord(ctx context.Context, recordID, fields string) (map[string]any, error)
	GetLiteratureByArxiv(ctx context.Context, arxivID, fields string) (map[string]any, error)
	GetLiteratureByDOI(ctx context.Context, doi, fields string) (map[string]any, error)
	SearchAuthors(ctx context.Context, query string, size int) (map[string]any, error)
	GetLiteratureFormatted(ctx context.Context, recordID, format string) (string, error)
	SearchLiteratureFormatted(ctx context.Context, query string, size int, format string) (string, error)
}

var _ API = (*inspire.Client)(nil)

// PingMessage is the ping tool's reply.
const PingMessage = "InspireHEP MCP server is running."

// Toolset binds the InspireHEP tools to an API.
type Toolset struct {
	api    API
	logger observe.Logger
}

// NewToolset creates a Toolset. A nil logger discards.
func NewToolset(api API, logger observe.Logger) *Toolset {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &Toolset{api: api, logger: logger}
}

// Register adds every InspireHEP tool to reg.
func Register(reg *Registry, api API, logger observe.Logger) error {
	return NewToolset(api, logger).Register(reg)
}

// Register adds every tool in the set to reg.
func (ts *Toolset) Register(reg *Registry) error {
	var errs []error
	for _, t := range ts.Tools() {
		if err := reg.Register(t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Tools returns the tool definitions bound to this set.
func (ts *Toolset) Tools() []Tool {
	return []Tool{
		{
			Name:        "ping",
			Description: "Check that the InspireHEP MCP server is running.",
			Handler:     ts.ping,
		},
		{
			Name: "search_papers",
			Description: "Search InspireHEP for papers matching a query. Supports free-text and " +
				"field-specific queries such as \"author:ellis title:higgs\", " +
				"\"collaboration:ATLAS supersymmetry\" or \"find a weinberg and t electroweak\".",
			InputSchema: Schema{
				Properties: map[string]Property{
					"query": {Type: "string", Description: "Search query string."},
					"sort":  {Type: "string", Enum: searchSorts, Default: inspire.SortBestMatch},
					"size":  {Type: "integer", Description: "Number of results to return.", Default: 10, Minimum: intp(1), Maximum: intp(inspire.MaxPageSize)},
				},
				Required: []string{"query"},
			},
			Handler: ts.searchPapers,
		},
		{
			Name: "get_paper_details",
			Description: "Retrieve detailed metadata for a specific paper. Provide at least one " +
				"identifier; lookup order is inspire_id, then arxiv_id, then doi. Returns title, " +
				"authors, abstract, citations, references count, publication info, keywords and URLs.",
			InputSchema: Schema{
				Properties: identifierProperties(),
			},
			Handler: ts.getPaperDetails,
		},
		{
			Name: "get_author_papers",
			Description: "Retrieve publication history and citation metrics for an author. Provide " +
				"author_name (\"Weinberg, Steven\") or author_id (INSPIRE BAI such as \"S.Weinberg.1\"). " +
				"Returns papers plus total citations, h-index and average citations.",
			InputSchema: Schema{
				Properties: map[string]Property{
					"author_name": {Type: "string", Description: "Author name in \"Last, First\" format."},
					"author_id":   {Type: "string", Description: "InspireHEP author identifier (BAI)."},
					"sort":        {Type: "string", Enum: listSorts, Default: inspire.SortMostRecent},
					"size":        {Type: "integer", Default: 20, Minimum: intp(1), Maximum: intp(inspire.MaxPageSize)},
				},
			},
			Handler: ts.getAuthorPapers,
		},
		{
			Name: "get_citations",
			Description: "Retrieve citation graph data for a paper: \"citing\" lists papers that cite it, " +
				"\"cited_by\" lists papers it cites. Returns a year-by-year timeline.",
			InputSchema: Schema{
				Properties: map[string]Property{
					"inspire_id": {Type: "string", Description: "InspireHEP record ID."},
					"direction":  {Type: "string", Enum: directions, Default: DirectionCiting},
					"size":       {Type: "integer", Default: 50, Minimum: intp(1), Maximum: intp(maxCitations)},
				},
				Required: []string{"inspire_id"},
			},
			Handler: ts.getCitations,
		},
		{
			Name: "search_by_collaboration",
			Description: "Find publications from an experimental collaboration such as ATLAS, CMS, " +
				"LHCb or Belle-II. Common name variations are normalized. Returns year distribution, " +
				"total citations and the top-cited papers of the returned set.",
			InputSchema: Schema{
				Properties: map[string]Property{
					"collaboration_name": {Type: "string", Description: "Collaboration name."},
					"sort":               {Type: "string", Enum: listSorts, Default: inspire.SortMostRecent},
					"size":               {Type: "integer", Default: 20, Minimum: intp(1), Maximum: intp(inspire.MaxPageSize)},
					"year":               {Type: "integer", Description: "Optional publication year filter."},
				},
				Required: []string{"collaboration_name"},
			},
			Handler: ts.searchByCollaboration,
		},
		{
			Name: "get_references",
			Description: "Generate a formatted reference list for a paper in bibtex, json, latex-us " +
				"or latex-eu format, with the total reference count and paper title.",
			InputSchema: Schema{
				Properties: map[string]Property{
					"inspire_id": {Type: "string", Description: "InspireHEP record ID."},
					"format":     {Type: "string", Enum: referenceFormats, Default: FormatBibTeX},
				},
				Required: []string{"inspire_id"},
			},
			Handler: ts.getReferences,
		},
		{
			Name: "get_bibtex",
			Description: "Fetch the BibTeX entry for a paper identified by inspire_id, arxiv_id or doi. " +
				"Lookup order is inspire_id, then arxiv_id, then doi.",
			InputSchema: Schema{
				Properties: identifierProperties(),
			},
			Handler: ts.getBibTeX,
		},
	}
}

func identifierProperties() map[string]Property {
	return map[string]Property{
		"inspire_id": {Type: "string", Description: "InspireHEP record ID, e.g. \"3456\"."},
		"arxiv_id":   {Type: "string", Description: "arXiv identifier, e.g. \"2301.12345\", \"hep-ph/0123456\" or a full URL."},
		"doi":        {Type: "string", Description: "DOI, e.g. \"10.1103/PhysRevLett.19.1264\" or a full URL."},
	}
}

func (ts *Toolset) ping(ctx context.Context, args Args) (any, error) {
	return PingMessage, nil
}

var (
	searchSorts = []string{inspire.SortBestMatch, inspire.SortMostRecent, inspire.SortMostCited}
	listSorts   = []string{inspire.SortMostRecent, inspire.SortMostCited}
)

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func sortArg(args Args, def string, allowed []string) (string, error) {
	sort, err := args.String("sort", def)
	if err != nil {
		return "", err
	}
	if !oneOf(sort, allowed) {
		return "", invalidArg("Invalid sort option '%s'. Must be one of: %s", sort, strings.Join(allowed, ", "))
	}
	return sort, nil
}
