package tools

import (
	"context"
	"errors"

	"github.com/jonwraymond/inspirehep-mcp/ident"
	"github.com/jonwraymond/inspirehep-mcp/inspire"
)

// DetailFields is the field projection for get_paper_details.
const DetailFields = "titles,authors.full_name,authors.affiliations,authors.ids,abstracts," +
	"arxiv_eprints,dois,publication_info,collaborations,citation_count," +
	"citation_count_without_self_citations,earliest_date,legacy_creation_date,references," +
	"documents,urls,keywords,inspire_categories,texkeys,report_numbers,document_type,number_of_pages"

const detailAuthors = 50

// SearchResult is the search_papers reply.
type SearchResult struct {
	TotalResults int            `json:"total_results"`
	Returned     int            `json:"returned"`
	Query        string         `json:"query"`
	Sort         string         `json:"sort"`
	Papers       []PaperSummary `json:"papers"`
}

func (ts *Toolset) searchPapers(ctx context.Context, args Args) (any, error) {
	query, err := args.String("query", "")
	if err != nil {
		return nil, err
	}
	if query == "" {
		return nil, invalidArg("query is required")
	}
	sort, err := sortArg(args, inspire.SortBestMatch, searchSorts)
	if err != nil {
		return nil, err
	}
	size, err := args.Int("size", 10)
	if err != nil {
		return nil, err
	}

	resp, err := ts.api.SearchLiterature(ctx, query, inspire.SearchOptions{
		Sort: sort,
		Size: clamp(size, 1, inspire.MaxPageSize),
	})
	if err != nil {
		return nil, err
	}

	total, papers := ParsePapers(resp)
	return SearchResult{
		TotalResults: total,
		Returned:     len(papers),
		Query:        query,
		Sort:         sort,
		Papers:       papers,
	}, nil
}

// paperRef is the identifier a caller used to name a paper.
type paperRef struct {
	raw        string
	typ        ident.Type
	normalized string
}

// paperRefArg picks the first identifier present, in the order inspire_id,
// arxiv_id, doi, and normalizes it.
func paperRefArg(args Args) (paperRef, error) {
	for _, f := range []struct {
		key       string
		typ       ident.Type
		normalize func(string) (string, error)
	}{
		{"inspire_id", ident.TypeInspire, ident.NormalizeInspireID},
		{"arxiv_id", ident.TypeArxiv, ident.NormalizeArxivID},
		{"doi", ident.TypeDOI, ident.NormalizeDOI},
	} {
		raw, err := args.String(f.key, "")
		if err != nil {
			return paperRef{}, err
		}
		if raw == "" {
			continue
		}
		id, err := f.normalize(raw)
		if err != nil {
			return paperRef{}, err
		}
		return paperRef{raw: raw, typ: f.typ, normalized: id}, nil
	}
	return paperRef{}, invalidArg("At least one identifier must be provided (inspire_id, arxiv_id, or doi)")
}

// fetchPaper fetches the record ref names. A missing record is reported as
// a paper not found under the identifier the caller supplied.
func (ts *Toolset) fetchPaper(ctx context.Context, ref paperRef, fields string) (map[string]any, error) {
	var (
		record map[string]any
		err    error
	)
	switch ref.typ {
	case ident.TypeArxiv:
		record, err = ts.api.GetLiteratureByArxiv(ctx, ref.normalized, fields)
	case ident.TypeDOI:
		record, err = ts.api.GetLiteratureByDOI(ctx, ref.normalized, fields)
	default:
		record, err = ts.api.GetLiteratureRecord(ctx, ref.normalized, fields)
	}
	if inspire.IsNotFound(err) {
		return nil, &inspire.NotFoundError{Resource: "paper", Identifier: ref.raw}
	}
	return record, err
}

// AuthorDetail is one author in the detail view.
type AuthorDetail struct {
	FullName     string   `json:"full_name"`
	Affiliations []string `json:"affiliations"`
	InspireIDs   []string `json:"inspire_ids"`
}

// PaperDetail is the get_paper_details reply.
type PaperDetail struct {
	InspireID                         string            `json:"inspire_id"`
	Title                             string            `json:"title"`
	Authors                           []AuthorDetail    `json:"authors"`
	TotalAuthors                      int               `json:"total_authors"`
	Abstract                          string            `json:"abstract"`
	ArxivID                           string            `json:"arxiv_id"`
	DOI                               string            `json:"doi"`
	CitationCount                     int               `json:"citation_count"`
	CitationCountWithoutSelfCitations int               `json:"citation_count_without_self_citations"`
	Date                              string            `json:"date"`
	Publication                       string            `json:"publication"`
	Collaborations                    []string          `json:"collaborations"`
	InspireURL                        string            `json:"inspire_url"`
	ReferencesCount                   int               `json:"references_count"`
	DocumentType                      []string          `json:"document_type"`
	Keywords                          []string          `json:"keywords"`
	InspireCategories                 []string          `json:"inspire_categories"`
	TexKey                            *string           `json:"texkey"`
	ReportNumbers                     []string          `json:"report_numbers"`
	NumberOfPages                     *int              `json:"number_of_pages"`
	URLs                              map[string]string `json:"urls"`
}

// BuildDetail assembles the detail view of a full literature record.
func BuildDetail(record map[string]any) PaperDetail {
	base := ParsePaper(record)
	meta := object(record, "metadata")

	rawAuthors := objects(meta, "authors")
	authors := make([]AuthorDetail, 0, min(len(rawAuthors), detailAuthors))
	for _, a := range rawAuthors[:min(len(rawAuthors), detailAuthors)] {
		var bais []string
		for _, id := range objects(a, "ids") {
			if str(id["schema"]) == "INSPIRE BAI" {
				bais = append(bais, str(id["value"]))
			}
		}
		authors = append(authors, AuthorDetail{
			FullName:     str(a["full_name"]),
			Affiliations: values(a, "affiliations", "value"),
			InspireIDs:   nonNil(bais),
		})
	}

	d := PaperDetail{
		InspireID:                         base.InspireID,
		Title:                             base.Title,
		Authors:                           authors,
		TotalAuthors:                      len(rawAuthors),
		Abstract:                          base.Abstract,
		ArxivID:                           base.ArxivID,
		DOI:                               base.DOI,
		CitationCount:                     base.CitationCount,
		CitationCountWithoutSelfCitations: integer(meta["citation_count_without_self_citations"]),
		Date:                              base.Date,
		Publication:                       base.Publication,
		Collaborations:                    base.Collaborations,
		InspireURL:                        base.InspireURL,
		ReferencesCount:                   len(objects(meta, "references")),
		DocumentType:                      stringList(meta["document_type"]),
		Keywords:                          values(meta, "keywords", "value"),
		InspireCategories:                 values(meta, "inspire_categories", "term"),
		ReportNumbers:                     values(meta, "report_numbers", "value"),
	}

	if keys := stringList(meta["texkeys"]); len(keys) > 0 {
		d.TexKey = &keys[0]
	}
	if _, ok := meta["number_of_pages"]; ok {
		n := integer(meta["number_of_pages"])
		d.NumberOfPages = &n
	}

	urls := map[string]string{}
	if d.ArxivID != "" {
		urls["arxiv_abs"] = "https://arxiv.org/abs/" + d.ArxivID
		urls["arxiv_pdf"] = "https://arxiv.org/pdf/" + d.ArxivID
	}
	if d.DOI != "" {
		urls["doi"] = "https://doi.org/" + d.DOI
	}
	if docs := objects(meta, "documents"); len(docs) > 0 {
		if u := str(docs[0]["url"]); u != "" {
			urls["fulltext"] = u
		}
	}
	urls["inspire"] = d.InspireURL
	if b := str(object(record, "links")["bibtex"]); b != "" {
		urls["bibtex"] = b
	}
	d.URLs = urls

	return d
}

func (ts *Toolset) getPaperDetails(ctx context.Context, args Args) (any, error) {
	ref, err := paperRefArg(args)
	if err != nil {
		return nil, err
	}
	record, err := ts.fetchPaper(ctx, ref, DetailFields)
	if err != nil {
		return nil, err
	}
	return BuildDetail(record), nil
}

// BibTeXResult is the get_bibtex reply.
type BibTeXResult struct {
	IdentifierUsed string `json:"identifier_used"`
	InspireID      string `json:"inspire_id"`
	Title          string `json:"title"`
	BibTeX         string `json:"bibtex"`
}

func (ts *Toolset) getBibTeX(ctx context.Context, args Args) (any, error) {
	ref, err := paperRefArg(args)
	if err != nil {
		return nil, err
	}
	return ts.BibTeX(ctx, ref.typ, ref.raw)
}

// BibTeX resolves the paper named by value (of family typ) to its record
// and fetches the record's BibTeX export.
func (ts *Toolset) BibTeX(ctx context.Context, typ ident.Type, value string) (BibTeXResult, error) {
	var normalize func(string) (string, error)
	switch typ {
	case ident.TypeInspire:
		normalize = ident.NormalizeInspireID
	case ident.TypeArxiv:
		normalize = ident.NormalizeArxivID
	case ident.TypeDOI:
		normalize = ident.NormalizeDOI
	default:
		return BibTeXResult{}, errors.New("tools: unsupported identifier type")
	}
	id, err := normalize(value)
	if err != nil {
		return BibTeXResult{}, err
	}
	ref := paperRef{raw: value, typ: typ, normalized: id}

	record, err := ts.fetchPaper(ctx, ref, "titles,control_number")
	if err != nil {
		return BibTeXResult{}, err
	}
	paper := ParsePaper(record)
	if paper.InspireID == "" {
		return BibTeXResult{}, &inspire.APIError{Message: "record has no INSPIRE ID", Details: ref.raw}
	}

	bib, err := ts.api.GetLiteratureFormatted(ctx, paper.InspireID, FormatBibTeX)
	if err != nil {
		if inspire.IsNotFound(err) {
			return BibTeXResult{}, &inspire.NotFoundError{Resource: "paper", Identifier: ref.raw}
		}
		return BibTeXResult{}, err
	}

	return BibTeXResult{
		IdentifierUsed: ref.normalized,
		InspireID:      paper.InspireID,
		Title:          paper.Title,
		BibTeX:         bib,
	}, nil
}

func stringList(v any) []string {
	raw, _ := v.([]any)
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
