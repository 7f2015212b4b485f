package inspire

import (
	"context"
	"net/url"
	"strings"
)

// LiteratureFields is the default field projection for literature searches.
var LiteratureFields = strings.Join([]string{
	"titles",
	"authors.full_name",
	"authors.affiliations",
	"abstracts",
	"arxiv_eprints",
	"dois",
	"publication_info",
	"collaborations",
	"citation_count",
	"earliest_date",
	"legacy_creation_date",
}, ",")

// MaxPageSize is the largest page the search endpoints request.
const MaxPageSize = 100

// Sort orders accepted by the literature search endpoint.
const (
	SortBestMatch  = "bestmatch"
	SortMostRecent = "mostrecent"
	SortMostCited  = "mostcited"
)

// SearchOptions tunes a literature search. Zero values select defaults.
type SearchOptions struct {
	Sort   string // default bestmatch
	Size   int    // default 10, clamped to MaxPageSize
	Page   int    // default 1
	Fields string // default LiteratureFields
}

// SearchLiterature runs query against the literature index and returns the
// raw response, which carries the results under "hits".
func (c *Client) SearchLiterature(ctx context.Context, query string, opts SearchOptions) (map[string]any, error) {
	if opts.Sort == "" {
		opts.Sort = SortBestMatch
	}
	if opts.Size <= 0 {
		opts.Size = 10
	}
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.Fields == "" {
		opts.Fields = LiteratureFields
	}

	return c.Get(ctx, "/literature", map[string]any{
		"q":      query,
		"sort":   opts.Sort,
		"size":   min(opts.Size, MaxPageSize),
		"page":   opts.Page,
		"fields": opts.Fields,
	})
}

// GetLiteratureRecord fetches one literature record by INSPIRE record ID.
// An empty fields returns the full record.
func (c *Client) GetLiteratureRecord(ctx context.Context, recordID, fields string) (map[string]any, error) {
	return c.Get(ctx, "/literature/"+recordID, fieldParams(fields))
}

// GetLiteratureByArxiv fetches a literature record by arXiv identifier.
func (c *Client) GetLiteratureByArxiv(ctx context.Context, arxivID, fields string) (map[string]any, error) {
	return c.Get(ctx, "/arxiv/"+arxivID, fieldParams(fields))
}

// GetLiteratureByDOI fetches a literature record by DOI.
func (c *Client) GetLiteratureByDOI(ctx context.Context, doi, fields string) (map[string]any, error) {
	return c.Get(ctx, "/doi/"+doi, fieldParams(fields))
}

// SearchAuthors runs query against the authors index.
func (c *Client) SearchAuthors(ctx context.Context, query string, size int) (map[string]any, error) {
	if size <= 0 {
		size = 10
	}
	return c.Get(ctx, "/authors", map[string]any{
		"q":    query,
		"size": min(size, MaxPageSize),
	})
}

// GetLiteratureFormatted fetches a literature record rendered in an export
// format such as "bibtex", "latex-eu" or "latex-us".
func (c *Client) GetLiteratureFormatted(ctx context.Context, recordID, format string) (string, error) {
	return c.GetText(ctx, "/literature/"+recordID, map[string]any{"format": format})
}

// SearchLiteratureFormatted runs query and returns the hits rendered in an
// export format. size is not clamped to MaxPageSize.
func (c *Client) SearchLiteratureFormatted(ctx context.Context, query string, size int, format string) (string, error) {
	return c.GetText(ctx, "/literature", map[string]any{
		"q":      query,
		"size":   size,
		"format": format,
	})
}

// RecordIDFromRef extracts the trailing record ID from an API "$ref" URL
// such as https://inspirehep.net/api/literature/84483.
func RecordIDFromRef(ref string) string {
	ref = strings.TrimRight(ref, "/")
	if ref == "" {
		return ""
	}
	if u, err := url.Parse(ref); err == nil && u.Path != "" {
		ref = strings.TrimRight(u.Path, "/")
	}
	if i := strings.LastIndexByte(ref, '/'); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

func fieldParams(fields string) map[string]any {
	if fields == "" {
		return nil
	}
	return map[string]any{"fields": fields}
}
