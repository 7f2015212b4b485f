package tools

import (
	"context"
	"strings"

	"github.com/jonwraymond/inspirehep-mcp/ident"
	"github.com/jonwraymond/inspirehep-mcp/inspire"
)

// Reference list formats.
const (
	FormatBibTeX  = "bibtex"
	FormatJSON    = "json"
	FormatLaTeXEU = "latex-eu"
	FormatLaTeXUS = "latex-us"
)

var referenceFormats = []string{FormatBibTeX, FormatJSON, FormatLaTeXEU, FormatLaTeXUS}

// maxResolvedReferences bounds the batch query for formatted references.
const maxResolvedReferences = 250

const (
	noReferencesNote     = "This paper has no references in InspireHEP."
	noResolvableComment  = "% No resolvable references found."
	referenceAuthorLimit = 5
)

// Reference is one entry of a JSON reference list. Fields absent from the
// upstream record are omitted.
type Reference struct {
	InspireID     string   `json:"inspire_id,omitempty"`
	InspireURL    string   `json:"inspire_url,omitempty"`
	JournalTitle  string   `json:"journal_title,omitempty"`
	JournalVolume string   `json:"journal_volume,omitempty"`
	PageStart     string   `json:"page_start,omitempty"`
	Year          int      `json:"year,omitempty"`
	Authors       []string `json:"authors,omitempty"`
	Title         string   `json:"title,omitempty"`
	ArxivID       string   `json:"arxiv_id,omitempty"`
	DOI           string   `json:"doi,omitempty"`
}

// ReferencesResult is the get_references reply. References holds a
// []Reference for the json format and the formatted text otherwise.
type ReferencesResult struct {
	InspireID            string `json:"inspire_id"`
	PaperTitle           string `json:"paper_title"`
	TotalReferences      int    `json:"total_references"`
	ResolvableReferences *int   `json:"resolvable_references,omitempty"`
	Format               string `json:"format"`
	References           any    `json:"references"`
	Note                 string `json:"note,omitempty"`
}

func (ts *Toolset) getReferences(ctx context.Context, args Args) (any, error) {
	format, err := args.String("format", FormatBibTeX)
	if err != nil {
		return nil, err
	}
	if !oneOf(format, referenceFormats) {
		return nil, invalidArg("Invalid format '%s'. Must be one of: %s", format, strings.Join(referenceFormats, ", "))
	}
	raw, err := args.String("inspire_id", "")
	if err != nil {
		return nil, err
	}
	id, err := ident.NormalizeInspireID(raw)
	if err != nil {
		return nil, err
	}

	record, err := ts.api.GetLiteratureRecord(ctx, id, "references,titles")
	if err != nil {
		if inspire.IsNotFound(err) {
			return nil, &inspire.NotFoundError{Resource: "paper", Identifier: id}
		}
		return nil, err
	}
	meta := object(record, "metadata")
	refs := objects(meta, "references")
	result := ReferencesResult{
		InspireID:       id,
		PaperTitle:      firstString(meta, "titles", "title"),
		TotalReferences: len(refs),
		Format:          format,
	}

	if len(refs) == 0 {
		result.References = ""
		result.Note = noReferencesNote
		return result, nil
	}

	if format == FormatJSON {
		entries := make([]Reference, 0, len(refs))
		for _, ref := range refs {
			if e, ok := parseReference(ref); ok {
				entries = append(entries, e)
			}
		}
		result.References = entries
		return result, nil
	}

	var recids []string
	for _, ref := range refs {
		if rid := inspire.RecordIDFromRef(str(object(ref, "record")["$ref"])); rid != "" {
			recids = append(recids, rid)
		}
	}
	resolvable := len(recids)
	result.ResolvableReferences = &resolvable

	if len(recids) == 0 {
		result.References = noResolvableComment
		return result, nil
	}

	batch := recids[:min(len(recids), maxResolvedReferences)]
	clauses := make([]string, len(batch))
	for i, rid := range batch {
		clauses[i] = "recid:" + rid
	}
	text, err := ts.api.SearchLiteratureFormatted(ctx, strings.Join(clauses, " or "), len(batch), format)
	if err != nil {
		return nil, err
	}
	result.References = text
	return result, nil
}

func parseReference(ref map[string]any) (Reference, bool) {
	var e Reference
	info := object(ref, "reference")

	if rid := inspire.RecordIDFromRef(str(object(ref, "record")["$ref"])); rid != "" {
		e.InspireID = rid
		e.InspireURL = InspireURL + rid
	}
	if pub := object(info, "publication_info"); pub != nil {
		e.JournalTitle = str(pub["journal_title"])
		e.JournalVolume = str(pub["journal_volume"])
		e.PageStart = str(pub["page_start"])
		e.Year = integer(pub["year"])
	}
	authors := objects(info, "authors")
	for _, a := range authors[:min(len(authors), referenceAuthorLimit)] {
		e.Authors = append(e.Authors, str(a["full_name"]))
	}
	switch t := info["title"].(type) {
	case map[string]any:
		e.Title = str(t["title"])
	case string:
		e.Title = t
	}
	e.ArxivID = str(info["arxiv_eprint"])
	if dois := stringList(info["dois"]); len(dois) > 0 {
		e.DOI = dois[0]
	}

	empty := e.InspireID == "" && e.JournalTitle == "" && e.JournalVolume == "" &&
		e.PageStart == "" && e.Year == 0 && len(e.Authors) == 0 && e.Title == "" &&
		e.ArxivID == "" && e.DOI == ""
	return e, !empty
}
