package ident

import (
	"regexp"
	"strings"

	"github.com/jonwraymond/inspirehep-mcp/inspire"
)

// Type is an identifier family.
type Type string

const (
	TypeUnknown Type = ""
	TypeInspire Type = "inspire"
	TypeArxiv   Type = "arxiv"
	TypeDOI     Type = "doi"
)

// Labels used in InvalidIdentifierError.Type.
const (
	LabelInspire = "INSPIRE ID"
	LabelArxiv   = "arXiv ID"
	LabelDOI     = "DOI"
)

var (
	inspireDigits = regexp.MustCompile(`^[0-9]+$`)
	inspireURL    = regexp.MustCompile(`^(?i)https?://(?:www\.)?inspirehep\.net/(?:api/)?literature/([0-9]+)/?(?:[?#].*)?$`)

	arxivNew   = regexp.MustCompile(`^[0-9]{4}\.[0-9]{4,5}$`)
	arxivOld   = regexp.MustCompile(`^[a-z][a-z-]*(?:\.[A-Z]{2})?/[0-9]{7}$`)
	arxivVer   = regexp.MustCompile(`v[0-9]+$`)
	arxivURL   = regexp.MustCompile(`^(?i)https?://(?:www\.|export\.)?arxiv\.org/(?:abs|pdf)/(.+?)/?$`)
	arxivLabel = regexp.MustCompile(`^(?i)arxiv:\s*`)

	doiPattern = regexp.MustCompile(`^10\.[0-9]{4,9}/\S+$`)
	doiURL     = regexp.MustCompile(`^(?i)https?://(?:dx\.)?doi\.org/`)
	doiLabel   = regexp.MustCompile(`^(?i)doi:\s*`)
)

// NormalizeInspireID returns the numeric INSPIRE record ID in s.
// It accepts bare digits and inspirehep.net literature URLs.
func NormalizeInspireID(s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", invalid(LabelInspire, s, "empty identifier")
	}
	if m := inspireURL.FindStringSubmatch(v); m != nil {
		return m[1], nil
	}
	if !inspireDigits.MatchString(v) {
		return "", invalid(LabelInspire, s, "must be a numeric record ID")
	}
	return v, nil
}

// NormalizeArxivID returns the bare arXiv identifier in s without version
// suffix, e.g. "1207.7214" for "arXiv:1207.7214v2" or
// "https://arxiv.org/pdf/1207.7214v2.pdf".
func NormalizeArxivID(s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", invalid(LabelArxiv, s, "empty identifier")
	}
	if m := arxivURL.FindStringSubmatch(v); m != nil {
		v = m[1]
	}
	v = arxivLabel.ReplaceAllString(v, "")
	v = strings.TrimSuffix(v, ".pdf")
	v = arxivVer.ReplaceAllString(v, "")

	if !arxivNew.MatchString(v) && !arxivOld.MatchString(v) {
		return "", invalid(LabelArxiv, s, "expected YYMM.NNNNN or archive/YYMMNNN")
	}
	return v, nil
}

// NormalizeDOI returns the bare DOI in s, e.g. "10.1103/PhysRevLett.19.1264"
// for "https://doi.org/10.1103/PhysRevLett.19.1264".
func NormalizeDOI(s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", invalid(LabelDOI, s, "empty identifier")
	}
	v = doiURL.ReplaceAllString(v, "")
	v = doiLabel.ReplaceAllString(v, "")
	if !doiPattern.MatchString(v) {
		return "", invalid(LabelDOI, s, "expected 10.<registrant>/<suffix>")
	}
	return v, nil
}

// Detect classifies a raw identifier. It returns TypeUnknown when s matches
// none of the supported families.
func Detect(s string) Type {
	if _, err := NormalizeInspireID(s); err == nil {
		return TypeInspire
	}
	if _, err := NormalizeDOI(s); err == nil {
		return TypeDOI
	}
	if _, err := NormalizeArxivID(s); err == nil {
		return TypeArxiv
	}
	return TypeUnknown
}

// Normalize detects the family of s and returns its normalized form.
func Normalize(s string) (Type, string, error) {
	switch Detect(s) {
	case TypeInspire:
		v, err := NormalizeInspireID(s)
		return TypeInspire, v, err
	case TypeDOI:
		v, err := NormalizeDOI(s)
		return TypeDOI, v, err
	case TypeArxiv:
		v, err := NormalizeArxivID(s)
		return TypeArxiv, v, err
	}
	return TypeUnknown, "", invalid("identifier", s, "not an INSPIRE ID, arXiv ID or DOI")
}

func invalid(label, value, reason string) error {
	return &inspire.InvalidIdentifierError{Type: label, Value: value, Reason: reason}
}
