// Package ident normalizes the paper identifiers users type into the forms
// the InspireHEP API expects.
//
// Three identifier families are supported: INSPIRE record IDs, arXiv IDs
// (new-style "2301.12345" and old-style "hep-ph/0123456") and DOIs. Each
// normalizer accepts the bare identifier, common prefixes ("arXiv:",
// "doi:") and the canonical landing-page URLs, and returns the bare form.
//
// Validation failures are reported as *inspire.InvalidIdentifierError so
// they share the client's error taxonomy; they are always detected before
// any network call.
package ident
