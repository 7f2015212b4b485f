// Package tools implements the InspireHEP tool set exposed by the server.
//
// A Registry holds named tools, each with a description and a JSON input
// schema. Calling a tool decodes its JSON arguments, runs the handler under
// the observe middleware and renders the outcome as JSON text. Handler
// failures never surface as protocol errors: they are rendered as
// {"error": "<message>"} with Result.IsError set, so the model sees them.
//
// Register wires the eight InspireHEP tools (ping, search_papers,
// get_paper_details, get_author_papers, get_citations,
// search_by_collaboration, get_references, get_bibtex) to an API, which
// *inspire.Client satisfies.
package tools
