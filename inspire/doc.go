// Package inspire is a client for the InspireHEP REST API.
//
// A Client combines three pieces shared by every call made through it:
//
//   - a bounded TTL response cache (see package cache), consulted before any
//     network activity;
//   - a pacer (see package resilience) that spaces request starts by at least
//     1/RequestsPerSecond;
//   - a lazily created HTTP session that Close releases and the next call
//     recreates.
//
// Every error returned by a Client is one of four kinds: *APIError,
// *NotFoundError, *RateLimitError or *InvalidIdentifierError. Transport,
// timeout and decoding failures are wrapped in *APIError. Nothing is retried.
//
//	client, err := inspire.New(inspire.Config{})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	res, err := client.SearchLiterature(ctx, "t higgs", inspire.SearchOptions{Size: 5})
//	var nf *inspire.NotFoundError
//	if errors.As(err, &nf) {
//	    ...
//	}
package inspire
