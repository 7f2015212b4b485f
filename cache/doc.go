// Package cache provides the bounded TTL cache used by the InspireHEP client.
//
// Entries expire lazily (checked on read, never swept) and, when the cache is
// full, the oldest-inserted entry is evicted regardless of how recently it was
// read or how much lifetime it has left. Overwriting a key updates it in place
// and does not move it in the eviction order.
//
// Cache keys for upstream requests are derived by RequestKeyer from the
// request method, path and a canonical encoding of the query parameters.
package cache
