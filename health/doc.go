// Package health reports whether the MCP server can do its job.
//
// A Checker reports one component as healthy, degraded or unhealthy. The
// server registers three: UpstreamChecker probes the InspireHEP API,
// CacheChecker watches the response cache and MemoryChecker watches the
// heap. An Aggregator runs them concurrently under a shared timeout, and
// RegisterHandlers exposes the results for probes:
//
//	agg := health.NewAggregator()
//	agg.Register(health.NewUpstreamChecker(health.UpstreamCheckerConfig{URL: baseURL}))
//	agg.Register(health.NewCacheChecker(client, 0.95))
//	agg.Register(health.NewMemoryChecker(health.MemoryCheckerConfig{}))
//	health.RegisterHandlers(mux, agg, health.HandlerOptions{Service: "inspirehep-mcp"})
//
// /healthz always answers 200, /readyz and /health answer 503 only when a
// check is unhealthy.
package health
