// Package resilience provides pacing and admission control for upstream
// calls and inbound requests.
//
// # Patterns
//
//   - Pacer: enforces a minimum interval between the starts of consecutive
//     operations across all goroutines sharing it. No burst credit is
//     accumulated while idle. Used to stay under the upstream API's
//     request-rate limit.
//
//   - Rate Limiter: token bucket (golang.org/x/time/rate) for inbound
//     traffic, permitting short bursts.
//
//   - Bulkhead: Limits concurrent operations to prevent resource exhaustion.
//
//   - Timeout: Ensures operations complete within a time limit.
//
// Nothing in this package retries. Callers decide what to do with a failure.
//
// # Usage
//
//	pacer := resilience.NewPacer(resilience.PacerConfig{Rate: 1.5})
//	if err := pacer.Wait(ctx); err != nil {
//	    return err
//	}
//
//	// Compose patterns for an HTTP ingress
//	executor := resilience.NewExecutor(
//	    resilience.WithRateLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{
//	        Rate:  20,
//	        Burst: 40,
//	    })),
//	    resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{
//	        MaxConcurrent: 8,
//	    })),
//	    resilience.WithTimeout(60*time.Second),
//	)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return handle(ctx)
//	})
package resilience
