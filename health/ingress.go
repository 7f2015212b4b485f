package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/inspirehep-mcp/resilience"
)

// IngressChecker reports how busy the HTTP ingress bulkhead is.
type IngressChecker struct {
	bulkhead *resilience.Bulkhead
}

// NewIngressChecker creates an IngressChecker for b.
func NewIngressChecker(b *resilience.Bulkhead) *IngressChecker {
	return &IngressChecker{bulkhead: b}
}

// Name returns "ingress".
func (c *IngressChecker) Name() string {
	return "ingress"
}

// Check reports degraded while every slot is taken.
func (c *IngressChecker) Check(_ context.Context) Result {
	m := c.bulkhead.Metrics()
	details := map[string]any{
		"active":         m.Active,
		"max_active":     m.MaxActive,
		"max_concurrent": m.MaxConcurrent,
		"rejected":       m.Rejected,
	}
	if m.Available <= 0 {
		return Degraded(fmt.Sprintf("ingress saturated: %d/%d in flight", m.Active, m.MaxConcurrent)).WithDetails(details)
	}
	return Healthy(fmt.Sprintf("%d/%d in flight", m.Active, m.MaxConcurrent)).WithDetails(details)
}
