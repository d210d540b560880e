// Package gateway sends single prompts to backend models. It carries no
// orchestration logic: one request, one response or one typed failure.
package gateway

import (
	"context"
	"errors"
	"fmt"
)

//go:generate go tool mockgen -source=gateway.go -destination=mock_gateway.go -package=gateway

// FailureKind classifies an ordinary per-call failure.
type FailureKind string

const (
	FailureTimeout   FailureKind = "timeout"
	FailureHTTP      FailureKind = "http_error"
	FailureMalformed FailureKind = "malformed_response"

	// FailureQuota is a provider-side "credits exhausted" condition. It is
	// kept distinct from http_error so callers can give actionable guidance
	// instead of a blanket failure message.
	FailureQuota FailureKind = "quota_exhausted"
)

// CallError is the typed failure returned for any ordinary gateway
// failure. Callers branch on Kind; the gateway never panics or wraps these
// in ad-hoc error strings.
type CallError struct {
	Kind   FailureKind
	Model  string
	Status int
	Detail string
}

func (e *CallError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gateway: %s querying %s (HTTP %d): %s", e.Kind, e.Model, e.Status, e.Detail)
	}
	return fmt.Sprintf("gateway: %s querying %s: %s", e.Kind, e.Model, e.Detail)
}

// IsQuota reports whether err is a quota-exhausted gateway failure.
func IsQuota(err error) bool {
	var ce *CallError
	return errors.As(err, &ce) && ce.Kind == FailureQuota
}

// Reply is a successful model response.
type Reply struct {
	Content    string
	DurationMs int64
}

// Gateway sends one prompt to one backend model. Implementations must be
// safe for concurrent use; calls are independent and share nothing but a
// connection pool. Every call is bounded by the implementation's fixed
// per-call timeout and is never retried.
type Gateway interface {
	Query(ctx context.Context, model, prompt string) (*Reply, error)
}
