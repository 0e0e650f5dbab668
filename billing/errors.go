package billing

import "fmt"

// ValidationError reports bad payment input. It is fatal for the attempt and
// never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid payment %s: %s", e.Field, e.Reason)
}

// IneligibleSubscriptionError reports a renewal precondition failure. The
// subscription is skipped for the rest of the run.
type IneligibleSubscriptionError struct {
	SubscriptionID uint
	Reason         string
}

func (e *IneligibleSubscriptionError) Error() string {
	return fmt.Sprintf("subscription %d is not eligible for renewal: %s", e.SubscriptionID, e.Reason)
}

// GatewayError reports a failed payment attempt at a gateway.
type GatewayError struct {
	Gateway Gateway
	Reason  string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s gateway: %s: %v", e.Gateway, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s gateway: %s", e.Gateway, e.Reason)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// NotFoundError reports a missing entity referenced by id.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Entity, e.ID)
}
