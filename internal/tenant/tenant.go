// Package tenant carries the resolved tenant through request context.
//
// Every storage query in this service is scoped by tenant id. There is no
// default tenant: requests without a resolvable tenant are rejected before
// any query runs.
package tenant

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrTenantNotFound is returned when no tenant matches the presented key.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrTenantInactive is returned when a tenant exists but is suspended or cancelled.
	ErrTenantInactive = errors.New("tenant is not active")

	// ErrNoTenant is returned when tenant context is required but not present.
	ErrNoTenant = errors.New("no tenant in context")
)

// Tenant is a resort operator account.
type Tenant struct {
	ID        string    `json:"id" db:"id"`
	Key       string    `json:"key" db:"key"` // opaque key presented in X-Tenant-Key
	Name      string    `json:"name" db:"name"`
	Status    string    `json:"status" db:"status"` // active, suspended, cancelled
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsActive reports whether the tenant may issue requests.
func (t *Tenant) IsActive() bool {
	return t != nil && t.Status == "active"
}

type contextKey struct{}

// NewContext returns a context with the tenant attached.
func NewContext(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext extracts the tenant from the context, or nil.
func FromContext(ctx context.Context) *Tenant {
	t, _ := ctx.Value(contextKey{}).(*Tenant)
	return t
}

// IDFromContext returns the tenant id from context.
// Returns ErrNoTenant if the middleware did not run.
func IDFromContext(ctx context.Context) (string, error) {
	t := FromContext(ctx)
	if t == nil {
		return "", ErrNoTenant
	}
	return t.ID, nil
}
