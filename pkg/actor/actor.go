// Package actor identifies the person performing an inventory operation.
//
// Every state change in the ledger records a processor: the staff member
// who scanned, checked out, or removed an item. The processor is resolved
// once at the HTTP edge and passed into the service layer as an explicit
// argument; services never read ambient identity themselves.
package actor

import (
	"context"
	"fmt"
	"net/http"
)

// Actor represents the staff member performing an action.
type Actor struct {
	// ID is the unique identifier of the actor (user ID)
	ID string `json:"id"`

	// FirstName is the actor's first name
	FirstName string `json:"first_name"`

	// LastName is the actor's last name
	LastName string `json:"last_name"`

	// Email is the actor's email address
	Email string `json:"email"`
}

// FullName returns the actor's full name (first + last)
func (a *Actor) FullName() string {
	if a == nil {
		return ""
	}
	return a.FirstName + " " + a.LastName
}

// String returns a string representation of the actor for logging
func (a *Actor) String() string {
	if a == nil {
		return "system"
	}
	return fmt.Sprintf("%s (%s)", a.FullName(), a.Email)
}

// contextKey is the type for context keys to avoid collisions
type contextKey string

const actorContextKey contextKey = "actor"

// FromContext retrieves the Actor from the context.
// Returns nil if no actor is present (e.g., system operations).
func FromContext(ctx context.Context) *Actor {
	if ctx == nil {
		return nil
	}
	a, ok := ctx.Value(actorContextKey).(*Actor)
	if !ok {
		return nil
	}
	return a
}

// WithActor returns a new context with the Actor attached.
func WithActor(ctx context.Context, a *Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey, a)
}

// SystemActor returns an Actor representing the system itself.
// Use this for queue cleanup jobs and other system-initiated operations.
func SystemActor() *Actor {
	return &Actor{
		ID:        "00000000-0000-0000-0000-000000000000",
		FirstName: "System",
		LastName:  "",
		Email:     "system@lendstock.local",
	}
}

// IsSystem returns true if the actor represents the system.
func (a *Actor) IsSystem() bool {
	if a == nil {
		return true
	}
	return a.ID == "00000000-0000-0000-0000-000000000000"
}

// Middleware resolves the acting processor from request headers set by the
// front-end session layer and attaches it to the request context. Requests
// without an actor are allowed through; mutating handlers reject them.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Actor-ID")
		if id == "" {
			next.ServeHTTP(w, r)
			return
		}

		a := &Actor{
			ID:        id,
			FirstName: r.Header.Get("X-Actor-First-Name"),
			LastName:  r.Header.Get("X-Actor-Last-Name"),
			Email:     r.Header.Get("X-Actor-Email"),
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), a)))
	})
}
