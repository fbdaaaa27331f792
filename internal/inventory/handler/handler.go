// Package handler exposes the inventory HTTP API.
package handler

import (
	"net/http"
	"strconv"

	"github.com/lendstock/lendstock-backend/pkg/actor"
	"github.com/lendstock/lendstock-backend/pkg/errors"
	"github.com/lendstock/lendstock-backend/pkg/httputil"
)

// requireActor resolves the acting processor from the request context.
// Mutating endpoints must not proceed without one.
func requireActor(w http.ResponseWriter, r *http.Request) (*actor.Actor, bool) {
	a := actor.FromContext(r.Context())
	if a == nil {
		httputil.Error(w, errors.New("ACTOR_REQUIRED", "acting user identity is required for this operation", http.StatusUnauthorized))
		return nil, false
	}
	return a, true
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}
