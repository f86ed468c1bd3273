package internal

import (
	"net/http"

	"github.com/dmitrymomot/kotori/pkg/route"
)

// NewTestContext builds a request context for app, or a bare App when nil.
func NewTestContext(w http.ResponseWriter, r *http.Request, app *App, target route.Target) Context {
	if app == nil {
		app = New()
	}
	c := newContext(w, r, app)
	c.state.target = target
	return c
}
