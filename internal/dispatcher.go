package internal

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrymomot/kotori/pkg/route"
)

// dispatch resolves the request through the route table and runs the
// matched controller action.
func (a *App) dispatch(c Context) error {
	rc, ok := c.(*requestContext)
	if !ok {
		return ErrInternal("Dispatcher requires a request context")
	}

	verb := strings.ToLower(rc.request.Method)
	if rc.state.cli {
		verb = route.VerbCLI
	}

	target, err := a.routes.Match(verb, a.routePath(rc))
	if err != nil {
		return matchError(err)
	}
	rc.state.target = target

	h, err := a.resolve(target)
	if err != nil {
		return err
	}
	return h(c)
}

// routePath returns the path the route table is matched against.
func (a *App) routePath(c *requestContext) string {
	if a.urlMode == URLModeQueryString && !c.state.cli {
		return c.request.URL.Query().Get(a.routeParam)
	}
	return c.request.URL.Path
}

// resolve returns the action named by target.
func (a *App) resolve(target route.Target) (HandlerFunc, error) {
	ctrl, ok := a.lookupController(target.Controller)
	if !ok {
		return nil, errControllerNotFound(target.Controller)
	}

	actions := ctrl.Actions()
	if h, ok := actions[target.Action]; ok && h != nil {
		return h, nil
	}
	for name, h := range actions {
		if h != nil && strings.EqualFold(name, target.Action) {
			return h, nil
		}
	}
	return nil, errActionNotFound(target.Action)
}

func matchError(err error) error {
	switch {
	case errors.Is(err, route.ErrMethodNotAllowed):
		return NewHTTPError(http.StatusMethodNotAllowed, "Method not allowed", WithError(err))
	case errors.Is(err, route.ErrNotFound):
		return NewHTTPError(http.StatusNotFound, "Page not found", WithError(err))
	default:
		return NewHTTPError(http.StatusInternalServerError, "Routing failed", WithError(err))
	}
}
