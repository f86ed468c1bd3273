package internal

// Handler declares routes on a router.
//
// Example:
//
//	type PagesHandler struct{}
//
//	func (h *PagesHandler) Routes(r kotori.Router) {
//	    r.GET("/about", h.about)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers and controller actions.
// Returning a non-nil error hands the error to the error pipeline.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
//
// Example:
//
//	func Auth(next kotori.HandlerFunc) kotori.HandlerFunc {
//	    return func(c kotori.Context) error {
//	        if !c.IsAuthenticated() {
//	            return c.Redirect(302, "/login")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers. It replaces the
// built-in error page when set with WithErrorHandler.
type ErrorHandler func(Context, error) error

// Actions maps action names to their handlers.
type Actions map[string]HandlerFunc

// Controller groups the actions reachable through the route table.
//
// Example:
//
//	type News struct{ repo *Repo }
//
//	func (n *News) Actions() kotori.Actions {
//	    return kotori.Actions{
//	        "index": n.index,
//	        "show":  n.show,
//	    }
//	}
type Controller interface {
	Actions() Actions
}

// ControllerFunc adapts a single function to a Controller with one
// "index" action.
type ControllerFunc HandlerFunc

func (f ControllerFunc) Actions() Actions {
	return Actions{"index": HandlerFunc(f)}
}

// chain wraps h with mw so that mw[0] runs first.
func chain(h HandlerFunc, mw ...Middleware) HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}
