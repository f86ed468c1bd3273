// Package internal provides the core types and implementation for the Kotori framework.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/kotori" instead, which re-exports the public API.
//
// # Core Types
//
//   - App: Orchestrates HTTP routing, controller dispatch, the error pipeline and graceful shutdown
//   - Context: Provides request/response access, sessions, cookies and error reporting
//   - Router: Interface handlers use to declare routes in code
//   - Controller: Groups the actions reachable through the route table
//   - HandlerFunc: Signature for route handlers and controller actions
//   - Middleware: Wraps handlers to add cross-cutting concerns
//   - ErrorHandler: Replaces the built-in error page
//
// # Dispatch
//
// Requests that no code route claims are matched against the route table
// given with WithRoutes. The target names a controller registered with
// WithController and one of its actions:
//
//	app := internal.New(
//	    internal.WithRoutes(table),
//	    internal.WithController("News", news),
//	)
//
// App.Call runs the same dispatch for command-line invocations with the
// "cli" verb and writes the output to an io.Writer.
//
// # Errors
//
// A handler error is rendered by the error page with the status from
// HTTPError, or 500. Panics are recovered and rendered the same way. In
// debug mode the page shows the message, the failing source line with
// highlighted context and the problems recorded with Context.Notice during
// the request. In production only the status line is shown. Every problem
// is logged.
//
// # Context as context.Context
//
// Context embeds context.Context, so it can be passed directly to any
// function that expects a standard library context:
//
//	func (n *News) show(c kotori.Context) error {
//	    conn, err := c.DB()
//	    if err != nil {
//	        return err
//	    }
//	    row := conn.QueryRow(c, "SELECT title FROM news WHERE id = ?", c.Arg(0))
//	    ...
//	}
//
// # Sessions
//
// Sessions are loaded lazily on first access and persisted right before
// the response is written. AuthenticateSession rotates the token.
//
// # Multi-Domain Routing
//
// Run composes several Apps behind one listener by host pattern:
//
//	internal.Run(
//	    internal.Domain("api.example.com", apiApp),
//	    internal.Domain("*.example.com", tenantApp),
//	    internal.Fallback(landingApp),
//	)
package internal
