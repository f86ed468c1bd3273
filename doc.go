// Package kotori is a small MVC web framework. A route table maps request
// paths to "Controller/action/args" targets, a catch-all dispatcher runs
// the matching controller action, and a central pipeline renders every
// error, notice and panic.
//
// # Quick Start
//
//	table, err := route.LoadFile("config/routes.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	app := kotori.New(
//	    kotori.WithRoutes(table),
//	    kotori.WithController("Hello", controllers.NewHello(repo)),
//	    kotori.WithDebug(cfg.App.Debug),
//	)
//
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Routes
//
// A route file lists regular expressions and their targets, optionally per
// verb. The "cli" verb is only reachable through App.Call:
//
//	default_controller: Index
//	default_action: index
//	routes:
//	  /: Hello/index
//	  news/([0-9]+): Hello/showNews/$1
//	  add:
//	    get: Hello/addNews
//	    post: Hello/insertNews
//	  cron/(.*):
//	    cli: Cron/run/$1
//
// Paths no rule matches fall back to "controller/action/args".
//
// # Controllers
//
// A controller returns its actions by name:
//
//	type Hello struct{ repo *Repo }
//
//	func (h *Hello) Actions() kotori.Actions {
//	    return kotori.Actions{
//	        "index":    h.index,
//	        "showNews": h.showNews,
//	    }
//	}
//
//	func (h *Hello) showNews(c kotori.Context) error {
//	    id := kotori.Arg[int64](c, 0)
//	    news, err := h.repo.Find(c, id)
//	    if err != nil {
//	        return c.Error(http.StatusNotFound, "news not found", kotori.WithCause(err))
//	    }
//	    return c.JSON(http.StatusOK, news)
//	}
//
// # Errors
//
// Errors returned by actions, panics and c.Halt are rendered by one
// pipeline. In debug mode the page shows the message, the source around
// the failing line and the notices recorded with c.Notice, which are also
// sent in the Kotori-Debug header. In production only the status line is
// shown and the details go to the log.
//
// # Handlers
//
// Code-declared handlers are still supported and take precedence over the
// route table:
//
//	func (h *API) Routes(r kotori.Router) {
//	    r.GET("/api/ping", h.ping)
//	}
//
// # Shutdown
//
// The server handles SIGINT/SIGTERM for graceful shutdown. Cache and
// database handles passed with WithCache and WithDB are closed after the
// server stops.
package kotori
