// Package handle renders errors, notices and panics as HTML error pages and
// structured log lines.
//
// A Handler runs in one of two modes. In debug mode pages show the request
// method and URL, the error type and message, the failing file and line and
// a syntax-highlighted window of the source around it. In production mode
// the page only says "<code> <status text>." and details go to the log.
//
//	h := handle.New(
//	    handle.WithDebug(cfg.Debug),
//	    handle.WithLogger(log),
//	    handle.WithTemplateFile(cfg.ErrorTemplate),
//	)
//
//	h.Halt(w, r, "Request controller Foo is not found", http.StatusNotFound)
//	h.Exception(w, r, err)                 // handler error, 500 unless err has a status
//	h.Fatal(w, r, recovered, stack)        // recovered panic
//	h.Error(ctx, w, handle.NewReport(handle.KindNotice, err)) // logged, request continues
//
// Errors created with Errorf or wrapped with Wrap remember where they were
// created so pages can show the right source:
//
//	if err != nil {
//	    return handle.Wrap(err)
//	}
//
// Non-fatal reports are appended to the request Trace stored with
// WithTrace and listed on the page when the request later fails. In debug
// mode every report is also copied into the Kotori-Debug response header.
package handle
