package middlewares_test

import (
	"net/http"

	"github.com/dmitrymomot/kotori/internal"
)

func newTestContext(w http.ResponseWriter, r *http.Request) internal.Context {
	return internal.New().NewContext(w, r)
}
