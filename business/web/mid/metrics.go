package mid

import (
	"context"
	"expvar"
	"net/http"
	"runtime"

	"github.com/MXmingxuan/blockchain-lab/foundation/web"
)

// Counters published for the debug endpoint.
var (
	goroutines = expvar.NewInt("goroutines")
	requests   = expvar.NewInt("requests")
	failures   = expvar.NewInt("errors")
)

// Metrics updates program counters.
func Metrics() web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			err := handler(ctx, w, r)

			// Increment the request counter and capture the number of
			// goroutines on every hundredth request.
			requests.Add(1)
			if requests.Value()%100 == 0 {
				goroutines.Set(int64(runtime.NumGoroutine()))
			}

			// Increment the errors counter if an error occurred.
			if err != nil {
				failures.Add(1)
			}

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return m
}
