package authflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/florianilch/tokenward/internal/observability/middleware"
)

const successHTML = `<!DOCTYPE html>
<html>
<head><title>Authorization complete</title></head>
<body>
<h1>Authorization complete</h1>
<p>You can close this window and return to the application.</p>
</body>
</html>`

const errorHTML = `<!DOCTYPE html>
<html>
<head><title>Authorization failed</title></head>
<body>
<h1>Authorization failed</h1>
<p>The authorization was not completed. You can close this window and try again.</p>
</body>
</html>`

// callbackResult is the single terminal event of one flow invocation:
// a captured code or the reason none was captured.
type callbackResult struct {
	code string
	err  error
}

// callbackServer is the one-shot redirect receiver. It accepts exactly one
// authoritative redirect; later requests still get a response page but no
// longer influence the outcome.
type callbackServer struct {
	addr  string
	path  string
	state string

	server *http.Server
	group  *errgroup.Group

	// results delivers the first terminal event. Buffered so the HTTP
	// handler never blocks on a caller that has already moved on.
	results chan callbackResult
}

// newCallbackServer prepares a receiver bound to the host:port and path of
// the redirect URI. An empty path serves the root.
func newCallbackServer(redirect *url.URL, state string) *callbackServer {
	path := redirect.Path
	if path == "" {
		path = "/"
	}

	return &callbackServer{
		addr:    redirect.Host,
		path:    path,
		state:   state,
		results: make(chan callbackResult, 1),
	}
}

// start binds the listener and begins serving in the background.
// Bind failures (e.g. port in use) are returned immediately.
func (s *callbackServer) start() error {
	// Create listener synchronously to catch port-in-use errors immediately
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("GET "+s.path, applyMiddlewares(http.HandlerFunc(s.handleRedirect),
		middleware.Logging(slog.Default()),
		recovery,
	))

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.group = new(errgroup.Group)
	s.group.Go(func() error {
		err := s.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			// A dead listener can never deliver a redirect; settle the wait.
			s.settle(callbackResult{err: fmt.Errorf("callback listener failed: %w", err)})
			return err
		}
		return nil
	})

	return nil
}

// shutdown tears the listener down. Safe to call on every exit path.
func (s *callbackServer) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		// Graceful shutdown failed - force close
		_ = s.server.Close()
	}
	_ = s.group.Wait()
}

// settle records the terminal event. The first settle wins; the channel is
// buffered with capacity one and later events are dropped.
func (s *callbackServer) settle(res callbackResult) {
	select {
	case s.results <- res:
	default:
	}
}

// handleRedirect processes one provider redirect. A `code` query parameter
// is a success, an `error` parameter a failure; anything else is ignored.
func (s *callbackServer) handleRedirect(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if errCode := query.Get("error"); errCode != "" {
		writeHTML(w, errorHTML)
		s.settle(callbackResult{err: fmt.Errorf("provider reported authorization error: %s", errCode)})
		return
	}

	code := query.Get("code")
	if code == "" {
		// Not a redirect we understand; leave the wait unsettled.
		http.NotFound(w, r)
		return
	}

	if query.Get("state") != s.state {
		writeHTML(w, errorHTML)
		s.settle(callbackResult{err: fmt.Errorf("state mismatch in authorization callback")})
		return
	}

	writeHTML(w, successHTML)
	s.settle(callbackResult{code: code})
}

func writeHTML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// recovery recovers from panics in HTTP handlers and returns HTTP 500 to the client.
func recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recover() != nil {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				// Logging of panics is handled in Logging middleware
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// applyMiddlewares applies middlewares to a handler in the order they appear.
// The first middleware in the slice is the outermost (executes first).
func applyMiddlewares(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
