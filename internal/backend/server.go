// internal/backend/server.go
package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"go.uber.org/zap"
)

const (
	readHeaderTimeout = 10 * time.Second

	// StubModeJSON answers every query with an echo result.
	StubModeJSON = "json"
	// StubModeError answers every query with HTTP 500.
	StubModeError = "error"
	// StubModeGarbage answers every query with HTTP 200 and a non-JSON body.
	StubModeGarbage = "garbage"
)

// NewStubHandler returns the router of the stub query backend. The answer mode
// is read from STUB_MODE on every request and defaults to json.
func NewStubHandler(logger *zap.SugaredLogger) http.Handler {
	r := mux.NewRouter().UseEncodedPath()
	r.HandleFunc("/query/{query}", func(w http.ResponseWriter, r *http.Request) {
		q, err := url.PathUnescape(mux.Vars(r)["query"])
		if err != nil {
			http.Error(w, "invalid query segment", http.StatusBadRequest)
			return
		}

		switch os.Getenv("STUB_MODE") {
		case StubModeError:
			http.Error(w, "stub backend failure", http.StatusInternalServerError)
			return
		case StubModeGarbage:
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("this is not json"))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		resp := QueryResult{Query: q, Response: fmt.Sprintf("Echo: %s", q)}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Errorw("write JSON error", "error", err)
		}
	}).Methods(http.MethodGet)

	accessLog := zap.NewStdLog(logger.Desugar()).Writer()

	return alice.New(
		recovery(logger),
		gorillaHandlers.CORS(
			gorillaHandlers.AllowedOrigins([]string{"*"}),
			gorillaHandlers.AllowedMethods([]string{http.MethodGet}),
		),
		func(h http.Handler) http.Handler { return gorillaHandlers.LoggingHandler(accessLog, h) },
	).Then(r)
}

func recovery(logger *zap.SugaredLogger) alice.Constructor {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err, ok := rec.(error)
					if ok && errors.Is(err, http.ErrAbortHandler) {
						panic(err)
					}

					logger.Errorf("Recovered from an error: %s", rec)
					http.Error(w, "An internal error has occurred", http.StatusInternalServerError)
				}
			}()
			h.ServeHTTP(w, r)
		})
	}
}

// StartStubServer starts the stub query backend on addr (e.g. ":0").
// It returns the server instance and the actual listening address.
func StartStubServer(addr string, logger *zap.SugaredLogger) (*http.Server, string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", fmt.Errorf("stub backend listen: %w", err)
	}
	server := &http.Server{
		Handler:           NewStubHandler(logger),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		logger.Infow("stub backend listening", "address", ln.Addr().String(), "mode", os.Getenv("STUB_MODE"))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("stub backend stopped", "error", err)
		}
	}()

	return server, ln.Addr().String(), nil
}
