// Package server exposes the dispatcher over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/book-expert/ai-router/internal/api"
	"github.com/book-expert/ai-router/internal/metrics"
	"github.com/book-expert/logger"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// HeaderRequestID carries the request id in both directions.
	HeaderRequestID = "X-Request-ID"
	// MaxBodyBytes matches the API Gateway payload limit.
	MaxBodyBytes = 10 << 20

	metricsPath       = "/metrics"
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// ErrDispatcherNil is returned when no dispatcher is supplied.
var ErrDispatcherNil = errors.New("dispatcher cannot be nil")

// Dispatcher handles transport-neutral requests.
type Dispatcher interface {
	Dispatch(ctx context.Context, req api.Request) api.Response
}

// NewHandler routes /metrics to the registry and every other path, with any
// method, to the dispatcher.
func NewHandler(dispatcher Dispatcher, registry *prometheus.Registry, log *logger.Logger) (http.Handler, error) {
	if dispatcher == nil {
		return nil, ErrDispatcherNil
	}

	mux := http.NewServeMux()
	mux.Handle(metricsPath, metrics.Handler(registry))
	mux.Handle("/", dispatchHandler(dispatcher, log))

	return RequestID(mux), nil
}

// RequestID propagates X-Request-ID or generates one, echoes it on the
// response and stores it in the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		requestID := request.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		writer.Header().Set(HeaderRequestID, requestID)

		ctx := api.WithRequestID(request.Context(), requestID)
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

func dispatchHandler(dispatcher Dispatcher, log *logger.Logger) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(writer, request.Body, MaxBodyBytes))
		if err != nil {
			log.Error("Request %s: failed to read body: %v", api.RequestIDFrom(request.Context()), err)
			writeResponse(writer, api.InternalError())

			return
		}

		response := dispatcher.Dispatch(request.Context(), api.Request{
			Path:   request.URL.Path,
			Method: request.Method,
			Body:   body,
			Query:  flattenQuery(request),
		})

		writeResponse(writer, response)
	})
}

// flattenQuery keeps the first value of each query parameter.
func flattenQuery(request *http.Request) map[string]string {
	values := request.URL.Query()
	if len(values) == 0 {
		return nil
	}

	query := make(map[string]string, len(values))
	for key := range values {
		query[key] = values.Get(key)
	}

	return query
}

func writeResponse(writer http.ResponseWriter, response api.Response) {
	for name, value := range response.Headers {
		writer.Header().Set(name, value)
	}

	writer.WriteHeader(response.StatusCode)
	_, _ = writer.Write(response.Body)
}

// Server is the HTTP listener.
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

// New creates a server listening on addr.
func New(addr string, handler http.Handler, log *logger.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		log: log,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		s.log.Info("HTTP server listening on %s", s.httpServer.Addr)

		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}

		close(errChan)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}

		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}

	s.log.Info("HTTP server stopped")

	return nil
}
