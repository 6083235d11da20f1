// Package http exposes a toolkit over a small JSON API: document ingest,
// similarity search, RAG queries, cache operations, and session
// transcripts.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/w-h-a/vecstore"
)

type Server struct {
	options Options
	toolkit *vecstore.Toolkit
	server  *http.Server
}

func (s *Server) routes() http.Handler {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/documents", s.handleAddDocuments).Methods(http.MethodPost)
	api.HandleFunc("/search", s.handleSearch).Methods(http.MethodPost)
	api.HandleFunc("/query", s.handleQuery).Methods(http.MethodPost)

	api.HandleFunc("/cache", s.handleCacheGet).Methods(http.MethodGet)
	api.HandleFunc("/cache", s.handleCacheSet).Methods(http.MethodPost)
	api.HandleFunc("/cache", s.handleCacheInvalidate).Methods(http.MethodDelete)

	api.HandleFunc("/sessions", s.handleCreateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions", s.handleListSessions).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/messages", s.handleAddMessage).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/history", s.handleHistory).Methods(http.MethodGet)

	var handler http.Handler = router
	for i := len(s.options.Middleware) - 1; i >= 0; i-- {
		handler = s.options.Middleware[i](handler)
	}

	return handler
}

func (s *Server) Run(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.options.Address,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.InfoContext(ctx, "http server listening", "address", s.options.Address)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

func NewServer(toolkit *vecstore.Toolkit, opts ...Option) *Server {
	options := NewOptions(opts...)

	return &Server{
		options: options,
		toolkit: toolkit,
	}
}
