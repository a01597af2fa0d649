// Package httpapi serves the public HTTP surface: a health probe and a
// read-only JSON feed of events.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/cal/internal/common"
	"github.com/dmitrijs2005/cal/internal/logging"
	"github.com/dmitrijs2005/cal/internal/rowstore"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// EventView is the public JSON form of an event row.
type EventView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	PosterURL   string `json:"poster_url,omitempty"`
	RSVPLink    string `json:"rsvp_link,omitempty"`
	Location    string `json:"location"`
	Category    string `json:"category"`
	Color       string `json:"color"`
}

// NewRouter builds the chi router over store.
func NewRouter(store rowstore.Store, logger logging.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			logger.Warn(req.Context(), "write error", "error", err)
		}
	})

	r.Get("/api/events", func(w http.ResponseWriter, req *http.Request) {
		q := rowstore.Query{OrderBy: "date"}
		if from := req.URL.Query().Get("from"); from != "" {
			q.Where = append(q.Where, rowstore.Gte("date", from))
		}

		rows, err := store.Select(req.Context(), common.TableEvents, q)
		if err != nil {
			if errors.Is(err, rowstore.ErrTableMissing) {
				rows = nil
			} else {
				logger.Error(req.Context(), "list events failed", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
		}

		out := make([]EventView, 0, len(rows))
		for _, row := range rows {
			out = append(out, EventView{
				ID:          row.String("id"),
				Title:       row.String("title"),
				Description: row.String("description"),
				Date:        row.String("date"),
				StartTime:   row.String("start_time"),
				EndTime:     row.String("end_time"),
				PosterURL:   row.String("poster_url"),
				RSVPLink:    row.String("rsvp_link"),
				Location:    row.String("location"),
				Category:    row.String("category"),
				Color:       row.String("color"),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(out); err != nil {
			logger.Warn(req.Context(), "write error", "error", err)
		}
	})

	return r
}

// Serve runs an HTTP server for handler on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler, logger logging.Logger) error {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info(ctx, "Starting HTTP server", "address", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
