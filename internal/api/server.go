package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/AaronLay10/WishEngine/internal/events"
	"github.com/AaronLay10/WishEngine/internal/fortune"
	"github.com/AaronLay10/WishEngine/internal/i18n"
	"github.com/AaronLay10/WishEngine/internal/storage"
	"github.com/AaronLay10/WishEngine/internal/version"
)

// Draw modes reported on draw events.
const (
	ModeLocal  = "local"
	ModeRemote = "remote"
)

const shutdownTimeout = 5 * time.Second

type serverState struct {
	mu          sync.RWMutex
	serviceName string
	drawer      fortune.Drawer
	mode        string
	catalog     *fortune.Catalog
	journal     storage.Journal
}

var state = &serverState{serviceName: "wish-engine"}

// SetServiceName sets the name reported by /health and alerts.
func SetServiceName(name string) {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.serviceName = name
}

// ServiceName returns the configured service name.
func ServiceName() string {
	state.mu.RLock()
	defer state.mu.RUnlock()
	return state.serviceName
}

// SetDrawer installs the Drawer behind /api/random. mode is ModeLocal or
// ModeRemote and is only reported on events.
func SetDrawer(d fortune.Drawer, mode string) {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.drawer = d
	state.mode = mode
}

// SetCatalog installs the catalog served by /api/catalog.
func SetCatalog(c *fortune.Catalog) {
	state.mu.Lock()
	defer state.mu.Unlock()
	if c == nil {
		state.catalog = nil
		return
	}
	state.catalog = c.Clone()
}

// SetJournal installs the journal behind /events/history. nil disables it.
func SetJournal(j storage.Journal) {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.journal = j
}

func currentDrawer() (fortune.Drawer, string) {
	state.mu.RLock()
	defer state.mu.RUnlock()
	return state.drawer, state.mode
}

func currentCatalog() *fortune.Catalog {
	state.mu.RLock()
	defer state.mu.RUnlock()
	return state.catalog
}

func currentJournal() storage.Journal {
	state.mu.RLock()
	defer state.mu.RUnlock()
	return state.journal
}

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Hostname  string `json:"hostname"`
	Timestamp string `json:"ts"`
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	host, _ := os.Hostname()
	resp := HealthResponse{
		Status:    "ok",
		Service:   ServiceName(),
		Version:   version.Version,
		Hostname:  host,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
	writeJSON(w, http.StatusOK, resp)
}

func eventsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeMessage(w, http.StatusMethodNotAllowed, i18n.ErrorText(i18n.ResolveTag(r), "method_not_allowed"))
		return
	}
	writeJSON(w, http.StatusOK, events.Snapshot())
}

func eventsClearHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeMessage(w, http.StatusMethodNotAllowed, i18n.ErrorText(i18n.ResolveTag(r), "method_not_allowed"))
		return
	}
	events.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// eventsHistoryHandler serves the journal, newest first. ?limit= is clamped
// to 1..10000 and defaults to 200.
func eventsHistoryHandler(w http.ResponseWriter, r *http.Request) {
	j := currentJournal()
	if j == nil {
		writeMessage(w, http.StatusServiceUnavailable, "event journal not configured")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, i18n.ErrorText(i18n.ResolveTag(r), "bad_request"))
			return
		}
		limit = n
	}

	rows, err := j.Query(storage.ClampLimit(limit))
	if err != nil {
		log.Error().Err(err).Str("journal", j.Name()).Msg("event history query failed")
		writeMessage(w, http.StatusInternalServerError, i18n.ErrorText(i18n.ResolveTag(r), "internal"))
		return
	}
	if rows == nil {
		rows = []events.Event{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// CatalogResponse is what the wish form renders from.
type CatalogResponse struct {
	Machines    []string          `json:"machines"`
	Scenes      []fortune.Scene   `json:"scenes"`
	MissBuckets []string          `json:"miss_buckets"`
	Lang        string            `json:"lang"`
	Languages   []string          `json:"languages"`
	Strings     map[string]string `json:"strings"`
}

func catalogHandler(w http.ResponseWriter, r *http.Request) {
	tag := i18n.ResolveTag(r)
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeMessage(w, http.StatusMethodNotAllowed, i18n.ErrorText(tag, "method_not_allowed"))
		return
	}

	cat := currentCatalog()
	if cat == nil {
		writeMessage(w, http.StatusServiceUnavailable, i18n.ErrorText(tag, fortune.KindConfiguration))
		return
	}

	var langs []string
	for _, t := range i18n.Supported() {
		langs = append(langs, t.String())
	}

	writeJSON(w, http.StatusOK, CatalogResponse{
		Machines:    cat.Machines,
		Scenes:      cat.Scenes,
		MissBuckets: cat.MissBuckets,
		Lang:        tag.String(),
		Languages:   langs,
		Strings:     i18n.Strings(tag),
	})
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Handler returns the evaluator's routes.
func Handler() http.Handler {
	RegisterMetrics()

	mux := http.NewServeMux()
	mux.HandleFunc("/", uiHandler)
	mux.HandleFunc("/api/random", randomHandler)
	mux.HandleFunc("/api/catalog", catalogHandler)
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/events", RequireAnyRole(eventsHandler))
	mux.HandleFunc("/events/history", RequireAnyRole(eventsHistoryHandler))
	mux.HandleFunc("/events/clear", RequireAdmin(eventsClearHandler))
	mux.HandleFunc("/ws/events", RequireAnyRole(wsEventsHandler))
	return mux
}

// Run serves on port until ctx is cancelled, then shuts down gracefully.
// TLS is used when InitTLS found a certificate pair.
func Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	tlsCfg, err := LoadTLSConfig()
	if err != nil {
		return err
	}
	srv.TLSConfig = tlsCfg

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Bool("tls", tlsCfg != nil).Msg("API listening")
		if tlsCfg != nil {
			errCh <- srv.ListenAndServeTLS("", "")
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Websocket connections are hijacked and ignored by Shutdown.
	events.CloseAllSubscribers()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	return nil
}
