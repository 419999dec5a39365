// File: internal/handler/router.go
package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires a Handler onto the HTTP surface:
// /{key}, the legacy /key/{key} alias, the root status route, and an
// additive /metrics route. Route matching for the numeric path
// parameter is declarative via gorilla/mux's pattern syntax rather
// than hand-rolled prefix checks. A panic in any route is recovered and
// answered with a 500.
func NewRouter(h *Handler) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", h.serveStatus).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/{key:[0-9]+}", h.serveKey).Methods(http.MethodGet, http.MethodPut, http.MethodDelete)
	r.HandleFunc("/key/{key:[0-9]+}", h.serveKey).Methods(http.MethodGet, http.MethodPut, http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(serveNotFoundOrMalformed)

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		r.ServeHTTP(w, req)
	})
}

// serveNotFoundOrMalformed is the catch-all the router falls through
// to when a path doesn't match any registered pattern. A single
// non-digit segment (or a /key/<non-digit> segment) looks like an
// attempted key request with a malformed key, so it is reported as
// 400; anything else is a genuinely unknown route, 404.
func serveNotFoundOrMalformed(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(r.URL.Path, "/")
	if path == "" {
		http.NotFound(w, r)
		return
	}

	segment := path
	if rest, ok := strings.CutPrefix(path, "key/"); ok {
		segment = rest
	}

	if segment != "" && !strings.Contains(segment, "/") {
		http.Error(w, "malformed key", http.StatusBadRequest)
		return
	}

	http.NotFound(w, r)
}

func (h *Handler) serveStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = io.WriteString(w, h.Status())
}

func (h *Handler) serveKey(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	key64, err := strconv.ParseInt(vars["key"], 10, 32)
	if err != nil {
		http.Error(w, "malformed key", http.StatusBadRequest)
		return
	}
	key := int32(key64)

	switch r.Method {
	case http.MethodGet:
		value, status, err := h.HandleGet(r.Context(), key)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if status == 404 {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write(value)

	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		status, err := h.HandlePut(r.Context(), key, body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = status
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "Updated")

	case http.MethodDelete:
		status, err := h.HandleDelete(r.Context(), key)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = status
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "Deleted")
	}
}
