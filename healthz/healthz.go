// Package healthz serves the renderer's debug status endpoints.
package healthz

import (
	"fmt"
	"net/http"
	"sync"
)

// Handler answers liveness probes and, on /progressz, reports how far along
// the current render is.
type Handler struct {
	mu       sync.Mutex
	cur, tot int
}

func New() *Handler {
	return &Handler{}
}

// SetProgress records render progress.  It has the shape of
// render.ProgressFunction.
func (h *Handler) SetProgress(cur, tot int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cur = cur
	h.tot = tot
}

func (h *Handler) Progress() (cur, tot int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cur, h.tot
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("200 OK"))
}

// ProgressHandler serves the recorded progress as plain text.
func (h *Handler) ProgressHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cur, tot := h.Progress()
		pct := 0
		if tot > 0 {
			pct = 100 * cur / tot
		}
		fmt.Fprintf(w, "%d/%d samples %d%%\n", cur, tot, pct)
	})
}

// Register installs /healthz, /readyz and /progressz on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle("/healthz", h)
	mux.Handle("/readyz", h)
	mux.Handle("/progressz", h.ProgressHandler())
}
