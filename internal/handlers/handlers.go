package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/batchguard/batchguard/internal/auth"
	"github.com/batchguard/batchguard/internal/config"
	"github.com/batchguard/batchguard/internal/ledger"
	"github.com/batchguard/batchguard/internal/outcome"
	"github.com/batchguard/batchguard/internal/token"
	"github.com/batchguard/batchguard/internal/verify"
)

// Deps holds the shared dependencies the HTTP layer needs.
type Deps struct {
	Config   *config.Config
	Index    *ledger.Index
	Verifier *verify.Verifier
	Emitter  *outcome.Emitter
}

// RegisterRoutes wires the service routes.
//
// /v1/verify is public: scanning terminals call it with untrusted tokens.
// The operator endpoints (token provisioning, ledger stats) sit behind the
// bearer middleware when a secret is configured.
func RegisterRoutes(d *Deps, r chi.Router) {
	r.Get("/health", handleHealth)
	r.Get("/ready", handleReady(d.Index))

	r.Post("/v1/verify", handleVerify(d.Verifier, d.Emitter))

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireBearer(d.Config.AuthJWTSecret))
		pr.Post("/v1/token", handleTokenPost(d.Index))
		pr.Get("/v1/ledger/stats", handleLedgerStats(d.Index))
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "ts": time.Now().UTC()})
}

func handleReady(ix *ledger.Index) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ix == nil || ix.Len() == 0 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "ledger not loaded"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ready"})
	}
}

// verifyResponse mirrors verify.Outcome on the wire. Record and duplicate
// are surfaced on rule failures too, never on decode/no-match failures.
type verifyResponse struct {
	OK        bool                `json:"ok"`
	Reason    string              `json:"reasonCode,omitempty"`
	Duplicate bool                `json:"duplicate"`
	Record    *ledger.BatchRecord `json:"record,omitempty"`
}

// POST /v1/verify
// Request: { "token": "...", "now": "2026-01-01T00:00:00Z" }
// now is optional; it defaults to the server's current UTC time. A rejected
// token is still a successful verification call (200): the outcome is data,
// not a transport error.
func handleVerify(v *verify.Verifier, em *outcome.Emitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Token string `json:"token"`
			Now   string `json:"now,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if req.Token == "" {
			http.Error(w, "token required", http.StatusBadRequest)
			return
		}

		now := time.Now().UTC()
		if req.Now != "" {
			parsed, err := time.Parse(time.RFC3339, req.Now)
			if err != nil {
				http.Error(w, "invalid now timestamp: "+err.Error(), http.StatusBadRequest)
				return
			}
			now = parsed
		}

		out := v.Verify(req.Token, now)
		em.Emit(outcome.NewEvent(out, now))

		writeJSON(w, http.StatusOK, verifyResponse{
			OK:        out.OK,
			Reason:    string(out.Reason),
			Duplicate: out.Duplicate,
			Record:    out.Record,
		})
	}
}

// POST /v1/token
// Request: { "id": "MED-001", "batch": "B456789" }
// Response: { "token": "..." } for the matching ledger record.
func handleTokenPost(ix *ledger.Index) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID    string `json:"id"`
			Batch string `json:"batch"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if req.ID == "" || req.Batch == "" {
			http.Error(w, "id and batch required", http.StatusBadRequest)
			return
		}

		rec, ok := ix.Find(req.ID, req.Batch)
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		tok, err := token.Encode(*rec)
		if err != nil {
			http.Error(w, "encode token: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": tok})
	}
}

func handleLedgerStats(ix *ledger.Index) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{
			"records":  ix.Len(),
			"recalled": ix.Recalled(),
		})
	}
}

// helper JSON writer
func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
