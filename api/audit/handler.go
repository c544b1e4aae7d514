// Package audit exposes the scheduling event trail over HTTP.
package audit

import (
	"encoding/json"
	"net/http"
	"time"

	infaudit "github.com/canada7700/finish-line-calendar-app-sub000/infra/audit"
)

// NewHandler returns an HTTP handler for GET /api/audit. Requests must
// include "Authorization: Bearer <token>" when token is non-empty.
// Supported filters are start and end (RFC3339), project_id and topic.
func NewHandler(store infaudit.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		params := r.URL.Query()
		q := infaudit.Query{ProjectID: params.Get("project_id"), Topic: params.Get("topic")}
		for name, dst := range map[string]*time.Time{"start": &q.Start, "end": &q.End} {
			s := params.Get(name)
			if s == "" {
				continue
			}
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				http.Error(w, name+": want RFC3339", http.StatusBadRequest)
				return
			}
			*dst = t
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []infaudit.Record{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
