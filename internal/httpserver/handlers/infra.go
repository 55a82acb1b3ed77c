package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/linkfold/internal/httpserver/deps"
)

type componentStatus struct {
	OK         bool   `json:"ok"`
	Mode       string `json:"mode,omitempty"`
	Source     string `json:"source,omitempty"`
	Timeout    string `json:"timeout,omitempty"`
	LastReload string `json:"last_reload,omitempty"`
	Impact     string `json:"impact,omitempty"`
	Error      string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of the store and of the header profile.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"store":   checkStore(r.Context(), d),
			"profile": profileStatus(d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		}, d.Logger)
	}
}

// determineMode is "critical" without a store and "degraded" when the last
// profile reload failed (the previous profile stays active).
func determineMode(components map[string]componentStatus) string {
	if store, ok := components["store"]; ok && !store.OK {
		return "critical"
	}
	if profile, ok := components["profile"]; ok && !profile.OK {
		return "degraded"
	}
	return "operational"
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()

	if err := d.Links.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   d.StoreKind,
			Impact: "link-creation-disabled",
			Error:  err.Error(),
		}
	}
	return componentStatus{OK: true, Mode: d.StoreKind}
}

func profileStatus(d deps.Deps) componentStatus {
	p := d.Resolver.Profile()
	st := componentStatus{
		OK:      true,
		Mode:    "static",
		Source:  p.Source,
		Timeout: p.Timeout.String(),
	}
	if d.ProfileReload == nil {
		return st
	}

	rs := d.ProfileReload.Status()
	st.Mode = "reloadable"
	st.LastReload = "never"
	if !rs.LastReload.IsZero() {
		st.LastReload = rs.LastReload.Format(time.RFC3339)
	}
	if rs.LastError != "" {
		st.OK = false
		st.Impact = "previous-profile-in-use"
		st.Error = rs.LastError
	}
	return st
}
