package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"overlay/internal/app/state"
	"overlay/pkg/event"
	"overlay/pkg/slg"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errResponse struct {
	Error string `json:"error"`
}

// handleEvent accepts one host-delivered event and runs it through the
// pipeline. Unknown listener kinds are the caller's mistake; everything else
// that fails is ours.
func (api *API) handleEvent(w http.ResponseWriter, r *http.Request) {
	var raw event.Raw
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, errResponse{Error: "malformed event payload"})

		return
	}

	if err := api.processor.Process(r.Context(), &raw); err != nil {
		slg.GetSlog(r.Context()).Error("failed to process event", "listener", raw.Listener, "err", err)

		if errors.Is(err, event.ErrUnknownListener) {
			writeJSON(w, http.StatusBadRequest, errResponse{Error: err.Error()})

			return
		}

		writeJSON(w, http.StatusInternalServerError, errResponse{Error: "failed to process event"})

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type loadRequest struct {
	Fields map[string]any `json:"fields"`
}

// handleLoad mirrors the widget lifecycle event that carries the initial
// field configuration.
func (api *API) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req loadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errResponse{Error: "malformed load payload"})

		return
	}

	if err := api.processor.Load(r.Context(), req.Fields); err != nil {
		slg.GetSlog(r.Context()).Error("failed to apply load event", "err", err)
		writeJSON(w, http.StatusInternalServerError, errResponse{Error: "failed to apply load event"})

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (api *API) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.state.Snapshot())
}

type patchStateRequest struct {
	Followers   *int `json:"followers,omitempty"`
	Subscribers *int `json:"subscribers,omitempty"`
	Bits        *int `json:"bits,omitempty"`
	Tips        *int `json:"tips,omitempty"`

	Currency         *string `json:"currency,omitempty"`
	RefreshFrequency *string `json:"refresh_frequency,omitempty"`
}

// handlePatchState exposes the explicit counter setters. Setters overwrite
// outright, unlike the monotonic event-driven increments.
func (api *API) handlePatchState(w http.ResponseWriter, r *http.Request) {
	var req patchStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errResponse{Error: "malformed state patch"})

		return
	}

	ctx := r.Context()

	if req.Followers != nil {
		api.state.SetFollowers(ctx, *req.Followers)
	}
	if req.Subscribers != nil {
		api.state.SetSubscribers(ctx, *req.Subscribers)
	}
	if req.Bits != nil {
		api.state.SetBits(ctx, *req.Bits)
	}
	if req.Tips != nil {
		api.state.SetTips(ctx, *req.Tips)
	}
	if req.Currency != nil {
		api.state.SetCurrency(ctx, *req.Currency)
	}
	if req.RefreshFrequency != nil {
		api.state.SetRefreshFrequency(ctx, state.RefreshFrequency(*req.RefreshFrequency))
	}

	writeJSON(w, http.StatusOK, api.state.Snapshot())
}
