package httpin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	usecase "launchpad/internal/application/usecase"
	"launchpad/internal/domain/mint"
)

// SessionHandler exposes the mint session to the presentation layer.
type SessionHandler struct {
	uc *usecase.SessionUsecase
}

func NewSessionHandler(uc *usecase.SessionUsecase) *SessionHandler {
	return &SessionHandler{uc: uc}
}

// GET /session
func (h *SessionHandler) GetView(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.uc.View())
}

// POST /session/wallet  {"wallet":"..."}  (empty wallet = disconnect)
func (h *SessionHandler) SetWallet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var body struct {
		Wallet string `json:"wallet"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid body"})
		return
	}

	h.uc.SetWallet(strings.TrimSpace(body.Wallet))

	// best-effort immediate refresh so the new wallet sees live numbers
	if err := h.uc.Refresh(r.Context()); err != nil {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"view":    h.uc.View(),
			"warning": "snapshot refresh failed; retrying on next cycle",
		})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"view": h.uc.View()})
}

// POST /session/refresh
func (h *SessionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := h.uc.Refresh(r.Context()); err != nil {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "snapshot refresh failed"})
		return
	}
	_ = json.NewEncoder(w).Encode(h.uc.View())
}

// POST /session/mint
//
// Runs the attempt to its terminal state and responds 200 + outcome
// (transitions stream over the websocket meanwhile); 409 while an attempt is
// in flight, 403 when the gate refuses.
func (h *SessionHandler) Mint(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	outcome, err := h.uc.Mint(r.Context())
	if err != nil {
		writeMintErr(w, err)
		return
	}

	_ = json.NewEncoder(w).Encode(mintResponse(outcome))
}

func mintResponse(out mint.Outcome) map[string]any {
	resp := map[string]any{
		"attemptId": out.AttemptID,
		"status":    out.Status.String(),
	}
	if out.TxSignature != "" {
		resp["txSignature"] = out.TxSignature
	}
	if out.Status == mint.StatusConfirmed {
		resp["assetMint"] = out.AssetMint
		resp["explorerUrl"] = out.ExplorerURL
	}
	if f := out.Failure; f != nil {
		resp["failure"] = map[string]any{
			"kind":     f.Kind.String(),
			"category": f.Category.String(),
			"message":  f.Message,
		}
	}
	return resp
}

func writeMintErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrMintInFlight):
		w.WriteHeader(http.StatusConflict)
	case errors.Is(err, usecase.ErrNotConnected),
		errors.Is(err, usecase.ErrIneligible),
		errors.Is(err, usecase.ErrChallengeRequired):
		w.WriteHeader(http.StatusForbidden)
	case errors.Is(err, usecase.ErrNoSnapshot):
		w.WriteHeader(http.StatusServiceUnavailable)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
