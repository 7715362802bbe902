package handlers

import (
	"context"
	"net/http"

	"mindfuelAPI/internal/healthtip"
)

type HealthTipReader interface {
	GetFeatured(ctx context.Context) (*healthtip.HealthTip, error)
	ListTips(ctx context.Context) ([]*healthtip.HealthTip, error)
}

type HealthTipHandler struct {
	tips HealthTipReader
}

func NewHealthTipHandler(t HealthTipReader) *HealthTipHandler {
	return &HealthTipHandler{tips: t}
}

func (h *HealthTipHandler) GetFeatured(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	tip, err := h.tips.GetFeatured(ctx)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, tip)
}

func (h *HealthTipHandler) ListTips(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	tips, err := h.tips.ListTips(ctx)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, tips)
}
