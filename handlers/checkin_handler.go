package handlers

import (
	"context"
	"net/http"

	"cloud.google.com/go/civil"

	"mindfuelAPI/internal/checkin"
)

type CheckinRecorder interface {
	CreateCheckin(ctx context.Context, clerkID string, req *checkin.CreateCheckinRequest) (*checkin.DailyCheckin, error)
	ListCheckins(ctx context.Context, clerkID string, start, end civil.Date) ([]*checkin.DailyCheckin, error)
}

type CheckinHandler struct {
	checkins CheckinRecorder
	today    func() civil.Date
}

func NewCheckinHandler(c CheckinRecorder, today func() civil.Date) *CheckinHandler {
	return &CheckinHandler{checkins: c, today: today}
}

func (h *CheckinHandler) CreateCheckin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}
	defer cancel()

	var req checkin.CreateCheckinRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	c, err := h.checkins.CreateCheckin(ctx, clerkID, &req)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, c)
}

// ListCheckins defaults to the last 30 days.
func (h *CheckinHandler) ListCheckins(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}
	defer cancel()

	start, err := dateParam(r, "startDate")
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	end, err := dateParam(r, "endDate")
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	if end == nil {
		today := h.today()
		end = &today
	}
	if start == nil {
		from := end.AddDays(-29)
		start = &from
	}

	list, err := h.checkins.ListCheckins(ctx, clerkID, *start, *end)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, list)
}
