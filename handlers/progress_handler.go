package handlers

import (
	"context"
	"net/http"

	"cloud.google.com/go/civil"

	"mindfuelAPI/internal/apperr"
	"mindfuelAPI/internal/progress"
)

// maxRangeDays bounds a single progress query.
const maxRangeDays = 366

type ProgressReader interface {
	Today() civil.Date
	GetDailyProgress(ctx context.Context, clerkID string, start, end civil.Date) ([]progress.DayRecord, error)
	GetProgress(ctx context.Context, clerkID string, start, end civil.Date) (*progress.WeeklySummary, error)
	GetWeeklyProgress(ctx context.Context, clerkID string) (*progress.WeeklySummary, error)
	GetMonthlyProgress(ctx context.Context, clerkID string, month civil.Date) ([]progress.DayRecord, error)
}

type ProgressHandler struct {
	progress ProgressReader
}

func NewProgressHandler(p ProgressReader) *ProgressHandler {
	return &ProgressHandler{progress: p}
}

// dateRange reads startDate and endDate. A missing bound is filled from the
// other one so that the window is a week; with neither the window is the
// last seven days.
func (h *ProgressHandler) dateRange(r *http.Request) (civil.Date, civil.Date, error) {
	start, err := dateParam(r, "startDate")
	if err != nil {
		return civil.Date{}, civil.Date{}, err
	}
	end, err := dateParam(r, "endDate")
	if err != nil {
		return civil.Date{}, civil.Date{}, err
	}

	switch {
	case start == nil && end == nil:
		s, e := progress.LastNDays(h.progress.Today(), 7)
		return s, e, nil
	case start == nil:
		return end.AddDays(-6), *end, nil
	case end == nil:
		return *start, start.AddDays(6), nil
	}
	if end.DaysSince(*start) >= maxRangeDays {
		return civil.Date{}, civil.Date{}, apperr.InvalidArgument("date range exceeds %d days", maxRangeDays)
	}
	return *start, *end, nil
}

func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}
	defer cancel()

	start, end, err := h.dateRange(r)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	summary, err := h.progress.GetProgress(ctx, clerkID, start, end)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

func (h *ProgressHandler) GetDailyProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}
	defer cancel()

	start, end, err := h.dateRange(r)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	days, err := h.progress.GetDailyProgress(ctx, clerkID, start, end)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, days)
}

func (h *ProgressHandler) GetWeeklyProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}
	defer cancel()

	summary, err := h.progress.GetWeeklyProgress(ctx, clerkID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

// GetMonthlyProgress serves ?month=YYYY-MM, defaulting to the current month.
func (h *ProgressHandler) GetMonthlyProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}
	defer cancel()

	month := h.progress.Today()
	if raw := r.URL.Query().Get("month"); raw != "" {
		d, err := civil.ParseDate(raw + "-01")
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "month must be YYYY-MM")
			return
		}
		month = d
	}

	days, err := h.progress.GetMonthlyProgress(ctx, clerkID, month)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, days)
}
