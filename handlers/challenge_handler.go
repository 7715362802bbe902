package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"mindfuelAPI/internal/challenge"
)

type ChallengeTracker interface {
	ListChallenges(ctx context.Context) ([]*challenge.Challenge, error)
	GetCurrentChallenge(ctx context.Context, clerkID string) (*challenge.UserChallenge, error)
	GetCompletedChallenges(ctx context.Context, clerkID string) ([]*challenge.UserChallenge, error)
	GetCurrentDay(ctx context.Context, clerkID string) (*challenge.DayView, error)
	StartChallenge(ctx context.Context, clerkID string, challengeID int64) (*challenge.UserChallenge, error)
	GetTodayTasks(ctx context.Context, clerkID string) ([]*challenge.TaskView, error)
	UpdateTaskCompletion(ctx context.Context, clerkID string, taskID int64, completed bool) (*challenge.TaskView, error)
}

type ChallengeHandler struct {
	challenges ChallengeTracker
}

func NewChallengeHandler(c ChallengeTracker) *ChallengeHandler {
	return &ChallengeHandler{challenges: c}
}

func idVar(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

func (h *ChallengeHandler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, _, ok := authenticated(w, r)
	if !ok {
		return
	}
	defer cancel()

	list, err := h.challenges.ListChallenges(ctx)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, list)
}

// GetCurrentChallenge responds with null when the user has no active
// challenge.
func (h *ChallengeHandler) GetCurrentChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}
	defer cancel()

	uc, err := h.challenges.GetCurrentChallenge(ctx, clerkID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, uc)
}

func (h *ChallengeHandler) GetCompletedChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}
	defer cancel()

	list, err := h.challenges.GetCompletedChallenges(ctx, clerkID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, list)
}

func (h *ChallengeHandler) GetCurrentDay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}
	defer cancel()

	day, err := h.challenges.GetCurrentDay(ctx, clerkID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, day)
}

func (h *ChallengeHandler) StartChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}
	defer cancel()

	challengeID, ok := idVar(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge id")
		return
	}

	uc, err := h.challenges.StartChallenge(ctx, clerkID, challengeID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, uc)
}

func (h *ChallengeHandler) GetTodayTasks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}
	defer cancel()

	tasks, err := h.challenges.GetTodayTasks(ctx, clerkID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, tasks)
}

// UpdateTask serves PATCH /tasks/{id} with a {"completed": bool} body.
func (h *ChallengeHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}
	defer cancel()

	taskID, ok := idVar(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid task id")
		return
	}

	var req challenge.UpdateTaskRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	view, err := h.challenges.UpdateTaskCompletion(ctx, clerkID, taskID, *req.Completed)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}
