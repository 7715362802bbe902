package handlers

import (
	"context"
	"net/http"

	"mindfuelAPI/internal/achievement"
	"mindfuelAPI/internal/leaderboard"
	"mindfuelAPI/internal/stats"
	"mindfuelAPI/internal/user"
)

type UserStore interface {
	GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error)
	UpdateProfileByClerkID(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error)
	DeleteUserByClerkID(ctx context.Context, clerkID string) error
	GetUserStats(ctx context.Context, clerkID string) (*stats.UserStats, error)
	GetTopLeaderboard(ctx context.Context) (*leaderboard.Leaderboard, error)
	GetUserRank(ctx context.Context, clerkID string) (*leaderboard.LeaderboardEntry, error)
}

type AchievementLister interface {
	GetUserAchievements(ctx context.Context, clerkID string) ([]*achievement.AchievementWithStatus, error)
}

type UserHandler struct {
	users        UserStore
	achievements AchievementLister
}

func NewUserHandler(users UserStore, achievements AchievementLister) *UserHandler {
	return &UserHandler{
		users:        users,
		achievements: achievements,
	}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}
	defer cancel()

	u, err := h.users.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, u)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}
	defer cancel()

	var req user.UpdateProfileRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	u, err := h.users.UpdateProfileByClerkID(ctx, clerkID, &req)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, u)
}

func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}
	defer cancel()

	if err := h.users.DeleteUserByClerkID(ctx, clerkID); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Account deleted successfully"})
}

func (h *UserHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}
	defer cancel()

	st, err := h.users.GetUserStats(ctx, clerkID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, st)
}

func (h *UserHandler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}
	defer cancel()

	list, err := h.achievements.GetUserAchievements(ctx, clerkID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, list)
}

func (h *UserHandler) GetTopLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, _, ok := authenticated(w, r)
	if !ok {
		return
	}
	defer cancel()

	board, err := h.users.GetTopLeaderboard(ctx)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, board)
}

func (h *UserHandler) GetCurrentUserRank(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}
	defer cancel()

	entry, err := h.users.GetUserRank(ctx, clerkID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, entry)
}
