package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"mindfuelAPI/internal/coach"
)

// coachTimeout covers an LLM round trip plus the fallback provider.
const coachTimeout = 60 * time.Second

type CoachChat interface {
	ListConversations(ctx context.Context, clerkID string) ([]*coach.Conversation, error)
	CreateConversation(ctx context.Context, clerkID, title string) (*coach.Conversation, error)
	GetMessages(ctx context.Context, clerkID, conversationID string) ([]*coach.Message, error)
	SendMessage(ctx context.Context, clerkID, conversationID, content string) (*coach.Exchange, error)
}

type CoachHandler struct {
	coach CoachChat
}

func NewCoachHandler(c CoachChat) *CoachHandler {
	return &CoachHandler{coach: c}
}

func (h *CoachHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}
	defer cancel()

	list, err := h.coach.ListConversations(ctx, clerkID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, list)
}

// CreateConversation accepts an empty body, which yields the default title.
func (h *CoachHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}
	defer cancel()

	var req coach.CreateConversationRequest
	if r.ContentLength != 0 {
		if err := decodeAndValidate(r, &req); err != nil {
			writeServiceError(ctx, w, err)
			return
		}
	}

	conv, err := h.coach.CreateConversation(ctx, clerkID, req.Title)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, conv)
}

func (h *CoachHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}
	defer cancel()

	msgs, err := h.coach.GetMessages(ctx, clerkID, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, msgs)
}

func (h *CoachHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	_, cancel, clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}
	cancel()

	ctx, cancel := context.WithTimeout(r.Context(), coachTimeout)
	defer cancel()

	var req coach.SendMessageRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	exchange, err := h.coach.SendMessage(ctx, clerkID, mux.Vars(r)["id"], req.Content)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, exchange)
}
