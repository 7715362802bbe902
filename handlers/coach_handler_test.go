package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindfuelAPI/internal/apperr"
	"mindfuelAPI/internal/coach"
)

type fakeCoach struct {
	title   string
	convID  string
	content string
}

func (f *fakeCoach) ListConversations(context.Context, string) ([]*coach.Conversation, error) {
	return []*coach.Conversation{}, nil
}

func (f *fakeCoach) CreateConversation(_ context.Context, _ string, title string) (*coach.Conversation, error) {
	f.title = title
	if title == "" {
		title = coach.DefaultConversationTitle
	}
	return &coach.Conversation{ID: "c1", Title: title}, nil
}

func (f *fakeCoach) GetMessages(_ context.Context, _ string, id string) ([]*coach.Message, error) {
	if id != "c1" {
		return nil, apperr.NotFound("conversation %s", id)
	}
	return []*coach.Message{}, nil
}

func (f *fakeCoach) SendMessage(_ context.Context, _ string, id, content string) (*coach.Exchange, error) {
	f.convID, f.content = id, content
	return &coach.Exchange{
		UserMessage:  &coach.Message{Role: coach.RoleUser, Content: content},
		CoachMessage: &coach.Message{Role: coach.RoleCoach, Content: "Try a glass of water first."},
		Source:       "fallback",
	}, nil
}

func TestCoachHandler_CreateConversation(t *testing.T) {
	fake := &fakeCoach{}
	h := NewCoachHandler(fake)

	rr := httptest.NewRecorder()
	h.CreateConversation(rr, newRequest(http.MethodPost, "/api/v1/coach/conversations", "", nil))
	require.Equal(t, http.StatusCreated, rr.Code)

	var conv coach.Conversation
	decodeBody(t, rr, &conv)
	assert.Equal(t, coach.DefaultConversationTitle, conv.Title)

	rr = httptest.NewRecorder()
	h.CreateConversation(rr, newRequest(http.MethodPost, "/api/v1/coach/conversations", `{"title": "Evening cravings"}`, nil))
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "Evening cravings", fake.title)
}

func TestCoachHandler_SendMessage(t *testing.T) {
	fake := &fakeCoach{}
	h := NewCoachHandler(fake)
	vars := map[string]string{"id": "c1"}

	rr := httptest.NewRecorder()
	h.SendMessage(rr, newRequest(http.MethodPost, "/api/v1/coach/conversations/c1/messages", `{"content": "I want cake"}`, vars))
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "c1", fake.convID)

	var ex coach.Exchange
	decodeBody(t, rr, &ex)
	assert.Equal(t, "I want cake", ex.UserMessage.Content)
	assert.Equal(t, coach.RoleCoach, ex.CoachMessage.Role)

	rr = httptest.NewRecorder()
	h.SendMessage(rr, newRequest(http.MethodPost, "/api/v1/coach/conversations/c1/messages", `{"content": ""}`, vars))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCoachHandler_GetMessagesUnknownConversation(t *testing.T) {
	h := NewCoachHandler(&fakeCoach{})
	rr := httptest.NewRecorder()
	h.GetMessages(rr, newRequest(http.MethodGet, "/api/v1/coach/conversations/zz/messages", "", map[string]string{"id": "zz"}))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
