package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"mindfuelAPI/internal/apperr"
	"mindfuelAPI/internal/coach"
	"mindfuelAPI/internal/store"
)

// Replier produces the coach's side of a conversation.
type Replier interface {
	Reply(ctx context.Context, message string) (text, source string, err error)
}

type CoachService struct {
	db    store.DB
	coach Replier
}

func NewCoachService(db store.DB, c Replier) *CoachService {
	return &CoachService{db: db, coach: c}
}

func (s *CoachService) ListConversations(ctx context.Context, clerkID string) ([]*coach.Conversation, error) {
	userID, err := userIDByClerk(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
	SELECT id, user_id, title, created_at, updated_at
	FROM coach_conversations
	WHERE user_id = $1
	ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	out := []*coach.Conversation{}
	for rows.Next() {
		var c coach.Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (s *CoachService) CreateConversation(ctx context.Context, clerkID, title string) (*coach.Conversation, error) {
	userID, err := userIDByClerk(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = coach.DefaultConversationTitle
	}

	c := coach.Conversation{ID: uuid.New().String(), UserID: userID, Title: title}
	err = s.db.QueryRow(ctx, `
	INSERT INTO coach_conversations (id, user_id, title)
	VALUES ($1, $2, $3)
	RETURNING created_at, updated_at`, c.ID, userID, title).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return &c, nil
}

// ownConversation checks that conversationID exists and belongs to userID.
func (s *CoachService) ownConversation(ctx context.Context, userID, conversationID string) error {
	if _, err := uuid.Parse(conversationID); err != nil {
		return apperr.InvalidArgument("conversation id %q", conversationID)
	}
	var one int
	err := s.db.QueryRow(ctx,
		`SELECT 1 FROM coach_conversations WHERE id = $1 AND user_id = $2`,
		conversationID, userID,
	).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("conversation %s", conversationID)
		}
		return fmt.Errorf("failed to check conversation: %w", err)
	}
	return nil
}

func (s *CoachService) GetMessages(ctx context.Context, clerkID, conversationID string) ([]*coach.Message, error) {
	userID, err := userIDByClerk(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}
	if err := s.ownConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
	SELECT id, conversation_id, role, content, created_at
	FROM coach_messages
	WHERE conversation_id = $1
	ORDER BY created_at`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	out := []*coach.Message{}
	for rows.Next() {
		var (
			m    coach.Message
			role string
		)
		if err := rows.Scan(&m.ID, &m.ConversationID, &role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = coach.Role(role)
		out = append(out, &m)
	}
	return out, rows.Err()
}

// SendMessage stores the user's message, asks the coach for a reply and
// stores that too. The model call happens outside any transaction.
func (s *CoachService) SendMessage(ctx context.Context, clerkID, conversationID, content string) (*coach.Exchange, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.InvalidArgument("message content is empty")
	}

	userID, err := userIDByClerk(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}
	if err := s.ownConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	userMsg, err := s.insertMessage(ctx, s.db, conversationID, coach.RoleUser, content)
	if err != nil {
		return nil, err
	}

	text, source, err := s.coach.Reply(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("coach reply: %w", err)
	}

	var coachMsg *coach.Message
	err = store.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		m, err := s.insertMessage(ctx, tx, conversationID, coach.RoleCoach, text)
		if err != nil {
			return err
		}
		coachMsg = m
		if _, err := tx.Exec(ctx, `UPDATE coach_conversations SET updated_at = NOW() WHERE id = $1`, conversationID); err != nil {
			return fmt.Errorf("failed to touch conversation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &coach.Exchange{UserMessage: userMsg, CoachMessage: coachMsg, Source: source}, nil
}

func (s *CoachService) insertMessage(ctx context.Context, q store.Querier, conversationID string, role coach.Role, content string) (*coach.Message, error) {
	m := coach.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
	}
	err := q.QueryRow(ctx, `
	INSERT INTO coach_messages (id, conversation_id, role, content)
	VALUES ($1, $2, $3, $4)
	RETURNING created_at`, m.ID, conversationID, string(role), content).Scan(&m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to store %s message: %w", role, err)
	}
	return &m, nil
}
