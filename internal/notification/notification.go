package notification

import (
	"context"
	"time"
)

type Kind string

const (
	KindAchievement   Kind = "achievement"
	KindStreakRisk    Kind = "streak_risk"
	KindChallengeDone Kind = "challenge_completed"
)

type DeviceToken struct {
	Token    string    `json:"token"`
	Platform string    `json:"platform"`
	AddedAt  time.Time `json:"addedAt"`
	LastUsed time.Time `json:"lastUsed"`
}

// PushProvider delivers a push message to a set of devices.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []DeviceToken, title, body string, data map[string]any) error
}

type Push struct {
	Kind  Kind
	Title string
	Body  string
	Data  map[string]any
}
