package user

import (
	"time"

	"cloud.google.com/go/civil"
)

type User struct {
	ID                    string      `json:"id"`
	ClerkID               string      `json:"clerkId"`
	Email                 string      `json:"email"`
	Username              string      `json:"username"`
	Name                  string      `json:"name"`
	ImageURL              string      `json:"imageUrl,omitempty"`
	Streak                int         `json:"streak"`
	Points                int         `json:"points"`
	LastCheckinDate       *civil.Date `json:"lastCheckinDate,omitempty"`
	SubscriptionStatus    string      `json:"subscriptionStatus"`
	SubscriptionExpiresAt *time.Time  `json:"subscriptionExpiresAt,omitempty"`
	CreatedAt             time.Time   `json:"createdAt"`
	UpdatedAt             time.Time   `json:"updatedAt"`
}

// DisplayName falls back to the username when no name is set.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
