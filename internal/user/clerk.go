package user

import (
	"strings"

	"github.com/goccy/go-json"
)

// ClerkWebhookEvent is the envelope Clerk posts for user lifecycle events.
type ClerkWebhookEvent struct {
	Type   string          `json:"type"`
	Object string          `json:"object"`
	Data   json.RawMessage `json:"data"`
}

type ClerkEmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type ClerkUserData struct {
	ID                    string              `json:"id"`
	Username              string              `json:"username"`
	FirstName             string              `json:"first_name"`
	LastName              string              `json:"last_name"`
	ImageURL              string              `json:"image_url"`
	ProfileImageURL       string              `json:"profile_image_url"`
	PrimaryEmailAddressID string              `json:"primary_email_address_id"`
	EmailAddresses        []ClerkEmailAddress `json:"email_addresses"`
}

// PrimaryEmail prefers the address Clerk marks as primary and falls back to
// the first one.
func (d *ClerkUserData) PrimaryEmail() string {
	for _, e := range d.EmailAddresses {
		if e.ID == d.PrimaryEmailAddressID {
			return e.EmailAddress
		}
	}
	if len(d.EmailAddresses) > 0 {
		return d.EmailAddresses[0].EmailAddress
	}
	return ""
}

func (d *ClerkUserData) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

// DisplayUsername derives a username when the Clerk profile has none.
func (d *ClerkUserData) DisplayUsername() string {
	if d.Username != "" {
		return d.Username
	}
	if name := strings.ReplaceAll(d.FullName(), " ", ""); name != "" {
		return strings.ToLower(name)
	}
	if email := d.PrimaryEmail(); email != "" {
		local, _, _ := strings.Cut(email, "@")
		return local
	}
	return d.ID
}

func (d *ClerkUserData) Image() string {
	if d.ImageURL != "" {
		return d.ImageURL
	}
	return d.ProfileImageURL
}

func (d *ClerkUserData) CreateRequest() *CreateUserRequest {
	return &CreateUserRequest{
		ClerkID:  d.ID,
		Email:    d.PrimaryEmail(),
		Username: d.DisplayUsername(),
		Name:     d.FullName(),
		ImageURL: d.Image(),
	}
}

func (d *ClerkUserData) UpdateRequest() *UpdateProfileRequest {
	return &UpdateProfileRequest{
		Username: d.DisplayUsername(),
		Name:     d.FullName(),
		ImageURL: d.Image(),
	}
}
