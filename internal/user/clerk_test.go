package user

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clerkCreatedPayload = `{
	"data": {
		"id": "user_2abc",
		"first_name": "Test",
		"last_name": "User",
		"email_addresses": [
			{"id": "email_1", "email_address": "old@example.com"},
			{"id": "email_2", "email_address": "test.user@example.com"}
		],
		"primary_email_address_id": "email_2",
		"username": "",
		"image_url": "",
		"profile_image_url": "https://example.com/image.jpg"
	},
	"object": "event",
	"type": "user.created"
}`

func TestClerkUserData_CreateRequest(t *testing.T) {
	var event ClerkWebhookEvent
	require.NoError(t, json.Unmarshal([]byte(clerkCreatedPayload), &event))
	assert.Equal(t, "user.created", event.Type)

	var data ClerkUserData
	require.NoError(t, json.Unmarshal(event.Data, &data))

	req := data.CreateRequest()
	assert.Equal(t, "user_2abc", req.ClerkID)
	assert.Equal(t, "test.user@example.com", req.Email)
	assert.Equal(t, "testuser", req.Username)
	assert.Equal(t, "Test User", req.Name)
	assert.Equal(t, "https://example.com/image.jpg", req.ImageURL)
}

func TestClerkUserData_DisplayUsername(t *testing.T) {
	testCases := []struct {
		Desc string
		Data ClerkUserData
		Want string
	}{
		{Desc: "explicit username", Data: ClerkUserData{Username: "sugarless", FirstName: "A"}, Want: "sugarless"},
		{Desc: "from name", Data: ClerkUserData{FirstName: "Ana", LastName: "Li"}, Want: "anali"},
		{
			Desc: "from email",
			Data: ClerkUserData{EmailAddresses: []ClerkEmailAddress{{ID: "e", EmailAddress: "mia@example.com"}}},
			Want: "mia",
		},
		{Desc: "falls back to id", Data: ClerkUserData{ID: "user_9"}, Want: "user_9"},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			assert.Equal(t, tc.Want, tc.Data.DisplayUsername())
		})
	}
}
