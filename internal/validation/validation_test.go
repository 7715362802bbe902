package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mindfuelAPI/internal/apperr"
	"mindfuelAPI/internal/checkin"
	"mindfuelAPI/internal/validation"
)

func intPtr(v int) *int { return &v }

func TestStruct_Checkin(t *testing.T) {
	testCases := []struct {
		Desc  string
		Req   checkin.CreateCheckinRequest
		Field string
	}{
		{Desc: "valid", Req: checkin.CreateCheckinRequest{Date: "2024-06-01", Mood: checkin.MoodGood, CravingIntensity: intPtr(3)}},
		{Desc: "date optional", Req: checkin.CreateCheckinRequest{Mood: checkin.MoodRough, CravingIntensity: intPtr(0)}},
		{Desc: "unknown mood", Req: checkin.CreateCheckinRequest{Mood: "ecstatic", CravingIntensity: intPtr(3)}, Field: "mood"},
		{Desc: "intensity above ten", Req: checkin.CreateCheckinRequest{Mood: checkin.MoodOkay, CravingIntensity: intPtr(11)}, Field: "cravingIntensity"},
		{Desc: "intensity missing", Req: checkin.CreateCheckinRequest{Mood: checkin.MoodOkay}, Field: "cravingIntensity"},
		{Desc: "bad date", Req: checkin.CreateCheckinRequest{Date: "06/01/2024", Mood: checkin.MoodOkay, CravingIntensity: intPtr(3)}, Field: "date"},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			err := validation.Struct(tc.Req)
			if tc.Field == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
			assert.ErrorContains(t, err, tc.Field)
		})
	}
}

func TestStruct_Plan(t *testing.T) {
	type req struct {
		Plan string `json:"plan" validate:"required,plan"`
	}
	assert.NoError(t, validation.Struct(req{Plan: "premium-annual"}))
	assert.ErrorIs(t, validation.Struct(req{Plan: "gold"}), apperr.ErrInvalidArgument)
}
