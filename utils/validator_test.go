package utils

import (
	"testing"

	"famline/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStruct_CustomValidators(t *testing.T) {
	vs := NewValidationService()

	type prefs struct {
		Frequency    string   `validate:"omitempty,frequency"`
		Channels     []string `validate:"omitempty,dive,channel"`
		ContentTypes []string `validate:"omitempty,dive,content_type"`
		Relationship string   `validate:"omitempty,relationship"`
	}

	tests := []struct {
		name    string
		input   prefs
		wantErr bool
	}{
		{"all valid", prefs{
			Frequency:    models.FrequencyWeeklyDigest,
			Channels:     []string{models.ChannelEmail, models.ChannelSMS},
			ContentTypes: []string{models.ContentTypePhotos},
			Relationship: models.RelationshipGrandparent,
		}, false},
		{"empty passes omitempty", prefs{}, false},
		{"bad frequency", prefs{Frequency: "hourly"}, true},
		{"bad channel", prefs{Channels: []string{"fax"}}, true},
		{"bad content type", prefs{ContentTypes: []string{"audio"}}, true},
		{"bad relationship", prefs{Relationship: "neighbor"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := vs.ValidateStruct(tt.input)
			if tt.wantErr {
				assert.NotEmpty(t, errs)
			} else {
				assert.Empty(t, errs)
			}
		})
	}
}

func TestValidateStruct_PhoneValidator(t *testing.T) {
	vs := NewValidationService()

	type contact struct {
		Phone string `validate:"omitempty,phone"`
	}

	assert.Empty(t, vs.ValidateStruct(contact{Phone: "+12125551234"}))
	assert.Empty(t, vs.ValidateStruct(contact{}))
	assert.NotEmpty(t, vs.ValidateStruct(contact{Phone: "12345"}))
	assert.NotEmpty(t, vs.ValidateStruct(contact{Phone: "not-a-phone"}))
}

func TestValidateStruct_ErrorMessages(t *testing.T) {
	vs := NewValidationService()

	type settings struct {
		Frequency string `validate:"required,frequency"`
	}

	errs := vs.ValidateStruct(settings{})
	require.Len(t, errs, 1)
	assert.Equal(t, "required", errs[0].Tag)
	assert.Equal(t, "Frequency is required", errs[0].Message)

	errs = vs.ValidateStruct(settings{Frequency: "hourly"})
	require.Len(t, errs, 1)
	assert.Equal(t, "frequency", errs[0].Tag)
	assert.Equal(t, "Invalid notification frequency", errs[0].Message)
}

func TestValidateStruct_RealRequests(t *testing.T) {
	vs := NewValidationService()

	valid := models.CreateGroupRequest{
		Name: "College Friends",
		Defaults: &models.GroupDefaults{
			Frequency:    models.FrequencyDailyDigest,
			Channels:     []string{models.ChannelEmail},
			ContentTypes: []string{models.ContentTypeText},
		},
	}
	assert.Empty(t, vs.ValidateStruct(valid))

	tooShort := models.CreateGroupRequest{Name: "A"}
	assert.NotEmpty(t, vs.ValidateStruct(tooShort))

	badDefaults := models.CreateGroupRequest{
		Name: "College Friends",
		Defaults: &models.GroupDefaults{
			Frequency:    "hourly",
			Channels:     []string{models.ChannelEmail},
			ContentTypes: []string{models.ContentTypeText},
		},
	}
	assert.NotEmpty(t, vs.ValidateStruct(badDefaults))
}
