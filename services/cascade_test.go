package services

import (
	"testing"
	"time"

	"famline/models"
	"famline/utils"

	"github.com/stretchr/testify/assert"
)

func TestResolveEffectiveSettings_MemberOverrideWins(t *testing.T) {
	defaults := models.GroupDefaults{
		Frequency:    models.FrequencyDailyDigest,
		Channels:     []string{models.ChannelEmail},
		ContentTypes: []string{models.ContentTypeText},
	}
	overrides := models.MemberOverrides{
		Frequency:    utils.StringPtr(models.FrequencyEveryUpdate),
		Channels:     []string{models.ChannelSMS},
		ContentTypes: []string{models.ContentTypePhotos, models.ContentTypeVideo},
	}

	effective := ResolveEffectiveSettings(defaults, overrides)

	assert.Equal(t, models.FrequencyEveryUpdate, effective.Frequency)
	assert.Equal(t, []string{models.ChannelSMS}, effective.Channels)
	assert.Equal(t, []string{models.ContentTypePhotos, models.ContentTypeVideo}, effective.ContentTypes)
	assert.Equal(t, models.SourceMemberOverride, effective.Sources.Frequency)
	assert.Equal(t, models.SourceMemberOverride, effective.Sources.Channels)
	assert.Equal(t, models.SourceMemberOverride, effective.Sources.ContentTypes)
}

func TestResolveEffectiveSettings_GroupDefaultWhenNoOverride(t *testing.T) {
	defaults := models.GroupDefaults{
		Frequency:    models.FrequencyMilestones,
		Channels:     []string{models.ChannelEmail, models.ChannelSMS},
		ContentTypes: []string{models.ContentTypeMilestones},
	}

	effective := ResolveEffectiveSettings(defaults, models.MemberOverrides{})

	assert.Equal(t, models.FrequencyMilestones, effective.Frequency)
	assert.Equal(t, []string{models.ChannelEmail, models.ChannelSMS}, effective.Channels)
	assert.Equal(t, models.SourceGroupDefault, effective.Sources.Frequency)
	assert.Equal(t, models.SourceGroupDefault, effective.Sources.Channels)
	assert.Equal(t, models.SourceGroupDefault, effective.Sources.ContentTypes)
}

func TestResolveEffectiveSettings_SystemDefaultAsLastResort(t *testing.T) {
	effective := ResolveEffectiveSettings(models.GroupDefaults{}, models.MemberOverrides{})

	assert.Equal(t, models.SystemDefaultFrequency, effective.Frequency)
	assert.Equal(t, models.SystemDefaultChannels, effective.Channels)
	assert.Equal(t, models.SystemDefaultContentTypes, effective.ContentTypes)
	assert.Equal(t, models.SourceSystemDefault, effective.Sources.Frequency)
	assert.Equal(t, models.SourceSystemDefault, effective.Sources.Channels)
	assert.Equal(t, models.SourceSystemDefault, effective.Sources.ContentTypes)
}

func TestResolveEffectiveSettings_PerFieldResolution(t *testing.T) {
	// Each field resolves independently: frequency overridden, channels from
	// the group, content types fall through to the system default.
	defaults := models.GroupDefaults{
		Channels: []string{models.ChannelSMS},
	}
	overrides := models.MemberOverrides{
		Frequency: utils.StringPtr(models.FrequencyDailyDigest),
	}

	effective := ResolveEffectiveSettings(defaults, overrides)

	assert.Equal(t, models.SourceMemberOverride, effective.Sources.Frequency)
	assert.Equal(t, models.SourceGroupDefault, effective.Sources.Channels)
	assert.Equal(t, models.SourceSystemDefault, effective.Sources.ContentTypes)
	assert.Equal(t, models.FrequencyDailyDigest, effective.Frequency)
	assert.Equal(t, []string{models.ChannelSMS}, effective.Channels)
	assert.Equal(t, models.SystemDefaultContentTypes, effective.ContentTypes)
}

func TestResolveEffectiveSettings_EmptyStringFrequencyInherits(t *testing.T) {
	defaults := models.GroupDefaults{Frequency: models.FrequencyWeeklyDigest}
	overrides := models.MemberOverrides{Frequency: utils.StringPtr("")}

	effective := ResolveEffectiveSettings(defaults, overrides)

	assert.Equal(t, models.FrequencyWeeklyDigest, effective.Frequency)
	assert.Equal(t, models.SourceGroupDefault, effective.Sources.Frequency)
}

func TestResolveEffectiveSettings_ReturnsDefensiveCopies(t *testing.T) {
	defaults := models.GroupDefaults{
		Frequency: models.FrequencyWeeklyDigest,
		Channels:  []string{models.ChannelEmail},
	}

	effective := ResolveEffectiveSettings(defaults, models.MemberOverrides{})
	effective.Channels[0] = "mutated"

	assert.Equal(t, []string{models.ChannelEmail}, defaults.Channels)
}

func TestIsMuted(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		muteUntil *time.Time
		want      bool
	}{
		{"no mute window", nil, false},
		{"future mute", utils.TimePtr(now.Add(time.Hour)), true},
		{"expired mute", utils.TimePtr(now.Add(-time.Hour)), false},
		{"boundary is not muted", utils.TimePtr(now), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := models.GroupMembership{MuteUntil: tt.muteUntil}
			assert.Equal(t, tt.want, IsMuted(m, now))
		})
	}
}
