package services

import (
	"famline/models"
	"time"
)

// ResolveEffectiveSettings combines the three settings layers into the
// effective value per field: member override if present and non-empty, else
// the group default, else the system default. Pure function, no I/O; the
// per-field source tag exists for UI transparency and is never persisted.
//
// An explicit empty set never reaches this function: it is rejected as
// invalid input at the write boundary, not treated as "inherit" here.
func ResolveEffectiveSettings(defaults models.GroupDefaults, overrides models.MemberOverrides) models.EffectiveSettings {
	effective := models.EffectiveSettings{}

	switch {
	case overrides.Frequency != nil && *overrides.Frequency != "":
		effective.Frequency = *overrides.Frequency
		effective.Sources.Frequency = models.SourceMemberOverride
	case defaults.Frequency != "":
		effective.Frequency = defaults.Frequency
		effective.Sources.Frequency = models.SourceGroupDefault
	default:
		effective.Frequency = models.SystemDefaultFrequency
		effective.Sources.Frequency = models.SourceSystemDefault
	}

	switch {
	case len(overrides.Channels) > 0:
		effective.Channels = copyStrings(overrides.Channels)
		effective.Sources.Channels = models.SourceMemberOverride
	case len(defaults.Channels) > 0:
		effective.Channels = copyStrings(defaults.Channels)
		effective.Sources.Channels = models.SourceGroupDefault
	default:
		effective.Channels = copyStrings(models.SystemDefaultChannels)
		effective.Sources.Channels = models.SourceSystemDefault
	}

	switch {
	case len(overrides.ContentTypes) > 0:
		effective.ContentTypes = copyStrings(overrides.ContentTypes)
		effective.Sources.ContentTypes = models.SourceMemberOverride
	case len(defaults.ContentTypes) > 0:
		effective.ContentTypes = copyStrings(defaults.ContentTypes)
		effective.Sources.ContentTypes = models.SourceGroupDefault
	default:
		effective.ContentTypes = copyStrings(models.SystemDefaultContentTypes)
		effective.Sources.ContentTypes = models.SourceSystemDefault
	}

	return effective
}

// IsMuted evaluates the mute window passively against the supplied clock.
// There is no background expiry job; every read re-evaluates. Muting never
// deletes overrides, so clearing MuteUntil returns the membership to whatever
// cascade result applied before.
func IsMuted(m models.GroupMembership, now time.Time) bool {
	return m.MuteUntil != nil && m.MuteUntil.After(now)
}

// copyStrings returns a fresh slice so callers can never mutate a stored
// default through the resolved result.
func copyStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
