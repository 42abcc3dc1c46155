package domain

import (
	"fmt"
	"time"
)

// MeetingRequest carries the generic scheduling parameters; each provider
// handler translates them into that provider's payload.
type MeetingRequest struct {
	Topic           string    `json:"topic"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Timezone        string    `json:"timezone,omitempty"`
}

// Validate checks the request before any network call is attempted.
func (r *MeetingRequest) Validate() error {
	if r.Topic == "" {
		return fmt.Errorf("%w: topic is required", ErrInvalidInput)
	}
	if r.StartTime.IsZero() {
		return fmt.Errorf("%w: start_time is required", ErrInvalidInput)
	}
	if r.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration_minutes must be positive", ErrInvalidInput)
	}
	return nil
}

// EndTime derives the meeting end from start and duration, for providers
// that want an explicit end instead of a duration.
func (r *MeetingRequest) EndTime() time.Time {
	return r.StartTime.Add(time.Duration(r.DurationMinutes) * time.Minute)
}

// Meeting is the normalized result of provisioning a meeting.
// JoinURL is always usable; a provider response without one is an error,
// never a partial success.
type Meeting struct {
	JoinURL           string   `json:"join_url"`
	ExternalMeetingID string   `json:"external_meeting_id"`
	Provider          Provider `json:"provider"`
}
