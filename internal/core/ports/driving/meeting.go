package driving

import (
	"context"

	"github.com/nimbus-labs/meetlink-core/internal/core/domain"
)

// MeetingService provisions meetings through a user's stored connection,
// refreshing the access token lazily when it has expired.
type MeetingService interface {
	CreateMeeting(ctx context.Context, userID string, provider string, req domain.MeetingRequest) (*domain.Meeting, error)
}
