package usecase

import (
	"context"
	"io"

	devlink "github.com/devlink-app/devlink"
	"github.com/devlink-app/devlink/internal/domain"
)

// FollowGraph resolves the follow graph.
type FollowGraph interface {
	GetFollowees(ctx context.Context, userID string) ([]string, error)
	GetFollowers(ctx context.Context, userID string) ([]string, error)
	// Invalidate drops any cached followee set for userID.
	Invalidate(userID string)
}

// ProfileResolver resolves a user id into a displayable identity.
type ProfileResolver interface {
	Resolve(ctx context.Context, userID string) (domain.Profile, error)
	Invalidate(userID string)
}

// ObjectStorage stores uploaded media.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Signal publishes realtime events to a user's channel.
type Signal interface {
	Publish(ctx context.Context, channel string, event devlink.Event) error
}
