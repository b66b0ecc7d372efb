package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	pkgerrors "github.com/pkg/errors"

	devlink "github.com/devlink-app/devlink"
	"github.com/devlink-app/devlink/internal/domain"
	"github.com/devlink-app/devlink/store"
)

type FollowUsecase struct {
	store   store.Store
	follows FollowGraph
	signal  Signal
}

func NewFollowUsecase(s store.Store, follows FollowGraph, signal Signal) *FollowUsecase {
	return &FollowUsecase{store: s, follows: follows, signal: signal}
}

func (uc *FollowUsecase) Follow(ctx context.Context, followerID, followeeID string) error {
	if followerID == followeeID {
		return domain.ValidationError{Reason: "cannot follow yourself"}
	}

	if _, err := uc.store.GetByID(ctx, store.CollectionUsers, followeeID); err != nil {
		return err
	}

	edge := domain.FollowEdge{
		ID:         domain.FollowEdgeID(followerID, followeeID),
		FollowerID: followerID,
		FolloweeID: followeeID,
		CreatedAt:  devlink.InstantOf(time.Now()),
	}

	// Adding an existing edge is a no-op; the id is the pair.
	if err := uc.store.Add(ctx, store.CollectionFollows, edge.ID, edge); err != nil {
		return pkgerrors.Wrap(err, "FollowUsecase.Follow: store add failed")
	}

	uc.follows.Invalidate(followerID)

	if uc.signal != nil {
		event := devlink.NewEvent(devlink.EventTypeFollow, followeeID, followerID, "", nil)
		if err := uc.signal.Publish(ctx, devlink.EventChannel(followeeID), event); err != nil {
			slog.WarnContext(
				ctx, "event publish failed",
				slog.String("error", err.Error()),
				slog.String("module", "follow"),
			)
		}
	}
	return nil
}

func (uc *FollowUsecase) Unfollow(ctx context.Context, followerID, followeeID string) error {
	err := uc.store.Delete(ctx, store.CollectionFollows, domain.FollowEdgeID(followerID, followeeID))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return pkgerrors.Wrap(err, "FollowUsecase.Unfollow: store delete failed")
	}
	uc.follows.Invalidate(followerID)
	return nil
}

func (uc *FollowUsecase) Following(ctx context.Context, userID string) ([]string, error) {
	return uc.follows.GetFollowees(ctx, userID)
}

func (uc *FollowUsecase) Followers(ctx context.Context, userID string) ([]string, error) {
	return uc.follows.GetFollowers(ctx, userID)
}
