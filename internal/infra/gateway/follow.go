package gateway

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/devlink-app/devlink/internal/domain"
	"github.com/devlink-app/devlink/internal/usecase"
	"github.com/devlink-app/devlink/store"
)

// FollowGateway resolves the follow graph from the follows collection.
// Followee sets are cached briefly; mutations invalidate the entry.
type FollowGateway struct {
	store store.Store
	cache *cache.Cache
}

func NewFollowGateway(s store.Store) *FollowGateway {
	return &FollowGateway{
		store: s,
		cache: cache.New(1*time.Minute, 5*time.Minute),
	}
}

func (g *FollowGateway) GetFollowees(ctx context.Context, userID string) ([]string, error) {
	cacheKey := "followees:" + userID
	if cached, found := g.cache.Get(cacheKey); found {
		return cached.([]string), nil
	}

	docs, err := g.store.QueryByEquality(ctx, store.CollectionFollows, "followerId", userID)
	if err != nil {
		return nil, err
	}

	followees := make([]string, 0, len(docs))
	for _, edge := range store.DecodeAll[domain.FollowEdge](docs) {
		followees = append(followees, edge.FolloweeID)
	}

	g.cache.Set(cacheKey, followees, cache.DefaultExpiration)
	return followees, nil
}

func (g *FollowGateway) GetFollowers(ctx context.Context, userID string) ([]string, error) {
	docs, err := g.store.QueryByEquality(ctx, store.CollectionFollows, "followeeId", userID)
	if err != nil {
		return nil, err
	}

	followers := make([]string, 0, len(docs))
	for _, edge := range store.DecodeAll[domain.FollowEdge](docs) {
		followers = append(followers, edge.FollowerID)
	}
	return followers, nil
}

// Invalidate drops the cached followee set after a follow/unfollow.
func (g *FollowGateway) Invalidate(userID string) {
	g.cache.Delete("followees:" + userID)
}

var _ usecase.FollowGraph = (*FollowGateway)(nil)
