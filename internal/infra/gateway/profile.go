package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/devlink-app/devlink/internal/domain"
	"github.com/devlink-app/devlink/internal/usecase"
	"github.com/devlink-app/devlink/store"
)

const profileCacheTTL = 10 * time.Minute

// ProfileGateway resolves user identities for feed and comment rendering,
// caching resolved profiles in memcached. Resolution failures surface to
// the caller; fallback naming is the aggregator's concern.
type ProfileGateway struct {
	store store.Store
	mc    *memcache.Client
}

func NewProfileGateway(s store.Store, mc *memcache.Client) *ProfileGateway {
	return &ProfileGateway{store: s, mc: mc}
}

func (g *ProfileGateway) Resolve(ctx context.Context, userID string) (domain.Profile, error) {
	cacheKey := "profile:" + userID

	if g.mc != nil {
		if item, err := g.mc.Get(cacheKey); err == nil {
			var profile domain.Profile
			if err := json.Unmarshal(item.Value, &profile); err == nil {
				return profile, nil
			}
		}
	}

	doc, err := g.store.GetByID(ctx, store.CollectionUsers, userID)
	if err != nil {
		return domain.Profile{}, err
	}

	user, err := store.Decode[domain.User](doc)
	if err != nil {
		return domain.Profile{}, err
	}

	profile := domain.Profile{
		Name:           user.DisplayName(),
		ProfilePicture: user.ProfilePicture,
	}

	if g.mc != nil {
		if serialized, err := json.Marshal(profile); err == nil {
			g.mc.Set(&memcache.Item{
				Key:        cacheKey,
				Value:      serialized,
				Expiration: int32(profileCacheTTL.Seconds()),
			})
		}
	}

	return profile, nil
}

// Invalidate drops a cached profile after a profile update.
func (g *ProfileGateway) Invalidate(userID string) {
	if g.mc != nil {
		g.mc.Delete("profile:" + userID)
	}
}

var _ usecase.ProfileResolver = (*ProfileGateway)(nil)
