package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/devlink-app/devlink/internal/domain"
)

// PreferencesKV is the slice of the redis client the service needs.
type PreferencesKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// PreferencesService keeps per-user display settings in redis. A user
// with no stored settings gets the defaults.
type PreferencesService struct {
	rdb PreferencesKV
}

func NewPreferencesService(rdb PreferencesKV) *PreferencesService {
	return &PreferencesService{
		rdb: rdb,
	}
}

func preferencesKey(userID string) string {
	return "preferences:" + userID
}

func (s *PreferencesService) Get(ctx context.Context, userID string) (domain.DisplayPreferences, error) {
	raw, err := s.rdb.Get(ctx, preferencesKey(userID)).Result()
	if err == redis.Nil {
		return domain.DefaultDisplayPreferences(), nil
	}
	if err != nil {
		return domain.DisplayPreferences{}, errors.Wrap(err, "PreferencesService.Get: redis get failed")
	}

	var prefs domain.DisplayPreferences
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		return domain.DisplayPreferences{}, errors.Wrap(err, "PreferencesService.Get: decode failed")
	}
	return prefs, nil
}

func (s *PreferencesService) Set(ctx context.Context, userID string, prefs domain.DisplayPreferences) error {
	switch prefs.FontScale {
	case domain.FontScaleNormal, domain.FontScaleLarge, domain.FontScaleXLarge:
	default:
		return domain.ValidationError{Reason: "invalid font scale"}
	}

	raw, err := json.Marshal(prefs)
	if err != nil {
		return errors.Wrap(err, "PreferencesService.Set: encode failed")
	}

	if err := s.rdb.Set(ctx, preferencesKey(userID), raw, 0).Err(); err != nil {
		return errors.Wrap(err, "PreferencesService.Set: redis set failed")
	}
	return nil
}
