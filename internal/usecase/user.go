package usecase

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/devlink-app/devlink/internal/domain"
	"github.com/devlink-app/devlink/store"
)

// ProfileInput is the editable subset of a user document.
type ProfileInput struct {
	Name           string `json:"name"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profilePicture"`
}

type UserUsecase struct {
	store    store.Store
	profiles ProfileResolver
}

func NewUserUsecase(s store.Store, profiles ProfileResolver) *UserUsecase {
	return &UserUsecase{store: s, profiles: profiles}
}

func (uc *UserUsecase) Get(ctx context.Context, userID string) (domain.User, error) {
	doc, err := uc.store.GetByID(ctx, store.CollectionUsers, userID)
	if err != nil {
		return domain.User{}, err
	}

	user, err := store.Decode[domain.User](doc)
	if err != nil {
		return domain.User{}, errors.Wrap(err, "UserUsecase.Get: decode failed")
	}
	return user.Public(), nil
}

func (uc *UserUsecase) Update(ctx context.Context, requesterID string, input ProfileInput) (domain.User, error) {
	doc, err := uc.store.GetByID(ctx, store.CollectionUsers, requesterID)
	if err != nil {
		return domain.User{}, err
	}

	user, err := store.Decode[domain.User](doc)
	if err != nil {
		return domain.User{}, errors.Wrap(err, "UserUsecase.Update: decode failed")
	}

	user.Name = strings.TrimSpace(input.Name)
	user.Bio = input.Bio
	user.ProfilePicture = input.ProfilePicture

	if err := uc.store.Update(ctx, store.CollectionUsers, user.ID, user); err != nil {
		return domain.User{}, errors.Wrap(err, "UserUsecase.Update: store update failed")
	}

	uc.profiles.Invalidate(user.ID)
	return user.Public(), nil
}
