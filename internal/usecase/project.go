package usecase

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	devlink "github.com/devlink-app/devlink"
	"github.com/devlink-app/devlink/internal/domain"
	"github.com/devlink-app/devlink/store"
)

// ProjectInput is the validated input for creating or updating a project.
type ProjectInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Visibility  string   `json:"visibility"`
}

func (in ProjectInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return domain.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	switch in.Visibility {
	case domain.VisibilityPublic, domain.VisibilityPrivate:
		return nil
	default:
		return domain.ValidationError{Field: "visibility", Reason: "must be public or private"}
	}
}

type ProjectUsecase struct {
	store   store.Store
	storage ObjectStorage
	signal  Signal
}

func NewProjectUsecase(s store.Store, storage ObjectStorage, signal Signal) *ProjectUsecase {
	return &ProjectUsecase{store: s, storage: storage, signal: signal}
}

func (uc *ProjectUsecase) Create(ctx context.Context, ownerID string, input ProjectInput) (domain.Project, error) {
	if err := input.validate(); err != nil {
		return domain.Project{}, err
	}

	project := domain.Project{
		ID:          devlink.NewID(),
		UserID:      ownerID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Tags:        input.Tags,
		Visibility:  input.Visibility,
		CreatedAt:   devlink.InstantOf(time.Now()),
	}

	if err := uc.store.Add(ctx, store.CollectionProjects, project.ID, project); err != nil {
		return domain.Project{}, errors.Wrap(err, "ProjectUsecase.Create: store add failed")
	}
	return project, nil
}

// Get returns a project, hiding private projects from non-owners.
func (uc *ProjectUsecase) Get(ctx context.Context, requesterID, projectID string) (domain.Project, error) {
	project, err := uc.load(ctx, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	if project.Visibility == domain.VisibilityPrivate && project.UserID != requesterID {
		return domain.Project{}, domain.NotFoundError{Resource: "project"}
	}
	return project, nil
}

func (uc *ProjectUsecase) Update(ctx context.Context, requesterID, projectID string, input ProjectInput) (domain.Project, error) {
	if err := input.validate(); err != nil {
		return domain.Project{}, err
	}

	project, err := uc.load(ctx, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	if project.UserID != requesterID {
		return domain.Project{}, domain.ForbiddenError{Reason: "only the owner can edit a project"}
	}

	project.Title = strings.TrimSpace(input.Title)
	project.Description = input.Description
	project.Tags = input.Tags
	project.Visibility = input.Visibility
	project.UpdatedAt = devlink.InstantOf(time.Now())

	if err := uc.store.Update(ctx, store.CollectionProjects, project.ID, project); err != nil {
		return domain.Project{}, errors.Wrap(err, "ProjectUsecase.Update: store update failed")
	}
	return project, nil
}

// Delete removes the project, its comments, and its stored image.
func (uc *ProjectUsecase) Delete(ctx context.Context, requesterID, projectID string) error {
	project, err := uc.load(ctx, projectID)
	if err != nil {
		return err
	}
	if project.UserID != requesterID {
		return domain.ForbiddenError{Reason: "only the owner can delete a project"}
	}

	comments, err := uc.store.QueryByEquality(ctx, store.CollectionComments, "projectId", projectID)
	if err != nil {
		return errors.Wrap(err, "ProjectUsecase.Delete: comment query failed")
	}
	for _, comment := range comments {
		if err := uc.store.Delete(ctx, store.CollectionComments, comment.ID); err != nil {
			return errors.Wrap(err, "ProjectUsecase.Delete: comment delete failed")
		}
	}

	if project.ImageURL != "" && uc.storage != nil {
		if err := uc.storage.Delete(ctx, imageKey(project.ID)); err != nil {
			slog.WarnContext(
				ctx, "project image delete failed",
				slog.String("error", err.Error()),
				slog.String("module", "project"),
			)
		}
	}

	return uc.store.Delete(ctx, store.CollectionProjects, projectID)
}

// ListByUser returns a user's projects newest first. Private projects are
// visible to the owner only.
func (uc *ProjectUsecase) ListByUser(ctx context.Context, requesterID, ownerID string) ([]domain.Project, error) {
	docs, err := uc.store.QueryByEquality(ctx, store.CollectionProjects, "userId", ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "ProjectUsecase.ListByUser: query failed")
	}

	var projects []domain.Project
	for _, project := range store.DecodeAll[domain.Project](docs) {
		if project.Visibility == domain.VisibilityPrivate && requesterID != ownerID {
			continue
		}
		projects = append(projects, project)
	}

	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].CreatedAt > projects[j].CreatedAt
	})
	return projects, nil
}

// Like adds the requester to the project's like member list. Liking twice
// is a no-op. The like bumps updatedAt, which is also what timestamps the
// aggregate likes-received activity event.
func (uc *ProjectUsecase) Like(ctx context.Context, requesterID, projectID string) (domain.Project, error) {
	project, err := uc.load(ctx, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	if project.LikedBy(requesterID) {
		return project, nil
	}

	project.Likes = append(project.Likes, requesterID)
	project.UpdatedAt = devlink.InstantOf(time.Now())

	if err := uc.store.Update(ctx, store.CollectionProjects, project.ID, project); err != nil {
		return domain.Project{}, errors.Wrap(err, "ProjectUsecase.Like: store update failed")
	}

	uc.notify(ctx, devlink.NewEvent(devlink.EventTypeLike, project.UserID, requesterID, project.ID, nil))
	return project, nil
}

func (uc *ProjectUsecase) Unlike(ctx context.Context, requesterID, projectID string) (domain.Project, error) {
	project, err := uc.load(ctx, projectID)
	if err != nil {
		return domain.Project{}, err
	}

	likes := project.Likes[:0:0]
	for _, id := range project.Likes {
		if id != requesterID {
			likes = append(likes, id)
		}
	}
	if len(likes) == len(project.Likes) {
		return project, nil
	}

	project.Likes = likes
	project.UpdatedAt = devlink.InstantOf(time.Now())

	if err := uc.store.Update(ctx, store.CollectionProjects, project.ID, project); err != nil {
		return domain.Project{}, errors.Wrap(err, "ProjectUsecase.Unlike: store update failed")
	}
	return project, nil
}

// AttachImage uploads a project image and records its URL.
func (uc *ProjectUsecase) AttachImage(ctx context.Context, requesterID, projectID string, r io.Reader) (domain.Project, error) {
	project, err := uc.load(ctx, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	if project.UserID != requesterID {
		return domain.Project{}, domain.ForbiddenError{Reason: "only the owner can change the project image"}
	}
	if uc.storage == nil {
		return domain.Project{}, domain.ValidationError{Reason: "media storage is not configured"}
	}

	url, err := uc.storage.Upload(ctx, imageKey(project.ID), r)
	if err != nil {
		return domain.Project{}, errors.Wrap(err, "ProjectUsecase.AttachImage: upload failed")
	}

	project.ImageURL = url
	project.UpdatedAt = devlink.InstantOf(time.Now())

	if err := uc.store.Update(ctx, store.CollectionProjects, project.ID, project); err != nil {
		return domain.Project{}, errors.Wrap(err, "ProjectUsecase.AttachImage: store update failed")
	}
	return project, nil
}

func (uc *ProjectUsecase) load(ctx context.Context, projectID string) (domain.Project, error) {
	doc, err := uc.store.GetByID(ctx, store.CollectionProjects, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	return store.Decode[domain.Project](doc)
}

func (uc *ProjectUsecase) notify(ctx context.Context, event devlink.Event) {
	if uc.signal == nil || event.Recipient == event.ActorID {
		return
	}
	if err := uc.signal.Publish(ctx, devlink.EventChannel(event.Recipient), event); err != nil {
		slog.WarnContext(
			ctx, "event publish failed",
			slog.String("error", err.Error()),
			slog.String("module", "project"),
		)
	}
}

func imageKey(projectID string) string {
	return "projects/" + projectID
}
