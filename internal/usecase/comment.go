package usecase

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	devlink "github.com/devlink-app/devlink"
	"github.com/devlink-app/devlink/internal/domain"
	"github.com/devlink-app/devlink/store"
)

type CommentUsecase struct {
	store    store.Store
	profiles ProfileResolver
	signal   Signal
}

func NewCommentUsecase(s store.Store, profiles ProfileResolver, signal Signal) *CommentUsecase {
	return &CommentUsecase{store: s, profiles: profiles, signal: signal}
}

func (uc *CommentUsecase) Add(ctx context.Context, requesterID, projectID, content string) (domain.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return domain.Comment{}, domain.ValidationError{Field: "content", Reason: "must not be empty"}
	}

	projectDoc, err := uc.store.GetByID(ctx, store.CollectionProjects, projectID)
	if err != nil {
		return domain.Comment{}, err
	}
	project, err := store.Decode[domain.Project](projectDoc)
	if err != nil {
		return domain.Comment{}, errors.Wrap(err, "CommentUsecase.Add: project decode failed")
	}

	comment := domain.Comment{
		ID:        devlink.NewID(),
		ProjectID: projectID,
		UserID:    requesterID,
		Content:   strings.TrimSpace(content),
		CreatedAt: devlink.InstantOf(time.Now()),
	}

	if err := uc.store.Add(ctx, store.CollectionComments, comment.ID, comment); err != nil {
		return domain.Comment{}, errors.Wrap(err, "CommentUsecase.Add: store add failed")
	}

	uc.notify(ctx, devlink.NewEvent(devlink.EventTypeComment, project.UserID, requesterID, projectID, comment.Content))
	return comment, nil
}

// ListByProject returns a project's comments oldest first, each enriched
// with the resolved commenter identity.
func (uc *CommentUsecase) ListByProject(ctx context.Context, projectID string) ([]domain.CommentView, error) {
	docs, err := uc.store.QueryByEquality(ctx, store.CollectionComments, "projectId", projectID)
	if err != nil {
		return nil, errors.Wrap(err, "CommentUsecase.ListByProject: query failed")
	}

	comments := store.DecodeAll[domain.Comment](docs)
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt < comments[j].CreatedAt
	})

	views := make([]domain.CommentView, 0, len(comments))
	for _, comment := range comments {
		view := domain.CommentView{Comment: comment}

		profile, err := uc.profiles.Resolve(ctx, comment.UserID)
		if err != nil || profile.Name == "" {
			view.AuthorName = domain.UnknownUserName
		} else {
			view.AuthorName = profile.Name
			view.AuthorProfilePicture = profile.ProfilePicture
		}

		views = append(views, view)
	}
	return views, nil
}

// Delete removes a comment. Allowed for the comment author and for the
// owner of the commented project.
func (uc *CommentUsecase) Delete(ctx context.Context, requesterID, commentID string) error {
	doc, err := uc.store.GetByID(ctx, store.CollectionComments, commentID)
	if err != nil {
		return err
	}
	comment, err := store.Decode[domain.Comment](doc)
	if err != nil {
		return errors.Wrap(err, "CommentUsecase.Delete: decode failed")
	}

	if comment.UserID != requesterID {
		projectDoc, err := uc.store.GetByID(ctx, store.CollectionProjects, comment.ProjectID)
		if err != nil {
			return domain.ForbiddenError{Reason: "only the author or project owner can delete a comment"}
		}
		project, err := store.Decode[domain.Project](projectDoc)
		if err != nil || project.UserID != requesterID {
			return domain.ForbiddenError{Reason: "only the author or project owner can delete a comment"}
		}
	}

	return uc.store.Delete(ctx, store.CollectionComments, commentID)
}

func (uc *CommentUsecase) notify(ctx context.Context, event devlink.Event) {
	if uc.signal == nil || event.Recipient == event.ActorID {
		return
	}
	if err := uc.signal.Publish(ctx, devlink.EventChannel(event.Recipient), event); err != nil {
		slog.WarnContext(
			ctx, "event publish failed",
			slog.String("error", err.Error()),
			slog.String("module", "comment"),
		)
	}
}
