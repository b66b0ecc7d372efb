package usecase

import (
	"context"
	"log/slog"
	"sort"

	"github.com/devlink-app/devlink/internal/domain"
	"github.com/devlink-app/devlink/store"
)

// ActivityUsecase builds the recency-ordered activity timeline of one
// user: projects they created, comments received from others, and likes
// received. Records are synthesized on every call and never persisted.
type ActivityUsecase struct {
	store store.Store
}

func NewActivityUsecase(s store.Store) *ActivityUsecase {
	return &ActivityUsecase{store: s}
}

// BuildActivity never fails: each fetch phase is isolated, a failing
// phase is logged and contributes zero events, and the remaining phases
// still appear. The result is sorted descending by occurrence (stable
// for ties, missing timestamps last) and truncated to the display budget.
func (uc *ActivityUsecase) BuildActivity(ctx context.Context, userID string) []domain.EventRecord {

	projects := uc.ownProjects(ctx, userID)

	events := make([]domain.EventRecord, 0, len(projects))
	for _, project := range projects {
		events = append(events, domain.EventRecord{
			ID:         domain.EventID(domain.EventProjectCreated, project.ID),
			Kind:       domain.EventProjectCreated,
			OccurredAt: project.CreatedAt,
			Payload: domain.ProjectCreatedPayload{
				ProjectID:  project.ID,
				Title:      project.Title,
				Visibility: project.Visibility,
			},
		})
	}

	events = append(events, uc.commentEvents(ctx, userID, projects)...)
	events = append(events, likeEvents(projects)...)

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].OccurredAt > events[j].OccurredAt
	})

	if len(events) > domain.ActivityLimit {
		events = events[:domain.ActivityLimit]
	}

	return events
}

func (uc *ActivityUsecase) ownProjects(ctx context.Context, userID string) []domain.Project {
	docs, err := uc.store.QueryByEquality(ctx, store.CollectionProjects, "userId", userID)
	if err != nil {
		slog.WarnContext(
			ctx, "activity: project phase failed",
			slog.String("error", err.Error()),
			slog.String("module", "activity"),
		)
		return nil
	}
	return store.DecodeAll[domain.Project](docs)
}

// commentEvents scans the whole comments collection because the store
// cannot filter on a joined field (the project's owner). Comments on the
// user's own projects by other users become events; a user commenting on
// their own project is not activity.
func (uc *ActivityUsecase) commentEvents(ctx context.Context, userID string, projects []domain.Project) []domain.EventRecord {
	if len(projects) == 0 {
		return nil
	}

	docs, err := uc.store.ListAll(ctx, store.CollectionComments)
	if err != nil {
		slog.WarnContext(
			ctx, "activity: comment phase failed",
			slog.String("error", err.Error()),
			slog.String("module", "activity"),
		)
		return nil
	}

	owned := make(map[string]bool, len(projects))
	for _, project := range projects {
		owned[project.ID] = true
	}

	var received []domain.Comment
	for _, comment := range store.DecodeAll[domain.Comment](docs) {
		if owned[comment.ProjectID] && comment.UserID != userID {
			received = append(received, comment)
		}
	}

	sort.SliceStable(received, func(i, j int) bool {
		return received[i].CreatedAt > received[j].CreatedAt
	})
	if len(received) > domain.ActivityCommentLimit {
		received = received[:domain.ActivityCommentLimit]
	}

	events := make([]domain.EventRecord, 0, len(received))
	for _, comment := range received {
		events = append(events, domain.EventRecord{
			ID:         domain.EventID(domain.EventCommentReceived, comment.ID),
			Kind:       domain.EventCommentReceived,
			OccurredAt: comment.CreatedAt,
			Payload: domain.CommentReceivedPayload{
				ProjectID:     comment.ProjectID,
				CommenterName: uc.commenterName(ctx, comment.UserID),
				Content:       comment.Content,
			},
		})
	}
	return events
}

func (uc *ActivityUsecase) commenterName(ctx context.Context, userID string) string {
	doc, err := uc.store.GetByID(ctx, store.CollectionUsers, userID)
	if err != nil {
		return domain.UnknownUserName
	}
	user, err := store.Decode[domain.User](doc)
	if err != nil || user.DisplayName() == "" {
		return domain.UnknownUserName
	}
	return user.DisplayName()
}

// likeEvents emits one event per project carrying the aggregate like
// count. Likes have no timestamps of their own, so the event is stamped
// with the project's updatedAt, falling back to createdAt.
func likeEvents(projects []domain.Project) []domain.EventRecord {
	var events []domain.EventRecord
	for _, project := range projects {
		if len(project.Likes) == 0 {
			continue
		}

		occurredAt := project.UpdatedAt
		if occurredAt.IsZero() {
			occurredAt = project.CreatedAt
		}

		events = append(events, domain.EventRecord{
			ID:         domain.EventID(domain.EventLikesReceived, project.ID),
			Kind:       domain.EventLikesReceived,
			OccurredAt: occurredAt,
			Payload: domain.LikesReceivedPayload{
				ProjectID: project.ID,
				Title:     project.Title,
				LikeCount: len(project.Likes),
			},
		})
	}
	return events
}
