package usecase

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/devlink-app/devlink/internal/domain"
	"github.com/devlink-app/devlink/store"
)

// FeedUsecase builds the personalized feed: public projects authored by
// the users the requester follows, enriched with author identity and
// engagement counts. Unlike the activity timeline, failures here are not
// recovered; the caller renders an error state.
type FeedUsecase struct {
	store    store.Store
	follows  FollowGraph
	profiles ProfileResolver
}

func NewFeedUsecase(s store.Store, follows FollowGraph, profiles ProfileResolver) *FeedUsecase {
	return &FeedUsecase{
		store:    s,
		follows:  follows,
		profiles: profiles,
	}
}

func (uc *FeedUsecase) BuildFeed(ctx context.Context, userID string) ([]domain.ProjectSummary, error) {

	followees, err := uc.follows.GetFollowees(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "FeedUsecase.BuildFeed: resolve followees failed")
	}

	if len(followees) == 0 {
		return []domain.ProjectSummary{}, nil
	}

	// The membership filter cannot be combined with an equality filter or
	// a sort order across chunks, so visibility is filtered and recency
	// sorted locally after the chunked fetch.
	docs, err := store.QueryInChunks(ctx, uc.store, store.CollectionProjects, "userId", followees)
	if err != nil {
		return nil, errors.Wrap(err, "FeedUsecase.BuildFeed: project query failed")
	}

	var projects []domain.Project
	for _, project := range store.DecodeAll[domain.Project](docs) {
		if project.Visibility == domain.VisibilityPublic {
			projects = append(projects, project)
		}
	}

	summaries, err := uc.summarize(ctx, projects)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt > summaries[j].CreatedAt
	})

	return summaries, nil
}

// Catalog lists every public project, newest first.
func (uc *FeedUsecase) Catalog(ctx context.Context) ([]domain.ProjectSummary, error) {
	docs, err := uc.store.QueryByEquality(ctx, store.CollectionProjects, "visibility", domain.VisibilityPublic)
	if err != nil {
		return nil, errors.Wrap(err, "FeedUsecase.Catalog: project query failed")
	}

	summaries, err := uc.summarize(ctx, store.DecodeAll[domain.Project](docs))
	if err != nil {
		return nil, err
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt > summaries[j].CreatedAt
	})

	return summaries, nil
}

func (uc *FeedUsecase) summarize(ctx context.Context, projects []domain.Project) ([]domain.ProjectSummary, error) {
	counts, err := uc.commentCounts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "FeedUsecase: comment count scan failed")
	}

	summaries := make([]domain.ProjectSummary, 0, len(projects))
	for _, project := range projects {
		summary := domain.ProjectSummary{
			Project:      project,
			LikeCount:    len(project.Likes),
			CommentCount: counts[project.ID],
		}

		profile, err := uc.profiles.Resolve(ctx, project.UserID)
		if err != nil || profile.Name == "" {
			summary.AuthorName = domain.UnknownAuthorName
		} else {
			summary.AuthorName = profile.Name
			summary.AuthorProfilePicture = profile.ProfilePicture
		}

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// commentCounts scans the whole comments collection and counts per
// project. The store cannot aggregate server-side; the collection is
// assumed bounded, which keeps the scan acceptable.
func (uc *FeedUsecase) commentCounts(ctx context.Context) (map[string]int, error) {
	docs, err := uc.store.ListAll(ctx, store.CollectionComments)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, comment := range store.DecodeAll[domain.Comment](docs) {
		counts[comment.ProjectID]++
	}
	return counts, nil
}
