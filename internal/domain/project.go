package domain

import (
	devlink "github.com/devlink-app/devlink"
)

const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Project represents a shared development project. Likes are stored as a
// bare member list on the document itself; there is no per-like timestamp.
type Project struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	Visibility  string          `json:"visibility"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Likes       []string        `json:"likes,omitempty"`
	CreatedAt   devlink.Instant `json:"createdAt"`
	UpdatedAt   devlink.Instant `json:"updatedAt,omitempty"`
}

// LikedBy reports whether userID is in the like member list.
func (p Project) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// Comment represents one comment on a project.
type Comment struct {
	ID        string          `json:"id"`
	ProjectID string          `json:"projectId"`
	UserID    string          `json:"userId"`
	Content   string          `json:"content"`
	CreatedAt devlink.Instant `json:"createdAt"`
}

// CommentView is a comment enriched with the resolved commenter identity.
type CommentView struct {
	Comment
	AuthorName           string `json:"authorName"`
	AuthorProfilePicture string `json:"authorProfilePicture,omitempty"`
}

// FollowEdge is one "follower follows followee" edge, keyed by the pair.
type FollowEdge struct {
	ID         string          `json:"id"`
	FollowerID string          `json:"followerId"`
	FolloweeID string          `json:"followeeId"`
	CreatedAt  devlink.Instant `json:"createdAt"`
}

// FollowEdgeID derives the document id for a follow edge.
func FollowEdgeID(followerID, followeeID string) string {
	return followerID + "_" + followeeID
}

// ProjectSummary is the read projection served by the catalog and feed:
// a project enriched with author identity and engagement counts. Summaries
// are rebuilt on every call and never persisted.
type ProjectSummary struct {
	Project
	AuthorName           string `json:"authorName"`
	AuthorProfilePicture string `json:"authorProfilePicture,omitempty"`
	LikeCount            int    `json:"likeCount"`
	CommentCount         int    `json:"commentCount"`
}
