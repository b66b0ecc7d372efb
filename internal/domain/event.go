package domain

import (
	devlink "github.com/devlink-app/devlink"
)

// EventKind discriminates activity timeline entries.
type EventKind string

const (
	EventProjectCreated  EventKind = "project_created"
	EventCommentReceived EventKind = "comment_received"
	EventLikesReceived   EventKind = "likes_received"
)

// EventRecord is one entry of a user's activity timeline. Records are
// synthesized at aggregation time from the underlying documents and are
// never persisted. OccurredAt is derived once from the source document's
// own timestamp; a missing timestamp stays at epoch 0 and sorts last.
type EventRecord struct {
	ID         string          `json:"id"`
	Kind       EventKind       `json:"kind"`
	OccurredAt devlink.Instant `json:"occurredAt"`
	Payload    any             `json:"payload"`
}

// EventID derives the per-pass unique id for an event record.
func EventID(kind EventKind, sourceID string) string {
	return string(kind) + "-" + sourceID
}

// ProjectCreatedPayload accompanies EventProjectCreated.
type ProjectCreatedPayload struct {
	ProjectID  string `json:"projectId"`
	Title      string `json:"title"`
	Visibility string `json:"visibility"`
}

// CommentReceivedPayload accompanies EventCommentReceived.
type CommentReceivedPayload struct {
	ProjectID     string `json:"projectId"`
	CommenterName string `json:"commenterName"`
	Content       string `json:"content"`
}

// LikesReceivedPayload accompanies EventLikesReceived. It carries the
// aggregate like count of one project, not individual like actions; likes
// are stored as a bare id list with no per-like timestamp.
type LikesReceivedPayload struct {
	ProjectID string `json:"projectId"`
	Title     string `json:"title"`
	LikeCount int    `json:"likeCount"`
}
