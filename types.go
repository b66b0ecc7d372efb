package devlink

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeLike    = "like"
	EventTypeComment = "comment"
	EventTypeFollow  = "follow"
)

// Event is a realtime notification pushed over the signal channel when
// someone interacts with a user's content.
type Event struct {
	Type      string  `json:"type"`
	Recipient string  `json:"recipient"`
	ActorID   string  `json:"actorId"`
	ProjectID string  `json:"projectId,omitempty"`
	Body      any     `json:"body,omitempty"`
	Timestamp Instant `json:"timestamp"`
}

// NewEvent stamps an event with the current instant.
func NewEvent(eventType, recipient, actorID, projectID string, body any) Event {
	return Event{
		Type:      eventType,
		Recipient: recipient,
		ActorID:   actorID,
		ProjectID: projectID,
		Body:      body,
		Timestamp: InstantOf(time.Now()),
	}
}

// EventChannel is the signal channel name carrying events for one user.
func EventChannel(userID string) string {
	return "events:" + userID
}

// NewID generates a document id.
func NewID() string {
	return uuid.New().String()
}
