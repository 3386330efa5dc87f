package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType defines the type of real-time event.
type EventType string

const (
	EventCommentAdded   EventType = "COMMENT_ADDED"
	EventCommentUpdated EventType = "COMMENT_UPDATED"
	EventCommentDeleted EventType = "COMMENT_DELETED"
	EventStatusUpdated  EventType = "STATUS_UPDATED"
	EventTicketAssigned EventType = "TICKET_ASSIGNED"
)

// Event is the payload sent over WebSocket.
type Event struct {
	Type     EventType   `json:"type"`
	Payload  interface{} `json:"payload"`
	TicketID int64       `json:"ticketId"` // Used for routing to specific ticket "rooms"
}

// TicketEvent is the persisted record of something happening on a ticket.
// The timeline doubles as the catch-up feed for clients that reconnect to
// the realtime channel.
type TicketEvent struct {
	ID        int64           `json:"id"`
	TicketID  int64           `json:"ticketId"`
	Type      EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	ActorID   uuid.UUID       `json:"actorId"`
	CreatedAt time.Time       `json:"createdAt"`
}
