package message

import "time"

// Message is an immutable chat message between two identities. Seq is an
// insertion-order tiebreaker for messages created at the same instant; it is
// reassigned on import and never exposed on the wire.
type Message struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`

	seq uint64
}

// ContactSummary is one row in a user's contact list: every friend plus
// every past correspondent, with conversation preview data.
type ContactSummary struct {
	ID                 string     `json:"id"`
	DisplayName        string     `json:"displayName"`
	LastMessagePreview string     `json:"lastMessagePreview,omitempty"`
	LastMessageAt      *time.Time `json:"lastMessageAt,omitempty"`
	UnreadCount        int        `json:"unreadCount"`
}
