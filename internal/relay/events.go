// Package relay delivers real-time events to live sessions on a strictly
// best-effort basis. Presence is volatile, so an offline recipient means the
// event is dropped, never queued.
package relay

import "time"

// Kind tags an event for the session wire envelope.
type Kind string

const (
	KindFriendRequest  Kind = "friendRequest"
	KindFriendUpdate   Kind = "friendUpdate"
	KindFriendAccepted Kind = "friendAccepted"
	KindChatMessage    Kind = "chatMessage"
	KindIncomingCall   Kind = "incomingCall"
	KindCallAnswered   Kind = "callAnswered"
)

// Event pairs a kind with its typed payload. Payloads are one of the
// *Event structs below; each carries exactly the fields its kind needs.
type Event struct {
	Kind    Kind `json:"event"`
	Payload any  `json:"data"`
}

type FriendRequestEvent struct {
	From string `json:"from"`
}

type FriendUpdateEvent struct {
	User string `json:"user"`
}

type FriendAcceptedEvent struct {
	From string `json:"from"`
}

type ChatMessageEvent struct {
	From string    `json:"from"`
	Text string    `json:"text"`
	Time time.Time `json:"time"`
}

type IncomingCallEvent struct {
	From     string `json:"from"`
	RoomName string `json:"roomName"`
}

type CallAnsweredEvent struct {
	From     string `json:"from"`
	RoomName string `json:"roomName"`
	Accepted bool   `json:"accepted"`
}
