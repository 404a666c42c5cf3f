package ws

import (
	"encoding/json"
	"time"
)

// envelope is the wire frame in both directions: a kind tag plus a payload
// decoded per kind, validated once at this boundary.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Client -> server event kinds.
const (
	eventRegister    = "register"
	eventChatMessage = "chatMessage"
	eventCallUser    = "callUser"
	eventAnswerCall  = "answerCall"
)

type registerPayload struct {
	Username string `json:"username"`
}

type chatMessagePayload struct {
	From string    `json:"from"`
	To   string    `json:"to"`
	Text string    `json:"text"`
	Time time.Time `json:"time"`
}

type callUserPayload struct {
	From     string `json:"from"`
	To       string `json:"to"`
	RoomName string `json:"roomName"`
}

type answerCallPayload struct {
	From     string `json:"from"`
	To       string `json:"to"`
	RoomName string `json:"roomName"`
	Accepted bool   `json:"accepted"`
}
