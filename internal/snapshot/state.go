package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"huddle/internal/identity"
	"huddle/internal/message"
)

// State is the single durable record: the full identity map and the full
// message list, reloaded verbatim on startup.
type State struct {
	Accounts map[string]AccountRecord `json:"accounts"`
	Messages []MessageRecord          `json:"messages"`
}

type AccountRecord struct {
	Credential string   `json:"credential,omitempty"`
	Friends    []string `json:"friends"`
	Incoming   []string `json:"incoming"`
	Outgoing   []string `json:"outgoing"`
}

type MessageRecord struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

func encodeState(accounts map[string]identity.Account, messages []message.Message) ([]byte, error) {
	state := State{
		Accounts: make(map[string]AccountRecord, len(accounts)),
		Messages: make([]MessageRecord, 0, len(messages)),
	}
	for username, acc := range accounts {
		state.Accounts[username] = AccountRecord{
			Credential: acc.Credential,
			Friends:    acc.Friends.Sorted(),
			Incoming:   acc.Incoming.Sorted(),
			Outgoing:   acc.Outgoing.Sorted(),
		}
	}
	for _, m := range messages {
		state.Messages = append(state.Messages, MessageRecord{
			ID:        m.ID,
			Sender:    m.Sender,
			Recipient: m.Recipient,
			Text:      m.Text,
			CreatedAt: m.CreatedAt,
		})
	}
	return json.Marshal(state)
}

func decodeState(raw []byte) (map[string]identity.Account, []message.Message, error) {
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, nil, fmt.Errorf("decode snapshot: %w", err)
	}
	accounts := make(map[string]identity.Account, len(state.Accounts))
	for username, rec := range state.Accounts {
		accounts[username] = identity.Account{
			Username:   username,
			Credential: rec.Credential,
			Friends:    identity.SetOf(rec.Friends),
			Incoming:   identity.SetOf(rec.Incoming),
			Outgoing:   identity.SetOf(rec.Outgoing),
		}
	}
	messages := make([]message.Message, 0, len(state.Messages))
	for _, rec := range state.Messages {
		messages = append(messages, message.Message{
			ID:        rec.ID,
			Sender:    rec.Sender,
			Recipient: rec.Recipient,
			Text:      rec.Text,
			CreatedAt: rec.CreatedAt,
		})
	}
	return accounts, messages, nil
}
