package session

import "encoding/json"

// ChatMessage is one entry of the session chat log. The host mints the ID
// when it accepts the message, so every participant converges on the same
// identity for the same message.
type ChatMessage struct {
	ID      string          `json:"id"`
	Sender  string          `json:"sender"`
	Payload json.RawMessage `json:"payload"`
}

// MergeChat folds a batch into an existing log, keeping the first message
// seen for each ID. Known messages keep their position, new ones append in
// batch order, so replaying the same sync is a no-op.
func MergeChat(log, batch []ChatMessage) []ChatMessage {
	seen := make(map[string]struct{}, len(log))
	for _, m := range log {
		seen[m.ID] = struct{}{}
	}
	out := log
	for _, m := range batch {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}
