package session

import (
	"encoding/json"

	"github.com/louisbranch/parlor.space/internal/engine"
)

// Envelope types. Setup flows request/response between a participant and
// the relay; the rest fan out between participants.
const (
	TypeSetup  = "setup"
	TypeSync   = "sync"
	TypeAction = "action"
	TypeChat   = "chat"
)

// Envelope is the single wire frame all session traffic uses. Fields are
// populated per type: setup responses carry PlayerID and Ctx, syncs carry
// State and ChatMessages, actions carry Args, chat carries Message.
type Envelope struct {
	Type         string          `json:"type"`
	PlayerID     string          `json:"playerID,omitempty"`
	Ctx          *engine.Ctx     `json:"ctx,omitempty"`
	State        json.RawMessage `json:"state,omitempty"`
	ChatMessages []ChatMessage   `json:"chatMessages,omitempty"`
	Args         []any           `json:"args,omitempty"`
	Message      json.RawMessage `json:"message,omitempty"`
}
