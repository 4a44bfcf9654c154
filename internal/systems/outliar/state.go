package outliar

// Card values. Cards 0..numPlayers-1 index play-order seats; the single
// wildcard and the blanks carry special vote semantics.
const (
	Wildcard = -2
	Blank    = -1
)

// Action is a player's committed plan for the round.
type Action string

const (
	ActionEmergency Action = "emergency"
	ActionVote      Action = "vote"
	ActionVideocam  Action = "videocam"
	ActionTrade     Action = "trade"
	ActionVault     Action = "vault"
)

// Phase names. forced-trade and trade-response are sub-modes entered from
// vote and trade; conclude is the side branch that ends a round.
const (
	PhaseDecide        = "decide"
	PhaseEmergency     = "emergency"
	PhaseVote          = "vote"
	PhaseForcedTrade   = "forced-trade"
	PhaseVideocam      = "videocam"
	PhaseTrade         = "trade"
	PhaseTradeResponse = "trade-response"
	PhaseVault         = "vault"
	PhaseConclude      = "conclude"
)

// State is the canonical round state. Everything under Secret and Players
// is private; the default projection hides Secret entirely and narrows
// Players to the viewer, while Pub is what everyone may see.
type State struct {
	Phase   string                  `json:"phase"`
	Secret  Secret                  `json:"secret"`
	Players map[string]*PlayerState `json:"players"`
	Pub     map[string]*PublicState `json:"pub"`
	Targets map[string]string       `json:"targets"`
	Extra   int                     `json:"extra"`
}

func (s *State) CurrentPhase() string { return s.Phase }

// Secret holds the information no player may ever receive in a sync.
type Secret struct {
	Vault       []int  `json:"vault"`
	RealOutliar string `json:"realOutliar"`
}

// PlayerState is one player's private slice of the state.
type PlayerState struct {
	Hand           []int  `json:"hand"`
	HandInSight    []int  `json:"handInSight,omitempty"`
	FaceDown       []int  `json:"faceDown"`
	Action         Action `json:"action,omitempty"`
	OutliarInSight string `json:"outliarInSight"`
	Vote           *int   `json:"vote,omitempty"`
}

// PublicState is the information published to every participant.
type PublicState struct {
	Action        Action `json:"action,omitempty"`
	Score         int    `json:"score"`
	RoundScore    *int   `json:"roundScore,omitempty"`
	FaceDownCount int    `json:"faceDownCount"`
	Done          bool   `json:"done"`
	Vote          *int   `json:"vote,omitempty"`
}
