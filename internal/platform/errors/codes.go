// Package errors provides structured error handling for the table runtime.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// Game definition errors
	CodeGameSetupMissing      Code = "GAME_SETUP_MISSING"
	CodeGameMoveNameEmpty     Code = "GAME_MOVE_NAME_EMPTY"
	CodeGamePhaseNameEmpty    Code = "GAME_PHASE_NAME_EMPTY"
	CodeGamePlayerBoundsWrong Code = "GAME_PLAYER_BOUNDS_WRONG"

	// Protocol errors
	CodeEnvelopeMalformed Code = "ENVELOPE_MALFORMED"
	CodeSetupIncomplete   Code = "SETUP_INCOMPLETE"

	// Table errors
	CodeTableFull       Code = "TABLE_FULL"
	CodeTableStarted    Code = "TABLE_STARTED"
	CodeTableSizeWrong  Code = "TABLE_SIZE_WRONG"
	CodeTransportClosed Code = "TRANSPORT_CLOSED"
)
