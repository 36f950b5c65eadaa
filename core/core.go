// Package core holds the shared value types that flow between the session
// orchestrator, the tool dispatcher and the persistence layer. It has no
// dependencies on any other package in this module.
package core

// Action is the audit record of one dispatched tool call. It is captured at
// dispatch time, before the handler executes, so a crashing handler still
// leaves a trail. Actions are owned by the session that produced them and are
// append-only.
type Action struct {
	Tool   string         `json:"tool"`
	Inputs map[string]any `json:"inputs"`
}

// EndReason describes why a session loop terminated.
type EndReason string

const (
	// EndReasonAgentRequested means the agent either called the terminating
	// tool or stopped producing tool calls.
	EndReasonAgentRequested EndReason = "agent_requested"
	// EndReasonTurnLimit means the loop exhausted its turn budget.
	EndReasonTurnLimit EndReason = "turn_limit"
	// EndReasonProtocolError means the model returned a stop condition the
	// loop does not understand.
	EndReasonProtocolError EndReason = "protocol_error"
)

// Fallback summaries used when the agent does not supply one.
const (
	NoSummary        = "Session ended without summary."
	TurnLimitSummary = "Session ended at turn limit."
)
