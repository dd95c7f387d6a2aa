package action

// Message types carried across the overlay/orchestrator bridge. The
// bridge itself is payload-agnostic; these constants plus the
// request/response structs below are the whole wire contract.
const (
	MsgGetActions    = "GET_ACTIONS"
	MsgExecuteAction = "EXECUTE_ACTION"
	MsgUpdateStats   = "UPDATE_STATS"
)

// GetActionsRequest carries the gesture context to the orchestrator.
type GetActionsRequest struct {
	Context Context `json:"context"`
}

// GetActionsResponse always carries exactly BatchSize ranked actions.
type GetActionsResponse struct {
	Actions []Action `json:"actions"`
}

// ExecuteActionRequest asks the orchestrator to run one action over the
// full selected content.
type ExecuteActionRequest struct {
	Action  Action  `json:"action"`
	Content string  `json:"content"`
	Context Context `json:"context"`
}

// ExecuteActionResponse reports either the generated text or a
// user-visible error string, never both.
type ExecuteActionResponse struct {
	Success bool   `json:"success"`
	Result  string `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// UpdateStatsRequest records a click for an action ID.
type UpdateStatsRequest struct {
	ActionID string `json:"action_id"`
}

// UpdateStatsResponse acknowledges the recording.
type UpdateStatsResponse struct {
	Success bool `json:"success"`
}
