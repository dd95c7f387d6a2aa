package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"actionnerd/internal/action"
)

// Handle implements bridge.Handler by dispatching the three message
// types of the overlay/orchestrator contract. GET_ACTIONS never fails
// across the bridge; EXECUTE_ACTION reports failures inside its
// response payload so the overlay gets a user-visible string rather
// than a transport error.
func (o *Orchestrator) Handle(ctx context.Context, typ string, payload json.RawMessage) (json.RawMessage, error) {
	switch typ {
	case action.MsgGetActions:
		var req action.GetActionsRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("malformed GET_ACTIONS payload: %w", err)
		}
		actions := o.GetActions(ctx, &req.Context)
		return json.Marshal(action.GetActionsResponse{Actions: actions})

	case action.MsgExecuteAction:
		var req action.ExecuteActionRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("malformed EXECUTE_ACTION payload: %w", err)
		}
		result, err := o.ExecuteAction(ctx, req.Action, req.Content, &req.Context)
		if err != nil {
			return json.Marshal(action.ExecuteActionResponse{
				Success: false,
				Error:   userError(err),
			})
		}
		return json.Marshal(action.ExecuteActionResponse{Success: true, Result: result})

	case action.MsgUpdateStats:
		var req action.UpdateStatsRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("malformed UPDATE_STATS payload: %w", err)
		}
		if err := o.RecordUsage(req.ActionID); err != nil {
			return nil, err
		}
		return json.Marshal(action.UpdateStatsResponse{Success: true})

	default:
		return nil, fmt.Errorf("unknown message type %q", typ)
	}
}

// userError maps internal errors to the short strings shown in the
// overlay's transient notifications.
func userError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoCredential):
		return "Configure an API key in settings to run actions"
	case errors.Is(err, ErrEmptyContext):
		return "Nothing selected"
	default:
		return err.Error()
	}
}
