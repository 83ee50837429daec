package grid

// EditState tracks an edit through the reconciliation state machine.
type EditState string

const (
	StateValidating     EditState = "validating"
	StateClassifying    EditState = "classifying"
	StateRemoteInFlight EditState = "remote_in_flight"
	StateCommitted      EditState = "committed"
	StateRolledBack     EditState = "rolled_back"
)

// Action is what an edit turned out to mean once classified.
type Action string

const (
	ActionNone          Action = "none"
	ActionAddColumn     Action = "add_column"
	ActionRemoveColumn  Action = "remove_column"
	ActionReplaceColumn Action = "replace_column"
	ActionAddRow        Action = "add_row"
	ActionRemoveRow     Action = "remove_row"
	ActionReplaceRow    Action = "replace_row"
	ActionCreateCell    Action = "create_cell"
	ActionUpdateCell    Action = "update_cell"
	ActionDeleteCell    Action = "delete_cell"
)

// Edit is a single proposed cell change from the view layer.
type Edit struct {
	Row    int
	Col    int
	Before string
	After  string
}

// Outcome is the result the view applies after reconciliation. Display is
// the value the edited cell must show: the normalized new value when the
// edit committed, the previous value when it rolled back. Err is nil iff the
// edit committed (a no-op counts as committed).
type Outcome struct {
	State   EditState
	Action  Action
	Display string
	EditID  string
	Err     error
}

// Committed reports whether the edit (or no-op) took effect.
func (o Outcome) Committed() bool { return o.State == StateCommitted }

func committed(action Action, display, editID string) Outcome {
	return Outcome{State: StateCommitted, Action: action, Display: display, EditID: editID}
}

func noop(display string) Outcome {
	return Outcome{State: StateCommitted, Action: ActionNone, Display: display}
}

func rolledBack(action Action, display, editID string, err error) Outcome {
	return Outcome{State: StateRolledBack, Action: action, Display: display, EditID: editID, Err: err}
}
