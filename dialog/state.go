// Package dialog drives the post authoring and editing conversation as an
// explicit finite-state machine: a typed per-user session plus a transition
// table keyed by (current state, event kind).
package dialog

// State identifies a step of the authoring/editing conversation.
type State string

const (
	// StateIdle is both the initial state and the resting state reached
	// after every completed or cancelled flow.
	StateIdle State = "idle"

	// StateAddingChannel awaits a channel id or username to register.
	StateAddingChannel State = "adding_channel"

	// Creation path, advanced one valid input at a time.
	StateCreatingMessage State = "creating_post_message"
	StateCreatingPhoto   State = "creating_post_photo"
	StateCreatingSuccess State = "creating_post_success"
	StateCreatingFail    State = "creating_post_fail"
	StateCreatingButton  State = "creating_post_button"

	// Editing states, each accepting exactly one input.
	StateEditingMessage State = "editing_post_message"
	StateEditingPhoto   State = "editing_post_photo"
	StateEditingSuccess State = "editing_post_success"
	StateEditingFail    State = "editing_post_fail"
	StateEditingButton  State = "editing_post_button"
)

// EventKind classifies an incoming user interaction.
type EventKind int

const (
	// EventText is a plain text message.
	EventText EventKind = iota
	// EventPhoto is a received photo.
	EventPhoto
	// EventSkipPhoto is the explicit "skip" button during photo collection.
	EventSkipPhoto
	// EventUseDefault is the "use default" button for fail/button text.
	EventUseDefault
	// EventCancel aborts the current flow from any state.
	EventCancel
)

// Event is one user interaction fed into the machine.
type Event struct {
	Kind        EventKind
	Text        string
	PhotoFileID string
}
