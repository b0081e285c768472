package console

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/thexDman/domain-monitoring-devops/pkg/client"
)

// State is the lifecycle state of a modal workflow.
type State int

// Workflow states. Closed is both initial and terminal.
const (
	StateClosed State = iota
	StateOpen
	StateSubmitting
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Status line kinds, mirroring the dialog status styling.
const (
	statusLoading = "loading"
	statusSuccess = "success"
	statusError   = "error"
)

// closeDelay is how long a success confirmation stays visible before
// the dialog auto-closes and the list reloads.
const closeDelay = 1200 * time.Millisecond

// ErrSubmitInFlight is returned when a submission is attempted while a
// previous one for the same workflow is still outstanding. At most one
// mutation per workflow is in flight at a time.
var ErrSubmitInFlight = errors.New("submission already in flight")

// Messages configures the status texts of one workflow instance.
type Messages struct {
	Working string
	Success string
	Failure string
}

// Workflow is the dialog-scoped state machine driving a single
// mutating operation and its status feedback. It is instantiated for
// the add, bulk-import, and delete operations.
type Workflow struct {
	name     string
	messages Messages
	renderer *Renderer
	onReload func()

	delay time.Duration

	mu         sync.Mutex
	state      State
	status     string
	closeTimer *time.Timer
}

// NewWorkflow returns a workflow in the Closed state. onReload is
// invoked exactly once per successful submission, after the success
// confirmation has been visible for the fixed delay.
func NewWorkflow(name string, messages Messages, r *Renderer, onReload func()) *Workflow {
	return &Workflow{
		name:     name,
		messages: messages,
		renderer: r,
		onReload: onReload,
		delay:    closeDelay,
	}
}

// Open transitions to Open, resetting any prior status. Reopening
// cancels a pending auto-close so a stale success confirmation cannot
// resurface in the fresh dialog.
func (w *Workflow) Open() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopTimerLocked()
	w.state = StateOpen
	w.status = ""
}

// Dismiss forces the workflow to Closed from any state, with no side
// effects beyond hiding the dialog. An in-flight submission is not
// cancelled; its late-arriving response still runs its side effects.
func (w *Workflow) Dismiss() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopTimerLocked()
	w.state = StateClosed
	w.status = ""
}

// Submit issues exactly one mutation via op. On success the workflow
// shows its confirmation, then after the fixed delay auto-closes and
// triggers the reload. On an application error the server message is
// shown and the dialog stays open for retry. On a transport fault a
// generic message is shown. A second submission while one is
// outstanding is rejected.
func (w *Workflow) Submit(ctx context.Context, op func(context.Context) error) error {
	w.mu.Lock()
	if w.state == StateSubmitting {
		w.mu.Unlock()
		return ErrSubmitInFlight
	}
	w.state = StateSubmitting
	w.status = w.messages.Working
	w.mu.Unlock()
	w.renderer.Status(w.name, statusLoading, w.messages.Working)

	err := op(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err == nil {
		w.state = StateSuccess
		w.status = w.messages.Success
		w.renderer.Status(w.name, statusSuccess, w.messages.Success)
		w.scheduleCloseLocked()
		return nil
	}

	message := w.messages.Failure
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		message = apiErr.Message
	}
	w.state = StateError
	w.status = message
	w.renderer.Status(w.name, statusError, message)
	return err
}

// scheduleCloseLocked arms the cancellable auto-close task. Dismissing
// or reopening the dialog before it fires stops it, so no reload or
// close happens on behalf of a dialog the operator already left.
func (w *Workflow) scheduleCloseLocked() {
	w.stopTimerLocked()
	w.closeTimer = time.AfterFunc(w.delay, func() {
		w.mu.Lock()
		if w.state != StateSuccess {
			w.mu.Unlock()
			return
		}
		w.state = StateClosed
		w.status = ""
		w.mu.Unlock()
		w.onReload()
	})
}

func (w *Workflow) stopTimerLocked() {
	if w.closeTimer != nil {
		w.closeTimer.Stop()
		w.closeTimer = nil
	}
}

// State returns the current lifecycle state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Status returns the current status line text.
func (w *Workflow) Status() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// DeleteWorkflow extends the shared workflow with the pending-delete
// set populated at the moment a delete action is invoked. Single-row
// delete and bulk delete both route through here; a row-level trigger
// always targets exactly that one domain regardless of the selection.
type DeleteWorkflow struct {
	*Workflow

	mu      sync.Mutex
	pending []string
}

// NewDeleteWorkflow returns a delete workflow in the Closed state.
func NewDeleteWorkflow(messages Messages, r *Renderer, onReload func()) *DeleteWorkflow {
	return &DeleteWorkflow{Workflow: NewWorkflow("delete", messages, r, onReload)}
}

// OpenFor opens the confirmation dialog for the given targets.
func (d *DeleteWorkflow) OpenFor(targets []string) {
	d.mu.Lock()
	d.pending = append([]string(nil), targets...)
	d.mu.Unlock()
	d.Open()
}

// Pending returns the current pending-delete set.
func (d *DeleteWorkflow) Pending() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.pending...)
}

// Confirm submits the delete for the pending targets. The pending set
// is cleared once the request settles, success or failure, so a failed
// delete is not retryable without re-selecting the target.
func (d *DeleteWorkflow) Confirm(ctx context.Context, op func(context.Context, []string) error) error {
	d.mu.Lock()
	targets := append([]string(nil), d.pending...)
	d.mu.Unlock()

	if len(targets) == 0 {
		return nil
	}

	err := d.Submit(ctx, func(ctx context.Context) error {
		return op(ctx, targets)
	})
	if !errors.Is(err, ErrSubmitInFlight) {
		d.mu.Lock()
		d.pending = nil
		d.mu.Unlock()
	}
	return err
}
