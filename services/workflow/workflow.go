// Package workflow runs one reservation mutation at a time: confirm, submit,
// then reconcile local state with whatever the server answered.
package workflow

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"roombooking/models"
	"roombooking/services/cache"
	"roombooking/services/gateway"
	"roombooking/services/loop"
	"roombooking/services/selection"
	"roombooking/utils"

	"go.uber.org/zap"
)

type State int

const (
	Idle State = iota
	ConfirmPending
	Submitting
	Success
	Conflict
	AuthExpired
	OtherFailure
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ConfirmPending:
		return "confirm_pending"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Conflict:
		return "conflict"
	case AuthExpired:
		return "auth_expired"
	case OtherFailure:
		return "other_failure"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type Kind int

const (
	Create Kind = iota
	Update
	Cancel
)

func (k Kind) String() string {
	switch k {
	case Create:
		return "create"
	case Update:
		return "update"
	case Cancel:
		return "cancel"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Mutation is one state-changing call. Dates lists every date whose cached
// availability the call may change; Input.Date is always included.
type Mutation struct {
	Kind          Kind
	ReservationID int
	Input         models.ReservationInput
	Confirm       ConfirmOptions
	Dates         []string
	// ReturnPath is where the login page sends the user back to.
	ReturnPath string
	// RedirectOnSuccess, when set, leaves the page after a successful call.
	RedirectOnSuccess string
}

func (m Mutation) ready() bool {
	if m.Kind == Cancel {
		return m.ReservationID > 0
	}
	if m.Kind == Update && m.ReservationID <= 0 {
		return false
	}
	return m.Input.RoomTypeID > 0 && m.Input.Date != ""
}

func (m Mutation) affectedDates() []string {
	seen := make(map[string]bool)
	var dates []string
	for _, d := range append([]string{m.Input.Date}, m.Dates...) {
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		dates = append(dates, d)
	}
	return dates
}

func (m Mutation) successMessage() string {
	switch m.Kind {
	case Update:
		return updatedMessage
	case Cancel:
		return cancelledMessage
	}
	return createdMessage
}

func (m Mutation) failureMessage() string {
	switch m.Kind {
	case Update:
		return updateFailedMessage
	case Cancel:
		return cancelFailedMessage
	}
	return createFailedMessage
}

// Outcome is what a submission ended in. State is Idle when the attempt was
// rejected up front or dismissed at the confirmation prompt.
type Outcome struct {
	State       State
	Reservation *models.Reservation
	Message     string
	Err         error
}

type Options struct {
	API       gateway.ReservationAPI
	Cache     cache.AvailabilityCache
	Selection *selection.Store
	Notifier  Notifier
	Confirmer Confirmer
	Navigator Navigator
	Loop      *loop.Loop
	// Busy reports whether loads are in flight. Submissions are refused while it is true.
	Busy     func() bool
	LoginURL string
	Logger   *zap.Logger
}

type Workflow struct {
	api       gateway.ReservationAPI
	cache     cache.AvailabilityCache
	selection *selection.Store
	notifier  Notifier
	confirmer Confirmer
	navigator Navigator
	loop      *loop.Loop
	busy      func() bool
	loginURL  string
	logger    *zap.Logger

	mu    sync.Mutex
	state State
}

func New(opts Options) *Workflow {
	w := &Workflow{
		api:       opts.API,
		cache:     opts.Cache,
		selection: opts.Selection,
		notifier:  opts.Notifier,
		confirmer: opts.Confirmer,
		navigator: opts.Navigator,
		loop:      opts.Loop,
		busy:      opts.Busy,
		loginURL:  opts.LoginURL,
		logger:    opts.Logger,
	}
	if w.loop == nil {
		w.loop = loop.New()
	}
	if w.selection == nil {
		w.selection = selection.NewStore()
	}
	if w.loginURL == "" {
		w.loginURL = "/accounts/login/"
	}
	if w.logger == nil {
		w.logger = utils.GetLogger()
	}
	return w
}

// State is the machine's current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// InFlight reports whether a submission has left Idle.
func (w *Workflow) InFlight() bool {
	return w.State() != Idle
}

// Submit runs m to completion and always returns to Idle. It blocks for the
// confirmation prompt, the mutation call, and on Success or Conflict the
// forced reload. Must not be called from inside the loop.
func (w *Workflow) Submit(ctx context.Context, m Mutation, hooks Hooks) (out Outcome) {
	if !m.ready() {
		return Outcome{State: Idle, Err: ErrNoSelection}
	}
	if !w.acquire() {
		w.logger.Info("reservation rejected: busy", zap.Stringer("kind", m.Kind))
		return Outcome{State: Idle, Err: ErrBusy}
	}
	defer w.transition(hooks, Idle)
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("reservation workflow panic", zap.Any("panic", r), zap.Stringer("kind", m.Kind))
			out = Outcome{State: OtherFailure, Message: m.failureMessage(), Err: fmt.Errorf("workflow panic: %v", r)}
			w.notify(out.Message, VariantDanger)
		}
	}()
	w.transition(hooks, ConfirmPending)

	if w.confirmer != nil && !w.confirmer.Confirm(ctx, m.Confirm) {
		w.logger.Info("reservation dismissed", zap.Stringer("kind", m.Kind))
		return Outcome{State: Idle}
	}

	w.setControls(hooks, false)
	defer w.setControls(hooks, true)
	w.transition(hooks, Submitting)

	res, err := w.send(ctx, m)
	switch status := gateway.StatusOf(err); {
	case err == nil:
		out = Outcome{State: Success, Reservation: res, Message: m.successMessage()}
		w.transition(hooks, Success)
		w.notify(out.Message, VariantSuccess)
		w.reconcile(ctx, m, hooks)
		if m.RedirectOnSuccess != "" && w.navigator != nil {
			w.navigator.Redirect(m.RedirectOnSuccess)
		}
	case status == http.StatusUnauthorized:
		out = Outcome{State: AuthExpired, Message: SessionExpiredMessage, Err: err}
		w.transition(hooks, AuthExpired)
		w.notify(out.Message, VariantDanger)
		if w.navigator != nil {
			w.navigator.Redirect(w.loginRedirect(m.ReturnPath))
		}
	case status == http.StatusConflict:
		out = Outcome{State: Conflict, Message: messageFor(err, m), Err: err}
		w.transition(hooks, Conflict)
		w.notify(out.Message, VariantDanger)
		w.reconcile(ctx, m, hooks)
	default:
		out = Outcome{State: OtherFailure, Message: messageFor(err, m), Err: err}
		w.transition(hooks, OtherFailure)
		w.logger.Warn("reservation failed", zap.Stringer("kind", m.Kind), zap.Int("status", status), zap.Error(err))
		w.notify(out.Message, VariantDanger)
	}
	return out
}

func (w *Workflow) acquire() bool {
	if w.busy != nil && w.busy() {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != Idle {
		return false
	}
	w.state = ConfirmPending
	return true
}

func (w *Workflow) send(ctx context.Context, m Mutation) (*models.Reservation, error) {
	switch m.Kind {
	case Update:
		return w.api.UpdateReservation(ctx, m.ReservationID, m.Input)
	case Cancel:
		return nil, w.api.CancelReservation(ctx, m.ReservationID)
	}
	return w.api.CreateReservation(ctx, m.Input)
}

// reconcile drops every cached entry the mutation could have changed, clears
// the selection and forces a reload so the page converges on server truth.
func (w *Workflow) reconcile(ctx context.Context, m Mutation, hooks Hooks) {
	if w.cache != nil {
		for _, d := range m.affectedDates() {
			w.cache.EvictDate(ctx, d)
		}
	}
	w.loop.Do(w.selection.Clear)
	if hooks.Reload != nil {
		hooks.Reload(ctx)
	}
}

func (w *Workflow) transition(hooks Hooks, s State) {
	w.mu.Lock()
	prev := w.state
	w.state = s
	w.mu.Unlock()
	if prev != s {
		w.logger.Info("reservation workflow", zap.Stringer("from", prev), zap.Stringer("to", s))
	}
	if hooks.OnState != nil {
		w.loop.Do(func() { hooks.OnState(s) })
	}
}

func (w *Workflow) setControls(hooks Hooks, enabled bool) {
	if hooks.SetControlsEnabled != nil {
		w.loop.Do(func() { hooks.SetControlsEnabled(enabled) })
	}
}

func (w *Workflow) notify(msg string, v Variant) {
	if w.notifier != nil {
		w.notifier.Notify(msg, v)
	}
}

func (w *Workflow) loginRedirect(returnPath string) string {
	if returnPath == "" {
		return w.loginURL
	}
	return w.loginURL + "?next=" + url.QueryEscape(returnPath)
}

func messageFor(err error, m Mutation) string {
	if msg := gateway.ServerMessage(err); msg != "" {
		return msg
	}
	return m.failureMessage()
}
