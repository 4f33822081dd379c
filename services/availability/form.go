package availability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"roombooking/models"
	"roombooking/services/cache"
	"roombooking/services/gateway"
	"roombooking/services/loop"
	"roombooking/services/render"
	"roombooking/services/selection"
	"roombooking/services/sequencer"
	"roombooking/services/workflow"
	"roombooking/utils"

	"go.uber.org/zap"
)

const (
	slotsChannel = "slots"

	myReservationsPath = "/my-reservations/"
	loadingSlotsHelp   = "Loading available slots…"
	loadFailedHelp     = "Error loading availability. Please try again."
)

type FormOptions struct {
	Availability gateway.AvailabilityAPI
	Reservations gateway.ReservationAPI
	Cache        cache.AvailabilityCache
	Notifier     workflow.Notifier
	Confirmer    workflow.Confirmer
	Navigator    workflow.Navigator
	Loop         *loop.Loop
	Debounce     time.Duration
	LoginURL     string
	ReturnPath   string
	// ReservationID switches the form to edit mode.
	ReservationID int
	// Initial pre-fills the fields; in edit mode it is the reservation being changed.
	Initial models.ReservationInput
	Logger  *zap.Logger
}

// Form is the create/edit reservation form: room and date fields drive a
// debounced load of the room's slots, and only available slots can be picked.
type Form struct {
	api           gateway.AvailabilityAPI
	cache         cache.AvailabilityCache
	notifier      workflow.Notifier
	loop          *loop.Loop
	sel           *selection.Store
	seq           *sequencer.Sequencer
	workflow      *workflow.Workflow
	debouncer     *sequencer.Debouncer
	reservationID int
	original      models.ReservationInput
	returnPath    string
	logger        *zap.Logger

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()

	// guarded by loop
	roomTypeID int
	date       string
	payload    *models.AvailabilityPayload
	status     string
	failed     bool
	submitting bool
	closed     bool
	displays   []FormDisplay
}

func NewForm(opts FormOptions) *Form {
	if opts.Loop == nil {
		opts.Loop = loop.New()
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewMemoryCache()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = utils.GetLogger()
	}
	if opts.ReturnPath == "" {
		if opts.ReservationID > 0 {
			opts.ReturnPath = fmt.Sprintf("/reservations/%d/edit/", opts.ReservationID)
		} else {
			opts.ReturnPath = "/reservations/new/"
		}
	}

	f := &Form{
		api:           opts.Availability,
		cache:         opts.Cache,
		notifier:      opts.Notifier,
		loop:          opts.Loop,
		sel:           selection.NewStore(),
		seq:           sequencer.New(opts.Loop, opts.Logger),
		debouncer:     sequencer.NewDebouncer(opts.Debounce),
		reservationID: opts.ReservationID,
		original:      opts.Initial,
		returnPath:    opts.ReturnPath,
		logger:        opts.Logger,
		roomTypeID:    opts.Initial.RoomTypeID,
		date:          strings.TrimSpace(opts.Initial.Date),
	}
	if opts.Initial.RoomTypeID > 0 && opts.Initial.Slot > 0 {
		f.sel.Select(opts.Initial.RoomTypeID, opts.Initial.Slot)
	}
	f.ctx, f.cancel = context.WithCancel(context.Background())
	f.workflow = workflow.New(workflow.Options{
		API:       opts.Reservations,
		Cache:     opts.Cache,
		Selection: f.sel,
		Notifier:  opts.Notifier,
		Confirmer: opts.Confirmer,
		Navigator: opts.Navigator,
		Loop:      opts.Loop,
		Busy:      f.seq.Busy,
		LoginURL:  opts.LoginURL,
		Logger:    opts.Logger,
	})
	f.unsubscribe = f.sel.Subscribe(func(*models.Selection) { f.render() })
	return f
}

// Editing reports whether the form changes an existing reservation.
func (f *Form) Editing() bool {
	return f.reservationID > 0
}

func (f *Form) AddDisplay(d FormDisplay) {
	f.loop.Do(func() {
		f.displays = append(f.displays, d)
		d.RenderForm(f.screen())
	})
}

func (f *Form) Screen() models.FormScreen {
	var s models.FormScreen
	f.loop.Do(func() { s = f.screen() })
	return s
}

// SetRoom changes the room type and schedules a slot load.
func (f *Form) SetRoom(roomTypeID int) error {
	return f.change(func() bool {
		if f.roomTypeID == roomTypeID {
			return false
		}
		f.roomTypeID = roomTypeID
		return true
	})
}

// SetDate changes the date and schedules a slot load.
func (f *Form) SetDate(date string) error {
	date = strings.TrimSpace(date)
	if _, err := time.Parse(dateLayout, date); err != nil {
		return ErrInvalidDate
	}
	return f.change(func() bool {
		if f.date == date {
			return false
		}
		f.date = date
		return true
	})
}

func (f *Form) change(apply func() bool) error {
	var (
		err     error
		changed bool
	)
	f.loop.Do(func() {
		switch {
		case f.closed:
			err = ErrClosed
		case f.submitting:
			err = workflow.ErrBusy
		default:
			if changed = apply(); changed {
				f.payload = nil
				f.failed = false
				f.status = ""
				f.seq.Cancel(slotsChannel)
				f.render()
			}
		}
	})
	if changed {
		f.debouncer.Trigger(func() {
			f.guard("debounced load", func() { f.Reload(f.ctx, false) })
		})
	}
	return err
}

// SetSlot picks one of the offered slots.
func (f *Form) SetSlot(slot int) error {
	var err error
	f.loop.Do(func() {
		switch {
		case f.closed:
			err = ErrClosed
		case f.busy():
			err = workflow.ErrBusy
		case f.payload == nil:
			err = ErrUnknownSlot
		default:
			view := render.SlotOptions(f.payload, f.roomTypeID, slot)
			if view.Selected != slot {
				if _, ok := f.payload.SlotLabel(slot); ok {
					err = ErrSlotReserved
				} else {
					err = ErrUnknownSlot
				}
				return
			}
			next := &models.Selection{RoomTypeID: f.roomTypeID, Slot: slot}
			if !f.sel.Current().Equal(next) {
				f.sel.Select(f.roomTypeID, slot)
			}
		}
	})
	return err
}

// Reload loads the slots for the current room and date. Edit mode always
// asks the server, excluding the reservation being edited.
func (f *Form) Reload(ctx context.Context, force bool) {
	var ready bool
	f.loop.Do(func() { ready = !f.closed && f.roomTypeID > 0 && f.date != "" })
	if !ready {
		return
	}
	var key cache.Key
	sequencer.Run(ctx, f.seq, sequencer.Call[loaded]{
		Channel: slotsChannel,
		Start: func() {
			key = cache.Key{Date: f.date, RoomTypeID: f.roomTypeID}
			f.failed = false
			f.status = StatusLoading
			f.render()
		},
		Fetch: func(ctx context.Context) (loaded, error) {
			q := gateway.AvailabilityQuery{Date: key.Date, RoomTypeID: key.RoomTypeID, ExcludeReservationID: f.reservationID}
			if !force && !f.Editing() {
				if p, ok := f.cache.Get(ctx, key); ok {
					return loaded{payload: p, key: key, cached: true}, nil
				}
			}
			p, err := f.api.FetchAvailability(ctx, q)
			return loaded{payload: p, key: key}, err
		},
		Apply: func(l loaded, err error) {
			if err != nil {
				f.payload = nil
				f.failed = true
				f.status = StatusFailed
				f.logger.Warn("slot load failed", zap.String("date", key.Date), zap.Int("room_type_id", key.RoomTypeID), zap.Error(err))
				msg := gateway.ServerMessage(err)
				if msg == "" {
					msg = formLoadFailedMessage
				}
				if f.notifier != nil {
					f.notifier.Notify(msg, workflow.VariantDanger)
				}
				f.render()
				return
			}
			if !l.cached && !f.Editing() {
				f.cache.Set(f.ctx, l.key, l.payload)
			}
			f.payload = l.payload
			f.status = "Updated for " + payloadDate(l)
			f.syncSlot()
			f.render()
		},
	})
}

// syncSlot keeps the chosen slot while it is still available and otherwise
// falls back to the first available one.
func (f *Form) syncSlot() {
	previous := 0
	if cur := f.sel.Current(); cur != nil && cur.RoomTypeID == f.roomTypeID {
		previous = cur.Slot
	}
	view := render.SlotOptions(f.payload, f.roomTypeID, previous)
	if view.Selected == 0 {
		f.sel.Clear()
		return
	}
	next := &models.Selection{RoomTypeID: f.roomTypeID, Slot: view.Selected}
	if !f.sel.Current().Equal(next) {
		f.sel.Select(next.RoomTypeID, next.Slot)
	}
}

// Submit confirms and sends the form. Edit mode leaves for the reservations
// list on success.
func (f *Form) Submit(ctx context.Context) workflow.Outcome {
	var (
		m   workflow.Mutation
		err error
	)
	f.loop.Do(func() {
		if f.closed {
			err = ErrClosed
			return
		}
		sel := f.sel.Current()
		if sel == nil || f.payload == nil || f.date == "" || sel.RoomTypeID != f.roomTypeID {
			err = workflow.ErrNoSelection
			return
		}
		label, ok := f.payload.SlotLabel(sel.Slot)
		if !ok {
			err = workflow.ErrNoSelection
			return
		}
		name := "Room"
		if rt, ok := f.payload.Room(f.roomTypeID); ok {
			name = rt.Name
		} else if len(f.payload.RoomTypes) > 0 {
			name = f.payload.RoomTypes[0].Name
		}
		m = workflow.Mutation{
			Kind:       workflow.Create,
			Input:      models.ReservationInput{RoomTypeID: f.roomTypeID, Date: f.date, Slot: sel.Slot},
			ReturnPath: f.returnPath,
			Confirm: workflow.ConfirmOptions{
				Title:     "Confirm reservation",
				Body:      fmt.Sprintf("Reserve %s on %s at %s?", name, f.date, label),
				OKText:    "Reserve",
				OKVariant: "primary",
			},
		}
		if f.Editing() {
			m.Kind = workflow.Update
			m.ReservationID = f.reservationID
			m.Dates = []string{f.original.Date}
			m.RedirectOnSuccess = myReservationsPath
			m.Confirm = workflow.ConfirmOptions{
				Title:     "Confirm changes",
				Body:      fmt.Sprintf("Update reservation to %s on %s at %s?", name, f.date, label),
				OKText:    "Save changes",
				OKVariant: "primary",
			}
		}
	})
	if err != nil {
		return workflow.Outcome{State: workflow.Idle, Err: err}
	}

	submitting := StatusReserving
	if f.Editing() {
		submitting = StatusSaving
	}
	return f.workflow.Submit(ctx, m, workflow.Hooks{
		SetControlsEnabled: func(enabled bool) {
			f.submitting = !enabled
			f.render()
		},
		OnState: func(s workflow.State) {
			switch s {
			case workflow.Submitting:
				f.status = submitting
			case workflow.AuthExpired, workflow.OtherFailure, workflow.Conflict:
				f.status = StatusFailed
			default:
				return
			}
			f.render()
		},
		Reload: func(ctx context.Context) { f.Reload(ctx, true) },
	})
}

func (f *Form) Close() {
	f.debouncer.Stop()
	f.cancel()
	f.seq.CancelAll()
	f.loop.Do(func() {
		f.closed = true
		f.displays = nil
	})
	f.unsubscribe()
}

func (f *Form) busy() bool {
	return f.submitting || f.seq.Busy()
}

func (f *Form) screen() models.FormScreen {
	busy := f.busy()
	s := models.FormScreen{
		RoomTypeID: f.roomTypeID,
		Date:       f.date,
		Status:     f.status,
		Busy:       busy,
	}
	sel := f.sel.Current()
	switch {
	case f.roomTypeID == 0 || f.date == "":
		s.Slots = render.PendingOptions(render.PickFirstPlaceholder, "")
	case f.seq.Pending(slotsChannel):
		s.Slots = render.PendingOptions(render.LoadingPlaceholder, loadingSlotsHelp)
	case f.failed:
		s.Slots = render.PendingOptions(render.LoadFailedPlaceholder, loadFailedHelp)
	case f.payload == nil:
		s.Slots = render.PendingOptions(render.LoadingPlaceholder, "")
	default:
		previous := 0
		if sel != nil && sel.RoomTypeID == f.roomTypeID {
			previous = sel.Slot
		}
		s.Slots = render.SlotOptions(f.payload, f.roomTypeID, previous)
		s.Badges = render.Badges(f.payload, f.roomTypeID)
	}
	if busy {
		s.Slots.Disabled = true
	}
	s.CanSubmit = !s.Slots.Disabled && s.Slots.Selected != 0 && sel != nil
	return s
}

func (f *Form) render() {
	if len(f.displays) == 0 {
		return
	}
	s := f.screen()
	for _, d := range f.displays {
		d.RenderForm(s)
	}
}

func (f *Form) guard(op string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("reservation form panic", zap.String("op", op), zap.Any("panic", r))
			func() {
				defer func() { _ = recover() }()
				f.loop.Do(func() {
					f.submitting = false
					f.status = StatusFailed
					f.render()
				})
			}()
		}
	}()
	fn()
}
