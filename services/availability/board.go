// Package availability composes the gateway, cache, sequencer, selection and
// workflow into the page controllers: the availability board and the
// create/edit reservation form.
package availability

import (
	"context"
	"fmt"
	"strings"
	"sync"
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
	summaryChannel = "summary"
	detailChannel  = "detail"

	dateLayout      = "2006-01-02"
	defaultDebounce = 350 * time.Millisecond
)

type BoardOptions struct {
	Availability gateway.AvailabilityAPI
	Reservations gateway.ReservationAPI
	Cache        cache.AvailabilityCache
	Notifier     workflow.Notifier
	Confirmer    workflow.Confirmer
	Navigator    workflow.Navigator
	Loop         *loop.Loop
	Selection    *selection.Store
	Debounce     time.Duration
	LoginURL     string
	// ReturnPath is where the login page sends the user back to.
	ReturnPath string
	Logger     *zap.Logger
}

// Board is the room availability page: a matrix of every room by slot, one
// card per room, and an optional focused room loaded in detail.
type Board struct {
	api        gateway.AvailabilityAPI
	cache      cache.AvailabilityCache
	notifier   workflow.Notifier
	loop       *loop.Loop
	sel        *selection.Store
	seq        *sequencer.Sequencer
	workflow   *workflow.Workflow
	debouncer  *sequencer.Debouncer
	returnPath string
	logger     *zap.Logger

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()

	// guarded by loop
	date      string
	filter    string
	focus     int
	summary   *models.AvailabilityPayload
	detail    *models.AvailabilityPayload
	status    string
	reserving bool
	closed    bool
	displays  []Display
}

func NewBoard(opts BoardOptions) *Board {
	if opts.Loop == nil {
		opts.Loop = loop.New()
	}
	if opts.Selection == nil {
		opts.Selection = selection.NewStore()
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewMemoryCache()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.ReturnPath == "" {
		opts.ReturnPath = "/rooms/"
	}
	if opts.Logger == nil {
		opts.Logger = utils.GetLogger()
	}

	b := &Board{
		api:        opts.Availability,
		cache:      opts.Cache,
		notifier:   opts.Notifier,
		loop:       opts.Loop,
		sel:        opts.Selection,
		seq:        sequencer.New(opts.Loop, opts.Logger),
		debouncer:  sequencer.NewDebouncer(opts.Debounce),
		returnPath: opts.ReturnPath,
		logger:     opts.Logger,
	}
	b.ctx, b.cancel = context.WithCancel(context.Background())
	b.workflow = workflow.New(workflow.Options{
		API:       opts.Reservations,
		Cache:     opts.Cache,
		Selection: opts.Selection,
		Notifier:  opts.Notifier,
		Confirmer: opts.Confirmer,
		Navigator: opts.Navigator,
		Loop:      opts.Loop,
		Busy:      b.seq.Busy,
		LoginURL:  opts.LoginURL,
		Logger:    opts.Logger,
	})
	// every selection change happens inside the loop
	b.unsubscribe = b.sel.Subscribe(func(*models.Selection) { b.render() })
	return b
}

// AddDisplay registers d and renders the current screen to it.
func (b *Board) AddDisplay(d Display) {
	b.loop.Do(func() {
		b.displays = append(b.displays, d)
		d.Render(b.screen())
	})
}

// Screen returns what the board currently shows.
func (b *Board) Screen() models.Screen {
	var s models.Screen
	b.loop.Do(func() { s = b.screen() })
	return s
}

// Busy reports whether a load or a reservation is in flight.
func (b *Board) Busy() bool {
	var busy bool
	b.loop.Do(func() { busy = b.busy() })
	return busy
}

// SetDate switches the board to date, clears the selection and schedules a
// debounced load. Loads still in flight for the previous date are dropped.
func (b *Board) SetDate(date string) error {
	date = strings.TrimSpace(date)
	if _, err := time.Parse(dateLayout, date); err != nil {
		return ErrInvalidDate
	}
	var (
		err     error
		changed bool
	)
	b.loop.Do(func() {
		switch {
		case b.closed:
			err = ErrClosed
		case b.reserving:
			err = workflow.ErrBusy
		case date != b.date:
			changed = true
			b.date = date
			b.summary, b.detail = nil, nil
			b.seq.Cancel(summaryChannel)
			b.seq.Cancel(detailChannel)
			b.status = StatusLoading
			b.sel.Clear()
			b.render()
		}
	})
	if changed {
		b.debouncer.Trigger(func() {
			b.guard("debounced load", func() { b.Reload(b.ctx, false) })
		})
	}
	return err
}

// SetFilter narrows the rooms shown. Nothing is fetched.
func (b *Board) SetFilter(text string) error {
	var err error
	b.loop.Do(func() {
		if b.busy() {
			err = workflow.ErrBusy
			return
		}
		b.filter = text
		b.render()
	})
	return err
}

// Focus opens the detail panel for roomTypeID and loads it; 0 closes the panel.
func (b *Board) Focus(ctx context.Context, roomTypeID int) error {
	var err error
	b.loop.Do(func() {
		switch {
		case b.closed:
			err = ErrClosed
		case b.reserving:
			err = workflow.ErrBusy
		default:
			b.focus = roomTypeID
			b.detail = nil
			if roomTypeID == 0 {
				b.seq.Cancel(detailChannel)
			}
			b.render()
		}
	})
	if err != nil || roomTypeID == 0 {
		return err
	}
	b.loadDetail(ctx, false)
	return nil
}

// Select toggles (roomTypeID, slot). Reserved and unknown slots are refused.
func (b *Board) Select(roomTypeID, slot int) error {
	var err error
	b.loop.Do(func() {
		if b.closed {
			err = ErrClosed
			return
		}
		if b.busy() {
			err = workflow.ErrBusy
			return
		}
		p := b.payloadFor(roomTypeID)
		rt, ok := p.Room(roomTypeID)
		if !ok || !rt.HasSlotDetail() {
			err = ErrUnknownSlot
			return
		}
		if _, ok := p.SlotLabel(slot); !ok {
			err = ErrUnknownSlot
			return
		}
		if rt.Reserved()[slot] {
			err = ErrSlotReserved
			return
		}
		b.sel.Select(roomTypeID, slot)
	})
	return err
}

// Reserve confirms and submits the current selection.
func (b *Board) Reserve(ctx context.Context) workflow.Outcome {
	var (
		m   workflow.Mutation
		err error
	)
	b.loop.Do(func() {
		if b.closed {
			err = ErrClosed
			return
		}
		sel := b.sel.Current()
		if sel == nil || b.date == "" {
			err = workflow.ErrNoSelection
			return
		}
		p := b.payloadFor(sel.RoomTypeID)
		label, ok := p.SlotLabel(sel.Slot)
		if !ok {
			err = workflow.ErrNoSelection
			return
		}
		name := "Room"
		if rt, ok := p.Room(sel.RoomTypeID); ok {
			if rt.Reserved()[sel.Slot] {
				b.sel.InvalidateIfReserved(rt.ID, rt.Reserved())
				err = ErrSlotReserved
				return
			}
			name = rt.Name
		}
		m = workflow.Mutation{
			Kind:  workflow.Create,
			Input: models.ReservationInput{RoomTypeID: sel.RoomTypeID, Date: b.date, Slot: sel.Slot},
			Confirm: workflow.ConfirmOptions{
				Title:     "Confirm reservation",
				Body:      fmt.Sprintf("Reserve %s on %s at %s?", name, b.date, label),
				OKText:    "Reserve",
				OKVariant: "primary",
			},
			ReturnPath: b.returnPath,
		}
	})
	if err != nil {
		return workflow.Outcome{State: workflow.Idle, Err: err}
	}
	return b.workflow.Submit(ctx, m, b.hooks(m.Input.Date, StatusReserving))
}

// Cancel confirms and cancels r. The board reloads when it shows r's date.
func (b *Board) Cancel(ctx context.Context, r models.Reservation) workflow.Outcome {
	var closed bool
	b.loop.Do(func() { closed = b.closed })
	if closed {
		return workflow.Outcome{State: workflow.Idle, Err: ErrClosed}
	}
	m := workflow.Mutation{
		Kind:          workflow.Cancel,
		ReservationID: r.ID,
		Dates:         []string{r.Date},
		Confirm: workflow.ConfirmOptions{
			Title:     "Cancel reservation",
			Body:      fmt.Sprintf("Cancel %s on %s at %s?", r.RoomName, r.Date, r.SlotLabel),
			OKText:    "Cancel reservation",
			OKVariant: "danger",
		},
		ReturnPath: b.returnPath,
	}
	return b.workflow.Submit(ctx, m, b.hooks(r.Date, StatusCancelling))
}

func (b *Board) hooks(date, submitting string) workflow.Hooks {
	return workflow.Hooks{
		SetControlsEnabled: func(enabled bool) {
			b.reserving = !enabled
			b.render()
		},
		OnState: func(s workflow.State) {
			switch s {
			case workflow.Submitting:
				b.status = submitting
			case workflow.AuthExpired, workflow.OtherFailure:
				b.status = StatusFailed
			default:
				return
			}
			b.render()
		},
		Reload: func(ctx context.Context) {
			var showing bool
			b.loop.Do(func() { showing = !b.closed && b.date == date })
			if showing {
				b.Reload(ctx, true)
			}
		},
	}
}

// Reload fetches the date-level payload and, when a room is focused, its
// detail. force bypasses and then overwrites the cache. It blocks until both
// loads have been applied or dropped.
func (b *Board) Reload(ctx context.Context, force bool) {
	var (
		date   string
		focus  int
		closed bool
	)
	b.loop.Do(func() { date, focus, closed = b.date, b.focus, b.closed })
	if closed || date == "" {
		return
	}
	if focus == 0 {
		b.loadSummary(ctx, force)
		return
	}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		b.guard("detail load", func() { b.loadDetail(ctx, force) })
	}()
	b.loadSummary(ctx, force)
	wg.Wait()
}

// Close stops pending loads and detaches every display.
func (b *Board) Close() {
	b.debouncer.Stop()
	b.cancel()
	b.seq.CancelAll()
	b.loop.Do(func() {
		b.closed = true
		b.displays = nil
	})
	b.unsubscribe()
}

type loaded struct {
	payload *models.AvailabilityPayload
	key     cache.Key
	cached  bool
}

func (b *Board) loadSummary(ctx context.Context, force bool) bool {
	var key cache.Key
	return sequencer.Run(ctx, b.seq, sequencer.Call[loaded]{
		Channel: summaryChannel,
		Start: func() {
			key = cache.Key{Date: b.date}
			b.status = StatusLoading
			b.render()
		},
		Fetch: func(ctx context.Context) (loaded, error) {
			return b.fetch(ctx, key, gateway.AvailabilityQuery{Date: key.Date}, force)
		},
		Apply: func(l loaded, err error) {
			if err != nil {
				b.summary = nil
				b.loadFailed(err)
				return
			}
			b.store(l)
			b.summary = l.payload
			b.invalidate(l.payload)
			b.status = "Updated for " + payloadDate(l)
			if l.cached {
				b.status += " (cached)"
			}
			b.render()
		},
	})
}

func (b *Board) loadDetail(ctx context.Context, force bool) bool {
	var key cache.Key
	return sequencer.Run(ctx, b.seq, sequencer.Call[loaded]{
		Channel: detailChannel,
		Start: func() {
			key = cache.Key{Date: b.date, RoomTypeID: b.focus}
			b.render()
		},
		Fetch: func(ctx context.Context) (loaded, error) {
			if key.Date == "" || key.RoomTypeID == 0 {
				return loaded{key: key}, nil
			}
			return b.fetch(ctx, key, gateway.AvailabilityQuery{Date: key.Date, RoomTypeID: key.RoomTypeID}, force)
		},
		Apply: func(l loaded, err error) {
			if err != nil {
				b.detail = nil
				b.loadFailed(err)
				return
			}
			if l.payload == nil {
				b.render()
				return
			}
			b.store(l)
			b.detail = l.payload
			b.invalidate(l.payload)
			b.render()
		},
	})
}

// fetch runs outside the loop.
func (b *Board) fetch(ctx context.Context, key cache.Key, q gateway.AvailabilityQuery, force bool) (loaded, error) {
	if !force {
		if p, ok := b.cache.Get(ctx, key); ok {
			return loaded{payload: p, key: key, cached: true}, nil
		}
	}
	p, err := b.api.FetchAvailability(ctx, q)
	if err != nil {
		return loaded{key: key}, err
	}
	return loaded{payload: p, key: key}, nil
}

func (b *Board) store(l loaded) {
	if !l.cached {
		b.cache.Set(b.ctx, l.key, l.payload)
	}
}

// invalidate clears a selection the payload shows as reserved. Rooms that
// only carry counts cannot say which slot is taken and are skipped.
func (b *Board) invalidate(p *models.AvailabilityPayload) {
	for _, rt := range p.RoomTypes {
		if rt.HasSlotDetail() {
			b.sel.InvalidateIfReserved(rt.ID, rt.Reserved())
		}
	}
}

func (b *Board) loadFailed(err error) {
	b.logger.Warn("availability load failed", zap.String("date", b.date), zap.Int("room_type_id", b.focus), zap.Error(err))
	b.status = StatusFailed
	msg := gateway.ServerMessage(err)
	if msg == "" {
		msg = loadFailedMessage
	}
	if b.notifier != nil {
		b.notifier.Notify(msg, workflow.VariantDanger)
	}
	b.render()
}

func (b *Board) busy() bool {
	return b.reserving || b.seq.Busy()
}

// payloadFor prefers the detail payload for the focused room.
func (b *Board) payloadFor(roomTypeID int) *models.AvailabilityPayload {
	if roomTypeID != 0 && roomTypeID == b.focus && b.detail != nil {
		return b.detail
	}
	return b.summary
}

func (b *Board) screen() models.Screen {
	sel := b.sel.Current()
	busy := b.busy()
	s := models.Screen{
		Date:   b.date,
		Filter: b.filter,
		Status: b.status,
		Busy:   busy,
		Matrix: render.Matrix(b.summary, b.filter, sel),
		Cards:  render.Cards(b.summary, b.filter, sel, busy),
	}
	if sel != nil {
		s.Summary = render.Summary(b.payloadFor(sel.RoomTypeID), sel)
	} else {
		s.Summary = render.NoSelectionText
	}
	if b.focus != 0 && b.detail != nil {
		if rt, ok := b.detail.Room(b.focus); ok {
			card := render.Card(b.detail, rt, sel, busy)
			s.Focus = &card
		}
	}
	return s
}

func (b *Board) render() {
	if len(b.displays) == 0 {
		return
	}
	s := b.screen()
	for _, d := range b.displays {
		d.Render(s)
	}
}

// guard recovers a panicking background entry point and puts the board back
// into an interactive state.
func (b *Board) guard(op string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("availability board panic", zap.String("op", op), zap.Any("panic", r))
			b.restore()
		}
	}()
	fn()
}

func (b *Board) restore() {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("availability board restore failed", zap.Any("panic", r))
		}
	}()
	b.loop.Do(func() {
		b.reserving = false
		b.status = StatusFailed
		b.render()
	})
}

func payloadDate(l loaded) string {
	if l.payload != nil && l.payload.Date != "" {
		return l.payload.Date
	}
	return l.key.Date
}
