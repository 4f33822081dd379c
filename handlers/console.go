package handlers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"roombooking/models"
	"roombooking/services/availability"
	"roombooking/services/cache"
	"roombooking/services/gateway"
	"roombooking/services/render"
	"roombooking/services/workflow"
	"roombooking/utils"

	"go.uber.org/zap"
)

// ConsoleAPI is everything the console needs from the availability API.
type ConsoleAPI interface {
	gateway.AvailabilityAPI
	gateway.ReservationAPI
	gateway.ReservationLister
}

type ConsoleOptions struct {
	In       io.Reader
	Out      io.Writer
	API      ConsoleAPI
	Cache    cache.AvailabilityCache
	Debounce time.Duration
	LoginURL string
	Logger   *zap.Logger
	// Date is the day shown on open. Empty means today.
	Date string
}

// Console is a terminal page shell. It shows the availability board and,
// when opened, a reservation form, and reads one command per line.
type Console struct {
	in       *bufio.Scanner
	api      ConsoleAPI
	cache    cache.AvailabilityCache
	debounce time.Duration
	loginURL string
	logger   *zap.Logger
	board    *availability.Board

	mu        sync.Mutex
	out       io.Writer
	lastBoard string
	lastForm  string

	// only touched by the command goroutine
	form *availability.Form
}

func NewConsole(opts ConsoleOptions) *Console {
	if opts.Logger == nil {
		opts.Logger = utils.GetLogger()
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewMemoryCache()
	}
	c := &Console{
		in:       bufio.NewScanner(opts.In),
		out:      opts.Out,
		api:      opts.API,
		cache:    opts.Cache,
		debounce: opts.Debounce,
		loginURL: opts.LoginURL,
		logger:   opts.Logger,
	}
	c.board = availability.NewBoard(availability.BoardOptions{
		Availability: opts.API,
		Reservations: opts.API,
		Cache:        opts.Cache,
		Notifier:     c,
		Confirmer:    c,
		Navigator:    c,
		Debounce:     opts.Debounce,
		LoginURL:     opts.LoginURL,
		Logger:       opts.Logger,
	})
	c.board.AddDisplay(availability.DisplayFunc(c.renderBoard))
	if opts.Date == "" {
		opts.Date = time.Now().Format("2006-01-02")
	}
	if err := c.board.SetDate(opts.Date); err != nil {
		opts.Logger.Warn("console: initial date rejected", zap.String("date", opts.Date), zap.Error(err))
	}
	return c
}

func (c *Console) Board() *availability.Board {
	return c.board
}

// Notify prints "[variant] message".
func (c *Console) Notify(message string, variant workflow.Variant) {
	c.printf("[%s] %s\n", variant, message)
}

// Confirm asks on the console and reads the answer from the next input line.
func (c *Console) Confirm(ctx context.Context, opts workflow.ConfirmOptions) bool {
	if ctx.Err() != nil {
		return false
	}
	c.printf("%s: %s [y/N] ", opts.Title, opts.Body)
	if !c.in.Scan() {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(c.in.Text())) {
	case "y", "yes":
		return true
	}
	return false
}

// Redirect has no page to leave, so it only reports the target.
func (c *Console) Redirect(url string) {
	c.printf("-> %s\n", url)
}

// renderBoard runs inside the board's loop. Repeated screens are printed once.
func (c *Console) renderBoard(s models.Screen) {
	text := render.Text(s)
	c.mu.Lock()
	defer c.mu.Unlock()
	if text == c.lastBoard {
		return
	}
	c.lastBoard = text
	io.WriteString(c.out, text)
}

func (c *Console) renderForm(s models.FormScreen) {
	text := render.FormText(s)
	c.mu.Lock()
	defer c.mu.Unlock()
	if text == c.lastForm {
		return
	}
	c.lastForm = text
	io.WriteString(c.out, text)
}

func (c *Console) printf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// Run reads commands until quit, end of input or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	defer c.close()
	c.printf("Type help for the list of commands.\n")
	for ctx.Err() == nil {
		c.printf("> ")
		if !c.in.Scan() {
			return c.in.Err()
		}
		line := strings.TrimSpace(c.in.Text())
		if line == "" {
			continue
		}
		if quit := c.dispatch(ctx, line); quit {
			return nil
		}
	}
	return ctx.Err()
}

func (c *Console) close() {
	if c.form != nil {
		c.form.Close()
		c.form = nil
	}
	c.board.Close()
}

// dispatch runs one command line and reports whether the console should exit.
func (c *Console) dispatch(ctx context.Context, line string) bool {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("console command panic", zap.String("line", line), zap.Any("panic", r))
			c.printf("error: command failed\n")
		}
	}()
	cmd, rest, _ := strings.Cut(line, " ")
	args := strings.Fields(rest)
	cmd = strings.ToLower(cmd)

	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		c.help()
		return false
	}

	var err error
	if c.form != nil {
		err = c.formCommand(ctx, cmd, args)
	} else {
		err = c.boardCommand(ctx, cmd, rest, args)
	}
	if err != nil {
		c.printf("error: %v\n", err)
	}
	return false
}

func (c *Console) boardCommand(ctx context.Context, cmd, rest string, args []string) error {
	switch cmd {
	case "date":
		if len(args) != 1 {
			return errors.New("usage: date YYYY-MM-DD")
		}
		return c.board.SetDate(args[0])
	case "filter":
		return c.board.SetFilter(strings.TrimSpace(rest))
	case "focus":
		ids, err := ints(args, 1, "usage: focus ROOM (0 closes)")
		if err != nil {
			return err
		}
		return c.board.Focus(ctx, ids[0])
	case "select":
		ids, err := ints(args, 2, "usage: select ROOM SLOT")
		if err != nil {
			return err
		}
		return c.board.Select(ids[0], ids[1])
	case "reserve":
		return outcomeError(c.board.Reserve(ctx))
	case "reload":
		c.board.Reload(ctx, true)
		return nil
	case "show":
		c.forceBoard()
		return nil
	case "mine":
		return c.listMine(ctx)
	case "cancel":
		r, err := c.lookup(ctx, args, "usage: cancel ID")
		if err != nil {
			return err
		}
		return outcomeError(c.board.Cancel(ctx, r))
	case "new":
		in := models.ReservationInput{Date: c.board.Screen().Date}
		if len(args) > 0 {
			ids, err := ints(args[:1], 1, "usage: new [ROOM]")
			if err != nil {
				return err
			}
			in.RoomTypeID = ids[0]
		} else if focus := c.board.Screen().Focus; focus != nil {
			in.RoomTypeID = focus.RoomTypeID
		}
		c.openForm(ctx, 0, in)
		return nil
	case "edit":
		r, err := c.lookup(ctx, args, "usage: edit ID")
		if err != nil {
			return err
		}
		c.openForm(ctx, r.ID, models.ReservationInput{RoomTypeID: r.RoomTypeID, Date: r.Date, Slot: r.Slot})
		return nil
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func (c *Console) formCommand(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "room":
		ids, err := ints(args, 1, "usage: room ROOM")
		if err != nil {
			return err
		}
		return c.form.SetRoom(ids[0])
	case "date":
		if len(args) != 1 {
			return errors.New("usage: date YYYY-MM-DD")
		}
		return c.form.SetDate(args[0])
	case "slot":
		ids, err := ints(args, 1, "usage: slot SLOT")
		if err != nil {
			return err
		}
		return c.form.SetSlot(ids[0])
	case "submit":
		out := c.form.Submit(ctx)
		switch out.State {
		case workflow.Success:
			c.closeForm()
			c.board.Reload(ctx, true)
			return nil
		case workflow.Conflict:
			// The form reloads itself; the board behind it shows the same cache.
			c.board.Reload(ctx, true)
		}
		return outcomeError(out)
	case "show":
		c.mu.Lock()
		c.lastForm = ""
		c.mu.Unlock()
		s := c.form.Screen()
		c.renderForm(s)
		return nil
	case "back":
		c.closeForm()
		c.forceBoard()
		return nil
	}
	return fmt.Errorf("unknown form command %q (back returns to the board)", cmd)
}

func (c *Console) openForm(ctx context.Context, reservationID int, in models.ReservationInput) {
	c.mu.Lock()
	c.lastForm = ""
	c.mu.Unlock()
	c.form = availability.NewForm(availability.FormOptions{
		Availability:  c.api,
		Reservations:  c.api,
		Cache:         c.cache,
		Notifier:      c,
		Confirmer:     c,
		Navigator:     c,
		Debounce:      c.debounce,
		LoginURL:      c.loginURL,
		ReservationID: reservationID,
		Initial:       in,
		Logger:        c.logger,
	})
	c.form.AddDisplay(availability.FormDisplayFunc(c.renderForm))
	c.form.Reload(ctx, false)
}

func (c *Console) closeForm() {
	if c.form != nil {
		c.form.Close()
		c.form = nil
	}
}

func (c *Console) forceBoard() {
	c.mu.Lock()
	c.lastBoard = ""
	c.mu.Unlock()
	c.renderBoard(c.board.Screen())
}

func (c *Console) listMine(ctx context.Context) error {
	list, err := c.api.ListReservations(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		c.printf("No reservations.\n")
		return nil
	}
	for _, r := range list {
		c.printf("#%d %s %s %s\n", r.ID, r.RoomName, r.Date, r.SlotLabel)
	}
	return nil
}

// lookup finds one of the user's reservations by the id in args.
func (c *Console) lookup(ctx context.Context, args []string, usage string) (models.Reservation, error) {
	ids, err := ints(args, 1, usage)
	if err != nil {
		return models.Reservation{}, err
	}
	list, err := c.api.ListReservations(ctx)
	if err != nil {
		return models.Reservation{}, err
	}
	for _, r := range list {
		if r.ID == ids[0] {
			return r, nil
		}
	}
	return models.Reservation{}, fmt.Errorf("no reservation #%d", ids[0])
}

func (c *Console) help() {
	c.printf(`board: date D | filter TEXT | focus ROOM | select ROOM SLOT | reserve | reload | show
       mine | cancel ID | new [ROOM] | edit ID
form:  room ROOM | date D | slot SLOT | submit | show | back
any:   help | quit
`)
}

// outcomeError surfaces refusals. Server failures were already notified.
func outcomeError(out workflow.Outcome) error {
	if out.Err == nil || out.State != workflow.Idle {
		return nil
	}
	return out.Err
}

func ints(args []string, n int, usage string) ([]int, error) {
	if len(args) != n {
		return nil, errors.New(usage)
	}
	out := make([]int, n)
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, errors.New(usage)
		}
		out[i] = v
	}
	return out, nil
}
