// Package sequencer issues cancellable requests per logical channel and makes
// sure only the latest request on a channel is ever applied.
package sequencer

import (
	"context"
	"errors"
	"sync"

	"roombooking/services/loop"
	"roombooking/utils"

	"go.uber.org/zap"
)

// Token identifies one request on a channel. Tokens grow monotonically.
type Token uint64

type channel struct {
	seq    Token
	active Token // 0 when nothing is outstanding
	cancel context.CancelFunc
}

type Sequencer struct {
	loop   *loop.Loop
	logger *zap.Logger

	mu       sync.Mutex
	channels map[string]*channel
}

func New(l *loop.Loop, logger *zap.Logger) *Sequencer {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &Sequencer{loop: l, logger: logger, channels: make(map[string]*channel)}
}

// Call describes one request. Start and Apply run inside the loop; Fetch runs
// outside it with a context that is cancelled once the call is superseded.
type Call[T any] struct {
	Channel string
	Start   func()
	Fetch   func(ctx context.Context) (T, error)
	Apply   func(v T, err error)
}

// Run issues c, superseding whatever its channel had in flight, and blocks
// until the fetch returns. Apply is skipped when a newer request was issued in
// the meantime or when the fetch was cancelled; neither case is an error.
// Run must not be called from inside the loop.
func Run[T any](ctx context.Context, s *Sequencer, c Call[T]) bool {
	var (
		tok  Token
		rctx context.Context
	)
	s.loop.Do(func() {
		tok, rctx = s.begin(ctx, c.Channel)
		if c.Start != nil {
			c.Start()
		}
	})

	v, err := c.Fetch(rctx)

	applied := false
	s.loop.Do(func() {
		if !s.finish(c.Channel, tok) {
			s.logger.Debug("sequencer: dropped superseded response", zap.String("channel", c.Channel), zap.Uint64("token", uint64(tok)))
			return
		}
		if errors.Is(err, context.Canceled) {
			s.logger.Debug("sequencer: request cancelled", zap.String("channel", c.Channel), zap.Uint64("token", uint64(tok)))
			return
		}
		if c.Apply != nil {
			c.Apply(v, err)
		}
		applied = true
	})
	return applied
}

func (s *Sequencer) begin(ctx context.Context, name string) (Token, context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := s.channel(name)
	if ch.cancel != nil {
		ch.cancel()
	}
	ch.seq++
	rctx, cancel := context.WithCancel(ctx)
	ch.cancel = cancel
	ch.active = ch.seq
	s.logger.Debug("sequencer: request issued", zap.String("channel", name), zap.Uint64("token", uint64(ch.seq)))
	return ch.seq, rctx
}

// finish reports whether tok is still the latest request on the channel and,
// if so, marks the channel idle.
func (s *Sequencer) finish(name string, tok Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := s.channel(name)
	if ch.seq != tok {
		return false
	}
	ch.active = 0
	if ch.cancel != nil {
		ch.cancel()
		ch.cancel = nil
	}
	return true
}

func (s *Sequencer) channel(name string) *channel {
	ch, ok := s.channels[name]
	if !ok {
		ch = &channel{}
		s.channels[name] = ch
	}
	return ch
}

// Cancel aborts the channel's outstanding request; its result will be dropped.
func (s *Sequencer) Cancel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := s.channel(name)
	if ch.cancel != nil {
		ch.cancel()
		ch.cancel = nil
	}
	if ch.active != 0 {
		ch.seq++
		ch.active = 0
	}
}

// CancelAll aborts every channel.
func (s *Sequencer) CancelAll() {
	s.mu.Lock()
	names := make([]string, 0, len(s.channels))
	for name := range s.channels {
		names = append(names, name)
	}
	s.mu.Unlock()
	for _, name := range names {
		s.Cancel(name)
	}
}

// Pending reports whether the channel has a request outstanding.
func (s *Sequencer) Pending(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.channels[name]
	return ok && ch.active != 0
}

// Busy reports whether any channel has a request outstanding.
func (s *Sequencer) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.channels {
		if ch.active != 0 {
			return true
		}
	}
	return false
}

// Latest returns the newest token issued on the channel.
func (s *Sequencer) Latest(name string) Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.channels[name]; ok {
		return ch.seq
	}
	return 0
}
