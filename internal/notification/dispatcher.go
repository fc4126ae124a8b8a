package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const DefaultTimeout = 15 * time.Second

// Recorder receives the outcome of every send.
type Recorder interface {
	RecordNotification(kind string, err error)
}

// Dispatcher sends messages in the background. Failures are logged and
// dropped; the caller never waits.
type Dispatcher struct {
	sender   Sender
	timeout  time.Duration
	log      zerolog.Logger
	recorder Recorder
	wg       sync.WaitGroup
}

func NewDispatcher(sender Sender, timeout time.Duration, log zerolog.Logger, recorder Recorder) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{sender: sender, timeout: timeout, log: log, recorder: recorder}
}

// Dispatch sends msg on its own goroutine with its own deadline. onSent, if
// set, runs after a successful send with the same context.
func (d *Dispatcher) Dispatch(msg Message, onSent func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.Error().
					Str("kind", string(msg.Kind)).
					Int64("ad_id", msg.AdID).
					Str("panic", fmt.Sprintf("%v", r)).
					Msg("notification panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.Send(ctx, msg); err != nil {
			return
		}
		if onSent != nil {
			if err := onSent(ctx); err != nil {
				d.log.Warn().Err(err).
					Str("kind", string(msg.Kind)).
					Int64("ad_id", msg.AdID).
					Msg("notification sent but follow-up failed")
			}
		}
	}()
}

// Send delivers msg synchronously and logs a failure.
func (d *Dispatcher) Send(ctx context.Context, msg Message) error {
	err := d.sender.Send(ctx, msg)
	if d.recorder != nil {
		d.recorder.RecordNotification(string(msg.Kind), err)
	}
	if err != nil {
		d.log.Warn().Err(err).
			Str("kind", string(msg.Kind)).
			Int64("ad_id", msg.AdID).
			Str("to", msg.To).
			Msg("notification failed")
	}
	return err
}

// Wait blocks until every dispatched message has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
