package syncer

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// openStream opens a change subscription.
type openStream func(ctx context.Context) (ChangeStream, error)

// handleEvent processes one decoded delivery. It must not panic and must
// absorb its own errors; the loop keeps consuming regardless.
type handleEvent func(ctx context.Context, ev ChangeEvent)

// streamConsumer runs one change-capture loop with bounded reconnection. A
// dead stream is reopened with exponential backoff; after retryMax failed
// opens in a row the consumer gives up and real-time sync degrades to
// reconciliation-only until the service restarts.
type streamConsumer struct {
	name      string
	open      openStream
	handle    handleEvent
	retryMax  int
	retryBase time.Duration
	log       zerolog.Logger

	active atomic.Bool
}

// Active reports whether a subscription is currently open.
func (c *streamConsumer) Active() bool { return c.active.Load() }

// Run consumes events until ctx is cancelled or reconnection is exhausted.
// A generation that opens but dies without delivering a single event counts
// as a failed attempt too, otherwise an immediately invalidated cursor would
// be reopened in a hot loop.
func (c *streamConsumer) Run(ctx context.Context) {
	attempts := 0
	for {
		if ctx.Err() != nil {
			return
		}
		stream, err := c.open(ctx)
		if err != nil {
			attempts++
			if !c.retry(ctx, attempts, err) {
				return
			}
			continue
		}

		c.log.Info().Str("stream", c.name).Msg("change stream watching")
		c.active.Store(true)
		delivered, streamErr := c.consume(ctx, stream)
		c.active.Store(false)

		if ctx.Err() != nil {
			return
		}
		if delivered {
			attempts = 0
			c.log.Warn().Str("stream", c.name).Msg("change stream closed, reopening")
			continue
		}
		attempts++
		if !c.retry(ctx, attempts, streamErr) {
			return
		}
	}
}

// retry sleeps the exponential backoff for the given attempt. Returns false
// when the attempt count is exhausted or ctx is cancelled, true when the
// caller should reopen.
func (c *streamConsumer) retry(ctx context.Context, attempts int, cause error) bool {
	if attempts > c.retryMax {
		c.log.Error().Err(cause).Str("stream", c.name).Msg("change stream reconnection exhausted, real-time sync degraded to reconciliation-only")
		return false
	}
	delay := c.retryBase << (attempts - 1)
	c.log.Warn().Err(cause).Str("stream", c.name).Int("attempt", attempts).Dur("retry_in", delay).Msg("change stream reopening")
	select {
	case <-ctx.Done():
		return false
	case <-time.After(delay):
		return true
	}
}

// consume drains one open stream. Returns whether at least one event was
// delivered, which resets the reconnection attempt counter, along with the
// stream error that ended the generation, if any.
func (c *streamConsumer) consume(ctx context.Context, stream ChangeStream) (bool, error) {
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := stream.Close(closeCtx); err != nil {
			c.log.Warn().Err(err).Str("stream", c.name).Msg("change stream close failed")
		}
	}()

	delivered := false
	for stream.Next(ctx) {
		var ev ChangeEvent
		if err := stream.Decode(&ev); err != nil {
			c.log.Error().Err(err).Str("stream", c.name).Msg("change event decode failed")
			continue
		}
		delivered = true
		c.handle(ctx, ev)
	}
	streamErr := stream.Err()
	if streamErr != nil && ctx.Err() == nil {
		c.log.Error().Err(streamErr).Str("stream", c.name).Msg("change stream error")
	}
	return delivered, streamErr
}
