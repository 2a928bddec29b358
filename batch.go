package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultChunkSize = 100
	defaultDelay     = time.Second
)

// chunk splits records into consecutive batches of at most size elements.
func chunk(records []json.RawMessage, size int) [][]json.RawMessage {
	if size <= 0 {
		size = defaultChunkSize
	}

	var batches [][]json.RawMessage
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		batches = append(batches, records[start:end:end])
	}
	return batches
}

type dispatcher struct {
	caller   Caller
	delay    time.Duration
	sleep    func(context.Context, time.Duration) error
	progress *progressBar
	log      zerolog.Logger
}

func newDispatcher(caller Caller, delay time.Duration, progress *progressBar, log zerolog.Logger) *dispatcher {
	return &dispatcher{
		caller:   caller,
		delay:    delay,
		sleep:    sleepContext,
		progress: progress,
		log:      log,
	}
}

// send calls every batch in order, pausing between calls. The first failure
// ends the run and the replies collected so far are dropped.
func (d *dispatcher) send(ctx context.Context, batches [][]json.RawMessage) ([]Response, error) {
	total := len(batches)
	responses := make([]Response, 0, total)

	for i, batch := range batches {
		n := i + 1
		d.log.Info().Int("batch", n).Int("total", total).Int("items", len(batch)).Msg("sending batch")

		start := time.Now()
		resp, err := d.caller.Call(ctx, batch)
		elapsed := time.Since(start)
		if err != nil {
			ev := d.log.Error().Err(err).Int("batch", n).Int("total", total)
			if status := apiStatus(err); status != 0 {
				ev = ev.Int("status", status)
			}
			ev.Msg("batch failed")
			return nil, fmt.Errorf("batch %d/%d: %w", n, total, err)
		}

		d.log.Info().Int("batch", n).Int("total", total).Dur("elapsed", elapsed).Msg("batch done")
		d.progress.step(n, total)
		responses = append(responses, resp)

		if n < total && d.delay > 0 {
			d.log.Debug().Dur("delay", d.delay).Msg("waiting before next batch")
			if err := d.sleep(ctx, d.delay); err != nil {
				return nil, err
			}
		}
	}

	return responses, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
