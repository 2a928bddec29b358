package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRecords(n int) []json.RawMessage {
	records := make([]json.RawMessage, n)
	for i := range records {
		records[i] = json.RawMessage(fmt.Sprintf(`{"i":%d}`, i))
	}
	return records
}

func TestChunk(t *testing.T) {
	for _, n := range []int{0, 1, 99, 100, 101, 199, 200, 250, 300, 1001} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			records := makeRecords(n)
			batches := chunk(records, 100)

			require.Len(t, batches, (n+99)/100)

			var joined []json.RawMessage
			for i, b := range batches {
				if i < len(batches)-1 {
					assert.Len(t, b, 100)
				} else {
					assert.NotEmpty(t, b)
					assert.LessOrEqual(t, len(b), 100)
				}
				joined = append(joined, b...)
			}
			if n == 0 {
				assert.Empty(t, joined)
				return
			}
			assert.Equal(t, records, joined)
		})
	}
}

func TestChunk_DefaultSize(t *testing.T) {
	assert.Len(t, chunk(makeRecords(250), 0), 3)
}

func TestChunk_BatchesDoNotShareTail(t *testing.T) {
	batches := chunk(makeRecords(3), 2)
	require.Len(t, batches, 2)

	grown := append(batches[0], json.RawMessage(`{"x":1}`))
	assert.Equal(t, json.RawMessage(`{"i":2}`), batches[1][0])
	assert.Len(t, grown, 3)
}

// fakeCaller records the size of every batch it is given.
type fakeCaller struct {
	events *[]string
	sizes  []int
	failOn int
	err    error
}

func (f *fakeCaller) Call(_ context.Context, batch []json.RawMessage) (Response, error) {
	f.sizes = append(f.sizes, len(batch))
	n := len(f.sizes)
	*f.events = append(*f.events, fmt.Sprintf("call %d", len(batch)))
	if n == f.failOn {
		return nil, f.err
	}
	text := fmt.Sprintf("```\nbatch %d\n```", n)
	return Response{
		"id":          fmt.Sprintf("resp_%d", n),
		"output":      []any{map[string]any{"content": []any{map[string]any{"text": text}}}},
		"output_text": text,
		"usage":       map[string]any{"input_tokens": int64(len(batch)), "output_tokens": int64(1), "total_tokens": int64(len(batch) + 1)},
	}, nil
}

func recordSleep(events *[]string) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*events = append(*events, "sleep "+d.String())
		return nil
	}
}

func TestDispatcherSend(t *testing.T) {
	var events []string
	caller := &fakeCaller{events: &events}
	d := newDispatcher(caller, time.Second, nil, zerolog.Nop())
	d.sleep = recordSleep(&events)

	responses, err := d.send(context.Background(), chunk(makeRecords(250), 100))
	require.NoError(t, err)

	require.Len(t, responses, 3)
	assert.Equal(t, []int{100, 100, 50}, caller.sizes)
	assert.Equal(t, []string{
		"call 100", "sleep 1s",
		"call 100", "sleep 1s",
		"call 50",
	}, events)
	assert.Equal(t, "resp_3", responses[2]["id"])
}

func TestDispatcherSend_SingleBatchNoPause(t *testing.T) {
	var events []string
	d := newDispatcher(&fakeCaller{events: &events}, time.Second, nil, zerolog.Nop())
	d.sleep = recordSleep(&events)

	_, err := d.send(context.Background(), chunk(makeRecords(5), 100))
	require.NoError(t, err)
	assert.Equal(t, []string{"call 5"}, events)
}

func TestDispatcherSend_StopsOnFirstError(t *testing.T) {
	boom := errors.New("boom")
	var events []string
	caller := &fakeCaller{events: &events, failOn: 2, err: boom}
	d := newDispatcher(caller, time.Second, nil, zerolog.Nop())
	d.sleep = recordSleep(&events)

	responses, err := d.send(context.Background(), chunk(makeRecords(250), 100))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "batch 2/3")
	assert.Nil(t, responses)
	assert.Equal(t, []string{"call 100", "sleep 1s", "call 100"}, events)
}

func TestSleepContext(t *testing.T) {
	require.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
