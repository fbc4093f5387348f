package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanBroker struct {
	ch chan []byte
}

func (b *chanBroker) Publish(_ context.Context, _ string, payload []byte) error {
	b.ch <- payload
	return nil
}

func (b *chanBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return b.ch, nil
}

func (b *chanBroker) Close() error {
	close(b.ch)
	return nil
}

func TestConsume_DeliversUntilClosed(t *testing.T) {
	b := &chanBroker{ch: make(chan []byte, 3)}
	ctx := context.Background()
	require.NoError(t, b.Publish(ctx, "c", []byte("one")))
	require.NoError(t, b.Publish(ctx, "c", []byte("bad")))
	require.NoError(t, b.Publish(ctx, "c", []byte("two")))
	require.NoError(t, b.Close())

	var got []string
	var errs []error
	err := Consume(ctx, b, "c", func(_ context.Context, p []byte) error {
		if string(p) == "bad" {
			return errors.New("cannot decode")
		}
		got = append(got, string(p))
		return nil
	}, func(err error) { errs = append(errs, err) })

	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, got)
	assert.Len(t, errs, 1)
}

func TestConsume_StopsOnContextCancel(t *testing.T) {
	b := &chanBroker{ch: make(chan []byte)}
	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, Consume(ctx, b, "c", func(context.Context, []byte) error { return nil }, nil))
	}()

	cancel()

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Consume did not return after cancel")
	}
}

func TestConsume_SubscribeError(t *testing.T) {
	err := Consume(context.Background(), failingBroker{}, "c", nil, nil)
	assert.EqualError(t, err, "subscribe failed")
}

type failingBroker struct{}

func (failingBroker) Publish(context.Context, string, []byte) error { return nil }
func (failingBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, errors.New("subscribe failed")
}
func (failingBroker) Close() error { return nil }
