package messaging_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/serroba/shortlink/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRunnable struct {
	started     atomic.Bool
	stopped     atomic.Bool
	startErr    error
	shutdownErr error
}

func (f *fakeRunnable) Start(context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}

	f.started.Store(true)

	return nil
}

func (f *fakeRunnable) Shutdown() error {
	f.stopped.Store(true)

	return f.shutdownErr
}

func TestConsumerGroup(t *testing.T) {
	t.Run("starts and stops every consumer", func(t *testing.T) {
		sub := newChannelSubscriber()
		group := messaging.NewConsumerGroup(sub, zap.NewNop())
		a, b := &fakeRunnable{}, &fakeRunnable{}

		group.Add(a, b)

		require.NoError(t, group.Start(context.Background()))
		assert.True(t, a.started.Load())
		assert.True(t, b.started.Load())

		require.NoError(t, group.Shutdown())
		assert.True(t, a.stopped.Load())
		assert.True(t, b.stopped.Load())
		assert.True(t, sub.closed)
	})

	t.Run("stops started consumers when one fails to start", func(t *testing.T) {
		group := messaging.NewConsumerGroup(newChannelSubscriber(), zap.NewNop())
		ok := &fakeRunnable{}
		bad := &fakeRunnable{startErr: errors.New("no topic")}
		never := &fakeRunnable{}

		group.Add(ok, bad, never)

		require.Error(t, group.Start(context.Background()))
		assert.True(t, ok.stopped.Load())
		assert.False(t, bad.started.Load())
		assert.False(t, never.started.Load())
		assert.False(t, never.stopped.Load())
	})

	t.Run("shutdown reports failures but stops everything", func(t *testing.T) {
		group := messaging.NewConsumerGroup(newChannelSubscriber(), zap.NewNop())
		boom := errors.New("stuck")
		a := &fakeRunnable{shutdownErr: boom}
		b := &fakeRunnable{}

		group.Add(a, b)
		_ = group.Start(context.Background())

		err := group.Shutdown()

		require.ErrorIs(t, err, boom)
		assert.True(t, a.stopped.Load())
		assert.True(t, b.stopped.Load())
	})
}
