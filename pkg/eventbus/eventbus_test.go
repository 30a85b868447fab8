package eventbus

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type testEvent struct{ name string }

func (e testEvent) Name() string { return e.name }

func TestBus_PublishReachesSubscribers(t *testing.T) {
	bus := New(zap.NewNop())
	var calls atomic.Int32

	bus.Subscribe("paper.created", func(ctx context.Context, e Event) error {
		calls.Add(1)
		return nil
	})
	bus.Subscribe("paper.created", func(ctx context.Context, e Event) error {
		calls.Add(1)
		return errors.New("ошибка слушателя не роняет шину")
	})
	bus.Subscribe("paper.deleted", func(ctx context.Context, e Event) error {
		calls.Add(100)
		return nil
	})

	bus.Publish(context.Background(), testEvent{name: "paper.created"})
	bus.Wait()

	assert.Equal(t, int32(2), calls.Load())
}
