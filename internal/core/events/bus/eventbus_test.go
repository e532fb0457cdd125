package bus

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testObserver struct {
	publishCount   int
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnPublish(_ string, _ Event) {
	o.publishCount++
}

func (o *testObserver) OnDelivered(_ string, handlers int, err error, _ time.Duration) {
	o.deliveredCount += handlers
	o.lastErr = err
}

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got Event
	_, err := b.Subscribe(EventLoadingStarted, func(e Event) error {
		got = e
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent(EventLoadingStarted, "tester", 123)))
	require.NotNil(t, got)
	assert.Equal(t, "tester", got.Source())
	assert.Equal(t, 123, got.Data())
}

func TestHandlersRunInSubscriptionOrder(t *testing.T) {
	b := New()
	var order []int
	for i := 0; i < 5; i++ {
		_, err := b.Subscribe("ev", func(Event) error {
			order = append(order, i)
			return nil
		})
		require.NoError(t, err)
	}

	require.NoError(t, b.Publish(NewEvent("ev", "src", nil)))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestPublishJoinsHandlerErrors(t *testing.T) {
	b := New()
	first := errors.New("first")
	second := errors.New("second")
	calls := 0
	_, _ = b.Subscribe("ev", func(Event) error { calls++; return first })
	_, _ = b.Subscribe("ev", func(Event) error { calls++; return nil })
	_, _ = b.Subscribe("ev", func(Event) error { calls++; return second })

	err := b.Publish(NewEvent("ev", "src", nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
	assert.Equal(t, 3, calls, "a failing handler must not stop later ones")
}

func TestCancelStopsDelivery(t *testing.T) {
	b := New()
	count := 0
	sub, err := b.Subscribe("ev", func(Event) error { count++; return nil })
	require.NoError(t, err)

	_ = b.Publish(NewEvent("ev", "src", nil))
	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, sub.Cancel())
	_ = b.Publish(NewEvent("ev", "src", nil))

	assert.Equal(t, 1, count)
	assert.False(t, sub.IsActive())
	assert.Empty(t, b.EventTypes())
}

func TestCancelInsideHandler(t *testing.T) {
	b := New()
	var sub Subscription
	count := 0
	sub, _ = b.Subscribe("ev", func(Event) error {
		count++
		return sub.Cancel()
	})

	_ = b.Publish(NewEvent("ev", "src", nil))
	_ = b.Publish(NewEvent("ev", "src", nil))
	assert.Equal(t, 1, count)
}

func TestSubscribeValidation(t *testing.T) {
	b := New()
	_, err := b.Subscribe("", func(Event) error { return nil })
	assert.ErrorIs(t, err, ErrEmptyType)
	_, err = b.Subscribe("ev", nil)
	assert.ErrorIs(t, err, ErrNilHandler)
}

func TestClose(t *testing.T) {
	b := New()
	sub, _ := b.Subscribe("ev", func(Event) error { return nil })

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	assert.False(t, sub.IsActive())
	assert.ErrorIs(t, b.Publish(NewEvent("ev", "src", nil)), ErrBusClosed)
	_, err := b.Subscribe("ev", func(Event) error { return nil })
	assert.ErrorIs(t, err, ErrBusClosed)
}

func TestPublishWithFilters(t *testing.T) {
	b := New()
	obs := &testObserver{}
	b.AddObserver(obs)
	count := 0
	_, _ = b.Subscribe("ev", func(Event) error { count++; return nil })

	reject := func(Event) bool { return false }
	require.NoError(t, b.PublishWithFilters(NewEvent("ev", "src", nil), reject))
	assert.Equal(t, 0, count)
	assert.EqualValues(t, 1, b.GetMetrics().DroppedByFilters)
}

func TestObserverMetricsOptional(t *testing.T) {
	b := New()
	_, _ = b.Subscribe("e", func(Event) error { return nil })
	_ = b.Publish(NewEvent("e", "s", nil))
	m := b.GetMetrics()
	assert.Zero(t, m.Published)
	assert.Zero(t, m.DeliveredHandlers)

	obs := &testObserver{}
	b.AddObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil))
	m = b.GetMetrics()
	assert.EqualValues(t, 1, m.Published)
	assert.EqualValues(t, 1, m.DeliveredHandlers)
	assert.EqualValues(t, 1, m.SubscribersActive)
	assert.Equal(t, 1, obs.publishCount)
	assert.Equal(t, 1, obs.deliveredCount)

	b.RemoveObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil))
	assert.Equal(t, 1, obs.publishCount)
}

func TestConcurrentPublishSubscribe(t *testing.T) {
	b := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sub, err := b.Subscribe("ev", func(Event) error { return nil })
			if err == nil {
				_ = sub.Cancel()
			}
		}()
		go func() {
			defer wg.Done()
			_ = b.Publish(NewEvent("ev", "src", nil))
		}()
	}
	wg.Wait()
}
