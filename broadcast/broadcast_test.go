package broadcast_test

import (
	"testing"

	"github.com/jrsteele09/go-auth-client/broadcast"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToAllSubscribersInOrder(t *testing.T) {
	bus := broadcast.New()

	var delivered []string
	bus.Subscribe(func(broadcast.Event) { delivered = append(delivered, "first") })
	bus.Subscribe(func(broadcast.Event) { delivered = append(delivered, "second") })
	bus.Subscribe(func(broadcast.Event) { delivered = append(delivered, "third") })

	bus.Publish(broadcast.Event{})
	require.Equal(t, []string{"first", "second", "third"}, delivered)
}

func TestPublishDeliversExactlyOncePerSubscriber(t *testing.T) {
	bus := broadcast.New()

	counts := make([]int, 3)
	for i := range counts {
		i := i
		bus.Subscribe(func(broadcast.Event) { counts[i]++ })
	}

	bus.Publish(broadcast.Event{})
	require.Equal(t, []int{1, 1, 1}, counts)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := broadcast.New()

	var calls int
	sub := bus.Subscribe(func(broadcast.Event) { calls++ })

	bus.Publish(broadcast.Event{})
	require.Equal(t, 1, calls)

	sub.Unsubscribe()
	sub.Unsubscribe() // safe to release twice

	bus.Publish(broadcast.Event{})
	require.Equal(t, 1, calls)
	require.Equal(t, 0, bus.Len())
}

func TestPublishWithNoSubscribers(t *testing.T) {
	bus := broadcast.New()
	require.NotPanics(t, func() { bus.Publish(broadcast.Event{}) })
}

func TestHandlerMayUnsubscribeDuringDispatch(t *testing.T) {
	bus := broadcast.New()

	var calls int
	var sub *broadcast.Subscription
	sub = bus.Subscribe(func(broadcast.Event) {
		calls++
		sub.Unsubscribe()
	})

	bus.Publish(broadcast.Event{})
	bus.Publish(broadcast.Event{})
	require.Equal(t, 1, calls)
}
