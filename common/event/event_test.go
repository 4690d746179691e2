package event

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFireOrder(t *testing.T) {
	t.Parallel()
	event := New()
	var calls []int
	for i := 0; i < 3; i++ {
		index := i
		event.Subscribe(func() {
			calls = append(calls, index)
		})
	}
	event.Fire()
	require.Equal(t, []int{0, 1, 2}, calls)
}

func TestSubscriptionClose(t *testing.T) {
	t.Parallel()
	event := New()
	var first, second int
	subscription := event.Subscribe(func() { first++ })
	event.Subscribe(func() { second++ })
	event.Fire()
	require.NoError(t, subscription.Close())
	require.NoError(t, subscription.Close())
	event.Fire()
	require.Equal(t, 1, first)
	require.Equal(t, 2, second)
	require.Equal(t, 1, event.Len())
}

func TestUnsubscribeDuringFire(t *testing.T) {
	t.Parallel()
	event := New()
	var count int
	var subscription *Subscription
	subscription = event.Subscribe(func() {
		count++
		subscription.Close()
	})
	event.Fire()
	event.Fire()
	require.Equal(t, 1, count)
}

func TestConcurrentFire(t *testing.T) {
	t.Parallel()
	event := New()
	var access sync.Mutex
	var count int
	event.Subscribe(func() {
		access.Lock()
		count++
		access.Unlock()
	})
	var group sync.WaitGroup
	for i := 0; i < 16; i++ {
		group.Add(1)
		go func() {
			defer group.Done()
			event.Fire()
		}()
	}
	group.Wait()
	require.Equal(t, 16, count)
}
