// Package event implements a synchronous broadcast used to tell interested
// components that the host network changed.
package event

import (
	"sync"

	"github.com/sagernet/sing/common/x/list"
)

type Callback = func()

type Event struct {
	access    sync.Mutex
	callbacks list.List[Callback]
}

func New() *Event {
	return &Event{}
}

// Subscribe registers callback for every future Fire until the returned
// subscription is closed.
func (e *Event) Subscribe(callback Callback) *Subscription {
	e.access.Lock()
	defer e.access.Unlock()
	return &Subscription{
		event:   e,
		element: e.callbacks.PushBack(callback),
	}
}

// Fire calls the current subscribers in subscription order and returns
// after the last one returns. Callbacks run without the lock held and may
// subscribe or unsubscribe; such changes apply from the next Fire.
func (e *Event) Fire() {
	e.access.Lock()
	callbacks := e.callbacks.Array()
	e.access.Unlock()
	for _, callback := range callbacks {
		callback()
	}
}

func (e *Event) Len() int {
	e.access.Lock()
	defer e.access.Unlock()
	return e.callbacks.Len()
}

type Subscription struct {
	event   *Event
	element *list.Element[Callback]
	once    sync.Once
}

func (s *Subscription) Close() error {
	s.once.Do(func() {
		s.event.access.Lock()
		s.event.callbacks.Remove(s.element)
		s.event.access.Unlock()
	})
	return nil
}
