// internal/store/hub.go
//
// In-process snapshot fan-out shared by the store implementations. Every
// committed room is published to that room's subscribers as a full-state
// snapshot; a slow subscriber drops its oldest undelivered snapshot rather
// than blocking the commit path.

package store

import (
	"sync"

	"github.com/signullgame/server/internal/game"
)

const subscriberBuffer = 16

type hub struct {
	mu   sync.Mutex
	subs map[string]map[chan *game.Room]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[chan *game.Room]struct{})}
}

func (h *hub) subscribe(code string) (<-chan *game.Room, func()) {
	ch := make(chan *game.Room, subscriberBuffer)
	h.mu.Lock()
	if h.subs[code] == nil {
		h.subs[code] = make(map[chan *game.Room]struct{})
	}
	h.subs[code][ch] = struct{}{}
	h.mu.Unlock()

	// Removing the channel from the map is the single commit point for
	// closing it, so cancel and dropRoom cannot double-close.
	cancel := func() {
		h.mu.Lock()
		set, ok := h.subs[code]
		if _, member := set[ch]; !ok || !member {
			h.mu.Unlock()
			return
		}
		delete(set, ch)
		if len(set) == 0 {
			delete(h.subs, code)
		}
		h.mu.Unlock()
		close(ch)
	}
	return ch, cancel
}

// publish fans a committed snapshot out to the room's subscribers. Each
// subscriber gets its own deep copy so later mutations cannot alias it.
func (h *hub) publish(r *game.Room) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[r.Code] {
		snap := r.Clone()
		for {
			select {
			case ch <- snap:
			default:
				// Full buffer: drop the oldest snapshot and try again.
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
}

// dropRoom closes out subscriptions for a deleted room.
func (h *hub) dropRoom(code string) {
	h.mu.Lock()
	chans := h.subs[code]
	delete(h.subs, code)
	h.mu.Unlock()
	for ch := range chans {
		close(ch)
	}
}
