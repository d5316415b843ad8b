package sheet

import (
	"sync/atomic"

	"github.com/katalvlaran/omredit/glyph"
	"github.com/katalvlaran/omredit/sig"
)

// Hint tells observers why a selection was published.
type Hint uint8

const (
	HintEditing Hint = iota // result of a gesture
	HintContext             // contextual highlight, e.g. relation drag
)

// Selection is what the editor wants observers to show.
type Selection struct {
	Hint   Hint
	Inters []*sig.Inter
	Glyph  *glyph.Glyph
}

// Broker fans selections out to subscribers.
//
// A single internal loop owns the subscriber set and the latest selection;
// public methods talk to it through channels. A slow subscriber misses
// events rather than blocking the loop.
type Broker struct {
	subscribeCh   chan chan Selection
	unsubscribeCh chan chan Selection
	publishCh     chan Selection
	lastReqCh     chan chan Selection

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker loop; Close stops it.
func NewBroker() *Broker {
	b := &Broker{
		subscribeCh:   make(chan chan Selection),
		unsubscribeCh: make(chan chan Selection),
		publishCh:     make(chan Selection),
		lastReqCh:     make(chan chan Selection),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan Selection]struct{})
	var last Selection

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case sel := <-b.publishCh:
			last = sel
			for ch := range clients {
				select {
				case ch <- sel:
				default:
				}
			}

		case resp := <-b.lastReqCh:
			resp <- last
		}
	}
}

// Close stops the loop and closes every subscriber channel.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe returns a channel receiving every later selection.
func (b *Broker) Subscribe() chan Selection {
	ch := make(chan Selection, 16)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(ch chan Selection) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// Publish broadcasts sel.
func (b *Broker) Publish(sel Selection) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- sel:
	case <-b.stopped:
	}
}

// PublishInters publishes an editing selection of inters.
func (b *Broker) PublishInters(inters ...*sig.Inter) {
	b.Publish(Selection{Hint: HintEditing, Inters: inters})
}

// PublishGlyph publishes a single glyph selection.
func (b *Broker) PublishGlyph(g *glyph.Glyph) {
	b.Publish(Selection{Hint: HintEditing, Glyph: g})
}

// Last returns the latest selection published, zero if none.
func (b *Broker) Last() Selection {
	if b.closed.Load() {
		return Selection{}
	}

	resp := make(chan Selection, 1)
	select {
	case b.lastReqCh <- resp:
	case <-b.stopped:
		return Selection{}
	}

	select {
	case sel := <-resp:
		return sel
	case <-b.stopped:
		return Selection{}
	}
}
