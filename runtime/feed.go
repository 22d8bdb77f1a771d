// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import "sync"

// outcomeFeed fans executed receipt outcomes out to listeners.
type outcomeFeed struct {
	mu        sync.RWMutex
	listeners map[chan<- *ReceiptOutcome]struct{}
}

func (f *outcomeFeed) subscribe(ch chan<- *ReceiptOutcome) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listeners == nil {
		f.listeners = make(map[chan<- *ReceiptOutcome]struct{})
	}
	f.listeners[ch] = struct{}{}
}

func (f *outcomeFeed) unsubscribe(ch chan<- *ReceiptOutcome) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.listeners, ch)
}

func (f *outcomeFeed) send(out *ReceiptOutcome) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for lsn := range f.listeners {
		select {
		case lsn <- out:
		default: // non-blocking, slow listeners miss outcomes
			metricDroppedOutcomes().Add(1)
		}
	}
}

// SubscribeOutcomes registers ch to receive every receipt outcome executed from now on.
// Delivery is non-blocking: outcomes are dropped when ch is full.
func (rt *Runtime) SubscribeOutcomes(ch chan<- *ReceiptOutcome) {
	rt.feed.subscribe(ch)
}

// UnsubscribeOutcomes removes a channel registered with SubscribeOutcomes.
func (rt *Runtime) UnsubscribeOutcomes(ch chan<- *ReceiptOutcome) {
	rt.feed.unsubscribe(ch)
}
