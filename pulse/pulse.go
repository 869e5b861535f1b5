/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package pulse carries timing pulse edges from a hardware or software
// clock source to the telegram scheduler.
package pulse

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// Edge is a single timing pulse event.
type Edge struct {
	// Tick is the monotonic timestamp taken at the moment of the edge.
	Tick time.Time
}

// Notifier is a single-slot edge mailbox. Notify never blocks: an
// unconsumed edge is overwritten, so a consumer that falls behind wakes
// with the most recent edge and never replays stale ones.
type Notifier struct {
	slot chan Edge
}

// NewNotifier creates an empty mailbox.
func NewNotifier() *Notifier {
	return &Notifier{slot: make(chan Edge, 1)}
}

// Notify publishes e, replacing any unconsumed edge.
func (n *Notifier) Notify(e Edge) {
	for {
		select {
		case n.slot <- e:
			return
		default:
		}
		select {
		case <-n.slot:
		default:
		}
	}
}

// Wait blocks until an edge is available and consumes it.
func (n *Notifier) Wait() Edge {
	return <-n.slot
}

// Ticker synthesizes pulse edges from a software timer. It stands in
// for an external RTC/GPS pulse output on hosts that have none wired.
type Ticker struct {
	period   time.Duration
	notifier *Notifier
	stop     chan struct{}
	done     chan struct{}
}

// NewTicker creates a software pulse source feeding n every period.
func NewTicker(period time.Duration, n *Notifier) *Ticker {
	return &Ticker{
		period:   period,
		notifier: n,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the tick loop.
func (t *Ticker) Start() {
	log.Debugf("pulse ticker started, period %v", t.period)
	go func() {
		tk := time.NewTicker(t.period)
		defer tk.Stop()
		defer close(t.done)
		for {
			select {
			case now := <-tk.C:
				t.notifier.Notify(Edge{Tick: now})
			case <-t.stop:
				return
			}
		}
	}()
}

// Stop terminates the tick loop and waits for it to exit.
func (t *Ticker) Stop() {
	close(t.stop)
	<-t.done
}
