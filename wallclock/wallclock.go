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

// Package wallclock supplies current local time and the synchronization
// confidence from which the telegram monitoring character is derived.
package wallclock

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/clockfeed/if482/telegram"
)

// DefaultHoldover is how long after losing synchronization the time is
// still announced as good. Matches the IF482 'M' semantics of "no time
// signal for over 12 hours".
const DefaultHoldover = 12 * time.Hour

// Source is what the scheduler queries once per emission cycle.
// Both methods must return in microseconds and never block; anything
// slower eats into the telegram jitter budget.
type Source interface {
	Now() time.Time
	Status() telegram.SyncStatus
}

// System reads the system clock and derives sync confidence from the
// kernel NTP state via a read-only adjtimex call.
type System struct {
	tz       *time.Location
	holdover time.Duration

	mu         sync.Mutex
	lastSynced time.Time
	everSynced bool

	adjtimex func(*unix.Timex) (int, error)
}

// NewSystem creates a system clock source rendering time in tz.
// A nil tz means local time, holdover <= 0 means DefaultHoldover.
func NewSystem(tz *time.Location, holdover time.Duration) *System {
	if tz == nil {
		tz = time.Local
	}
	if holdover <= 0 {
		holdover = DefaultHoldover
	}
	return &System{tz: tz, holdover: holdover, adjtimex: unix.Adjtimex}
}

// Now returns the current time in the configured location.
func (s *System) Now() time.Time {
	return time.Now().In(s.tz)
}

// Status maps the kernel NTP state to a telegram.SyncStatus. The clock
// counts as Confident while the kernel reports it synchronized or for
// the holdover window after the last successful sync; StaleButSet once
// that window has expired; Unknown if the kernel never synchronized.
func (s *System) Status() telegram.SyncStatus {
	tx := &unix.Timex{}
	_, err := s.adjtimex(tx)
	synced := err == nil && tx.Status&unix.STA_UNSYNC == 0

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if synced {
		s.lastSynced = now
		s.everSynced = true
		return telegram.Confident
	}
	if !s.everSynced {
		return telegram.Unknown
	}
	if now.Sub(s.lastSynced) <= s.holdover {
		return telegram.Confident
	}
	return telegram.StaleButSet
}
