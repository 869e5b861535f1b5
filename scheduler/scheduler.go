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

/*
Package scheduler emits one IF482 telegram per second, phase-locked to
an external pulse edge, so that the last byte of each telegram leaves
the transport exactly at the second boundary the telegram announces.
The worker compensates for pulse sources running faster or slower than
1 Hz and subtracts the transmit duration ahead of every boundary.
*/
package scheduler

import (
	"io"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/clockfeed/if482/pulse"
	"github.com/clockfeed/if482/stats"
	"github.com/clockfeed/if482/telegram"
	"github.com/clockfeed/if482/wallclock"
)

// State is the worker lifecycle state. It only ever moves forward:
// restarting a scheduler requires restarting the process.
type State int32

const (
	Uninitialized State = iota
	AwaitingFirstEdge
	Armed
)

var stateToString = map[State]string{
	Uninitialized:     "UNINITIALIZED",
	AwaitingFirstEdge: "AWAITING_FIRST_EDGE",
	Armed:             "ARMED",
}

func (s State) String() string {
	str, found := stateToString[s]
	if !found {
		return "UNSUPPORTED VALUE"
	}
	return str
}

// Scheduler is the single perpetual worker that converts pulse edges
// into correctly timed telegram writes. Only this worker ever touches
// the transport.
type Scheduler struct {
	// OnDrift, when set, is invoked once each time the run of
	// consecutive overruns reaches Config.OverrunThreshold.
	OnDrift func(consecutive int)

	cfg       Config
	clock     wallclock.Source
	transport io.Writer
	stats     stats.Stats
	notifier  *pulse.Notifier
	season    telegram.Season
	up        int

	state      atomic.Int32
	shotOffset time.Duration
	reference  time.Time // tick of the arming edge
	baseline   time.Time // target of the last absolute wait
	overruns   int64     // consecutive missed deadlines

	// timing seams, replaced in tests with a virtual clock
	nowFn   func() time.Time
	sleepFn func(time.Duration)
}

// New validates cfg and assembles a scheduler writing to transport.
func New(cfg Config, clk wallclock.Source, transport io.Writer, st stats.Stats, n *pulse.Notifier) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Scheduler{
		cfg:       cfg,
		clock:     clk,
		transport: transport,
		stats:     st,
		notifier:  n,
		season:    telegram.Season(cfg.Season[0]),
		up:        cfg.UpFactor(),
		nowFn:     time.Now,
		sleepFn:   time.Sleep,
	}
	s.state.Store(int32(Uninitialized))
	return s, nil
}

// State reports the current lifecycle state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Run is the worker loop. It never returns: every iteration blocks on
// the next pulse edge, so a dead pulse source leaves the worker parked
// forever. Detecting that is the pulse-source watchdog's job, not ours.
func (s *Scheduler) Run() {
	s.state.Store(int32(AwaitingFirstEdge))
	log.Infof("waiting for wall clock rollover and first pulse edge")
	s.alignToSecond()
	for {
		s.cycle()
	}
}

// cycle blocks until the next edge notification and performs one full
// emission cycle for it. Edges that arrived while the previous cycle
// was still running have been coalesced into the most recent one.
func (s *Scheduler) cycle() {
	edge := s.notifier.Wait()
	if s.State() != Armed {
		s.arm(edge)
	}
	switch {
	case s.up > 1:
		s.cycleUpclocked(edge)
	case s.cfg.PulsePeriod > NominalPeriod:
		s.cycleDownclocked(edge)
	default:
		s.cycleEqual(edge)
	}
}

// alignToSecond parks the worker until the wall clock rolls over into a
// fresh second, so the first timing reference coincides with a real
// second boundary.
func (s *Scheduler) alignToSecond() {
	now := s.clock.Now()
	if rem := now.Sub(now.Truncate(NominalPeriod)); rem > 0 {
		s.sleepFn(NominalPeriod - rem)
	}
}

// arm fixes the shot offset on the first observed edge: the lead before
// a second boundary at which transmission must start so the last byte
// lands exactly on the boundary.
func (s *Scheduler) arm(edge pulse.Edge) {
	s.reference = edge.Tick
	s.shotOffset = NominalPeriod - s.cfg.TransmitDuration
	s.state.Store(int32(Armed))
	log.Infof("armed on first pulse edge, shot offset %v", s.shotOffset)
}

func (s *Scheduler) cycleEqual(edge pulse.Edge) {
	s.waitUntil(edge.Tick.Add(s.shotOffset))
	s.emit(s.clock.Now().Add(time.Second), s.clock.Status())
}

// cycleUpclocked spreads k telegrams over one consumed edge when the
// pulse runs at a multiple of the nominal rate. The wall clock and sync
// status are sampled once, at the first shot; every repetition advances
// the announced second by one, so the k frames describe consecutive
// seconds regardless of how the physical pulses arrive.
func (s *Scheduler) cycleUpclocked(edge pulse.Edge) {
	var base time.Time
	var status telegram.SyncStatus
	for i := 0; i < s.up; i++ {
		s.waitUntil(edge.Tick.Add(s.shotOffset + time.Duration(i)*NominalPeriod))
		if i == 0 {
			base = s.clock.Now()
			status = s.clock.Status()
		}
		s.emit(base.Add(time.Duration(i+1)*time.Second), status)
	}
}

// cycleDownclocked fires immediately: a slower-than-nominal edge
// already arrives past the ideal firing point. The trailing wait
// re-establishes the timing baseline for the next cycle.
func (s *Scheduler) cycleDownclocked(edge pulse.Edge) {
	s.emit(s.clock.Now().Add(time.Second), s.clock.Status())
	s.rebase(edge.Tick.Add(s.shotOffset - s.cfg.PulsePeriod))
}

// waitUntil blocks until the absolute instant target. Waiting on
// absolute instants rather than relative delays keeps error from
// accumulating across cycles. A target already in the past is an
// overrun: the wait is skipped and emission proceeds immediately,
// best effort.
func (s *Scheduler) waitUntil(target time.Time) {
	s.baseline = target
	d := target.Sub(s.nowFn())
	if d <= 0 {
		s.noteOverrun()
		return
	}
	s.sleepFn(d)
	if s.overruns > 0 {
		s.overruns = 0
		s.stats.SetConsecutiveOverruns(0)
	}
}

// rebase performs the down-clocking compensation wait. Its target is
// routinely in the past, which is not an overrun.
func (s *Scheduler) rebase(target time.Time) {
	s.baseline = target
	if d := target.Sub(s.nowFn()); d > 0 {
		s.sleepFn(d)
	}
}

func (s *Scheduler) noteOverrun() {
	s.overruns++
	s.stats.IncOverruns()
	s.stats.SetConsecutiveOverruns(s.overruns)
	if s.cfg.OverrunThreshold > 0 && s.overruns == int64(s.cfg.OverrunThreshold) {
		log.Warningf("missed %d firing deadlines in a row, output is drifting past second boundaries", s.overruns)
		if s.OnDrift != nil {
			s.OnDrift(int(s.overruns))
		}
	}
}

func (s *Scheduler) emit(target time.Time, status telegram.SyncStatus) {
	if status == telegram.Unknown {
		s.stats.IncNoTime()
	}
	frame := telegram.Encode(target, status, s.season)
	if _, err := s.transport.Write(frame.Bytes()); err != nil {
		log.Errorf("failed to write telegram: %v", err)
		s.stats.IncWriteErrors()
		return
	}
	s.stats.IncTelegrams()
	log.Debugf("telegram %q", frame.String())
}
