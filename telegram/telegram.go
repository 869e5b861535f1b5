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

// Package telegram renders IF482 time telegrams, the fixed-length ASCII
// frames that drive slave clocks (e.g. BÜRK BU-190) over RS-232/RS-422.
// Reference: Mobatime TE-112023.
package telegram

import (
	"fmt"
	"time"
)

// FrameSize is the fixed length of an IF482 telegram in bytes.
const FrameSize = 17

// Fixed frame bytes.
const (
	Start      byte = 'O'
	Terminator byte = '\r'
)

// SentinelBody replaces all date/time fields when no valid time is
// known. The receiver must be told "no valid time" unambiguously
// instead of being shown a plausible-looking wrong time.
const SentinelBody = "000000F000000"

// Monitoring characters, byte 2 of the frame.
const (
	// MonitoringOK means time is set and confidently synchronized.
	MonitoringOK byte = 'A'
	// MonitoringStale means time is set but the source has not been
	// refreshed within tolerance. Receivers still accept it.
	MonitoringStale byte = 'M'
	// MonitoringInvalid means no valid time is available.
	MonitoringInvalid byte = '?'
)

// SyncStatus is the confidence level of the wall-clock source.
type SyncStatus int

const (
	// Unknown means the clock was never set.
	Unknown SyncStatus = iota
	// StaleButSet means the clock was set but not refreshed within tolerance.
	StaleButSet
	// Confident means the clock is set and synchronized.
	Confident
)

var syncStatusToString = map[SyncStatus]string{
	Unknown:     "UNKNOWN",
	StaleButSet: "STALE_BUT_SET",
	Confident:   "CONFIDENT",
}

func (s SyncStatus) String() string {
	str, found := syncStatusToString[s]
	if !found {
		return "UNSUPPORTED VALUE"
	}
	return str
}

// Season is the time mode announced in byte 3 of the frame.
type Season byte

const (
	SeasonStandard Season = 'W'
	SeasonDST      Season = 'S'
	SeasonUTC      Season = 'U'
	SeasonLocal    Season = 'L'
)

// Valid reports whether s is one of the four IF482 season characters.
func (s Season) Valid() bool {
	switch s {
	case SeasonStandard, SeasonDST, SeasonUTC, SeasonLocal:
		return true
	}
	return false
}

// Telegram is a single immutable IF482 frame.
type Telegram [FrameSize]byte

func (t Telegram) String() string {
	return string(t[:])
}

// Bytes returns the frame as a byte slice ready for the transport.
func (t Telegram) Bytes() []byte {
	return t[:]
}

// Encode renders the telegram announcing target. The caller always
// passes the upcoming second boundary ("now + 1s"): the frame must be
// fully transmitted by the moment that second starts. Calendar values
// outside the IF482 field domains are the caller's responsibility.
func Encode(target time.Time, status SyncStatus, season Season) Telegram {
	var mon byte
	body := SentinelBody

	switch status {
	case Confident:
		mon = MonitoringOK
	case StaleButSet:
		mon = MonitoringStale
	default:
		mon = MonitoringInvalid
	}

	if status == Confident || status == StaleButSet {
		// day of week is 1..7 with 1 = Sunday
		body = fmt.Sprintf("%02d%02d%02d%1d%02d%02d%02d",
			target.Year()%100, int(target.Month()), target.Day(),
			int(target.Weekday())+1,
			target.Hour(), target.Minute(), target.Second())
	}

	var t Telegram
	copy(t[:], fmt.Sprintf("%c%c%c%s%c", Start, mon, byte(season), body, Terminator))
	return t
}
