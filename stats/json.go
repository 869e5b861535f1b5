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

package stats

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// JSONStats implements the Stats interface
// This implementation reports JSON metrics via http interface
// This is a passive implementation. Only "Start" needs to be called
type JSONStats struct {
	// keep these aligned to 64-bit for sync/atomic
	telegrams      int64
	overruns       int64
	noTime         int64
	writeErrors    int64
	consecOverruns int64
}

// toMap converts struct to a map
func (j *JSONStats) toMap() (export map[string]int64) {
	export = make(map[string]int64)

	export["telegrams"] = atomic.LoadInt64(&j.telegrams)
	export["overruns"] = atomic.LoadInt64(&j.overruns)
	export["notime"] = atomic.LoadInt64(&j.noTime)
	export["writeerrors"] = atomic.LoadInt64(&j.writeErrors)
	export["consecutiveoverruns"] = atomic.LoadInt64(&j.consecOverruns)

	return export
}

// handleRequest is a handler used for all http monitoring requests
func (j *JSONStats) handleRequest(w http.ResponseWriter, _ *http.Request) {
	js, err := json.Marshal(j.toMap())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err = w.Write(js); err != nil {
		log.Errorf("Failed to reply: %v", err)
	}
}

// Start launches the http monitoring endpoint
func (j *JSONStats) Start(port int) {
	http.HandleFunc("/", j.handleRequest)
	addr := fmt.Sprintf(":%d", port)
	log.Debugf("Starting http json server on %s", addr)
	err := http.ListenAndServe(addr, nil)
	if err != nil {
		log.Errorf("Failed to start listener: %v", err)
	}
}

// IncTelegrams atomically add 1 to the counter
func (j *JSONStats) IncTelegrams() {
	atomic.AddInt64(&j.telegrams, 1)
}

// IncOverruns atomically add 1 to the counter
func (j *JSONStats) IncOverruns() {
	atomic.AddInt64(&j.overruns, 1)
}

// IncNoTime atomically add 1 to the counter
func (j *JSONStats) IncNoTime() {
	atomic.AddInt64(&j.noTime, 1)
}

// IncWriteErrors atomically add 1 to the counter
func (j *JSONStats) IncWriteErrors() {
	atomic.AddInt64(&j.writeErrors, 1)
}

// SetConsecutiveOverruns atomically sets the counter
func (j *JSONStats) SetConsecutiveOverruns(n int64) {
	atomic.StoreInt64(&j.consecOverruns, n)
}
