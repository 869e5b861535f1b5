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
Package stats implements statistics collection and reporting.
It is used by the scheduler to report internal statistics, such as the
number of telegrams written and firing deadlines missed.
*/
package stats

// Stats is a metric collection interface
type Stats interface {
	// Start starts a stat reporter
	// Use this for passive reporters
	Start(port int)

	// IncTelegrams atomically add 1 to the counter
	IncTelegrams()
	// IncOverruns atomically add 1 to the counter
	IncOverruns()
	// IncNoTime atomically add 1 to the counter of sentinel telegrams
	IncNoTime()
	// IncWriteErrors atomically add 1 to the counter
	IncWriteErrors()

	// SetConsecutiveOverruns atomically sets the current run of missed deadlines
	SetConsecutiveOverruns(n int64)
}
