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

package pulse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNotifierDelivers(t *testing.T) {
	n := NewNotifier()
	edge := Edge{Tick: time.Unix(100, 0)}
	n.Notify(edge)
	require.Equal(t, edge, n.Wait())
}

func TestNotifierKeepsLatest(t *testing.T) {
	n := NewNotifier()
	n.Notify(Edge{Tick: time.Unix(100, 0)})
	n.Notify(Edge{Tick: time.Unix(101, 0)})
	latest := Edge{Tick: time.Unix(102, 0)}
	n.Notify(latest)
	require.Equal(t, latest, n.Wait())
}

func TestNotifierWaitConsumes(t *testing.T) {
	n := NewNotifier()
	n.Notify(Edge{Tick: time.Unix(100, 0)})
	n.Wait()

	woke := make(chan Edge, 1)
	go func() {
		woke <- n.Wait()
	}()

	select {
	case e := <-woke:
		t.Fatalf("Wait returned %v on an empty mailbox", e)
	case <-time.After(10 * time.Millisecond):
	}

	next := Edge{Tick: time.Unix(101, 0)}
	n.Notify(next)
	require.Equal(t, next, <-woke)
}

func TestTickerProducesEdges(t *testing.T) {
	n := NewNotifier()
	tk := NewTicker(time.Millisecond, n)
	tk.Start()
	defer tk.Stop()

	first := n.Wait()
	require.False(t, first.Tick.IsZero())
	second := n.Wait()
	require.True(t, second.Tick.After(first.Tick))
}
