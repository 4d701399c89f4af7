// Copyright 2024-2025 NetCracker Technology Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package poller

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInterval = 10 * time.Millisecond

func loops(p Poller) int32 {
	return p.(*pollerImpl).loops.Load()
}

func TestStartIsIdempotent(t *testing.T) {
	var ticks atomic.Int32
	p := NewPoller("test", testInterval, func() { ticks.Add(1) })
	p.Start()
	p.Start()
	assert.True(t, p.IsRunning())
	assert.Equal(t, int32(1), loops(p))
	assert.Eventually(t, func() bool { return ticks.Load() >= 2 }, time.Second, testInterval)

	p.Stop()
	p.Stop()
	assert.False(t, p.IsRunning())
	assert.Eventually(t, func() bool { return loops(p) == 0 }, time.Second, testInterval)
}

func TestStopWithoutStart(t *testing.T) {
	p := NewPoller("test", testInterval, func() {})
	assert.NotPanics(t, p.Stop)
	assert.False(t, p.IsRunning())
}

func TestHiddenTicksSkipped(t *testing.T) {
	var ticks atomic.Int32
	p := NewPoller("test", testInterval, func() { ticks.Add(1) })
	p.SetVisible(false)
	assert.False(t, p.IsVisible())
	p.Start()
	defer p.Stop()
	time.Sleep(10 * testInterval)
	assert.Equal(t, int32(0), ticks.Load())

	// the hidden to visible edge refreshes at once
	p.SetVisible(true)
	assert.GreaterOrEqual(t, ticks.Load(), int32(1))
}

func TestVisibleEdgeOnlyOnce(t *testing.T) {
	var ticks atomic.Int32
	p := NewPoller("test", time.Hour, func() { ticks.Add(1) })
	p.SetVisible(true)
	assert.Equal(t, int32(0), ticks.Load())
	p.SetVisible(false)
	p.SetVisible(true)
	p.SetVisible(true)
	assert.Equal(t, int32(1), ticks.Load())
}

func TestTickIsNotReentrant(t *testing.T) {
	var ticks atomic.Int32
	var p Poller
	p = NewPoller("test", time.Hour, func() {
		ticks.Add(1)
		p.Tick()
	})
	p.Tick()
	assert.Equal(t, int32(1), ticks.Load())
}

func TestTaskMayStopPoller(t *testing.T) {
	var p Poller
	done := make(chan struct{})
	p = NewPoller("test", testInterval, func() {
		p.Stop()
		close(done)
	})
	p.Start()
	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "tick did not run")
	}
	assert.False(t, p.IsRunning())
	assert.Eventually(t, func() bool { return loops(p) == 0 }, time.Second, testInterval)
}

func TestPanicInTaskKeepsLoop(t *testing.T) {
	var ticks atomic.Int32
	p := NewPoller("test", testInterval, func() {
		ticks.Add(1)
		panic("refresh exploded")
	})
	p.Start()
	defer p.Stop()
	assert.Eventually(t, func() bool { return ticks.Load() >= 2 }, time.Second, testInterval)
}
