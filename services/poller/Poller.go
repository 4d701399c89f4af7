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

// Package poller
// visibility-gated periodic tasks
package poller

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Netcracker/qubership-apihub-capture-manager/utils"
	log "github.com/sirupsen/logrus"
)

// Poller
// a single non re-entrant interval; ticks are skipped while the dashboard is hidden
type Poller interface {
	// Start is a no-op when already running
	Start()
	// Stop is a no-op when already stopped; it does not wait for a running tick
	Stop()
	IsRunning() bool
	// SetVisible records visibility, the hidden to visible edge runs one tick immediately
	SetVisible(visible bool)
	IsVisible() bool
	// Tick runs the task now unless another tick is in progress
	Tick()
}

type pollerImpl struct {
	name     string
	interval time.Duration
	task     func()
	lock     sync.Mutex
	stop     chan struct{}
	visible  bool
	busy     atomic.Bool
	loops    atomic.Int32 // live loop goroutines
}

// NewPoller
// creates a stopped, visible poller
func NewPoller(name string, interval time.Duration, task func()) Poller {
	return &pollerImpl{name: name, interval: interval, task: task, visible: true}
}

func (p *pollerImpl) Start() {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.stop != nil {
		return
	}
	stop := make(chan struct{})
	p.stop = stop
	p.loops.Add(1)
	utils.SafeAsync(func() {
		defer p.loops.Add(-1)
		p.loop(stop)
	})
	log.Debugf("%s poller started, interval %v", p.name, p.interval)
}

func (p *pollerImpl) Stop() {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.stop == nil {
		return
	}
	close(p.stop)
	p.stop = nil
	log.Debugf("%s poller stopped", p.name)
}

func (p *pollerImpl) IsRunning() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.stop != nil
}

func (p *pollerImpl) SetVisible(visible bool) {
	p.lock.Lock()
	wasVisible := p.visible
	p.visible = visible
	p.lock.Unlock()
	if visible && !wasVisible {
		log.Debugf("%s poller: dashboard became visible, refreshing", p.name)
		p.Tick()
	}
}

func (p *pollerImpl) IsVisible() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.visible
}

func (p *pollerImpl) Tick() {
	if !p.busy.CompareAndSwap(false, true) {
		log.Tracef("%s poller: previous tick still running, skipped", p.name)
		return
	}
	defer p.busy.Store(false)
	utils.SafeRun(p.task)
}

func (p *pollerImpl) loop(stop chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			select {
			case <-stop:
				return // stopped while the tick was pending
			default:
			}
			if !p.IsVisible() {
				continue
			}
			p.Tick()
		}
	}
}
