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

// Package manager
// the capture manager: session set, file list and both timers of one dashboard
package manager

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Netcracker/qubership-apihub-capture-manager/entities"
	"github.com/Netcracker/qubership-apihub-capture-manager/services/cloud_storage"
	"github.com/Netcracker/qubership-apihub-capture-manager/services/disk_cache"
	"github.com/Netcracker/qubership-apihub-capture-manager/services/estimator"
	"github.com/Netcracker/qubership-apihub-capture-manager/services/file_registry"
	"github.com/Netcracker/qubership-apihub-capture-manager/services/gateway"
	"github.com/Netcracker/qubership-apihub-capture-manager/services/inventory"
	"github.com/Netcracker/qubership-apihub-capture-manager/services/notifier"
	"github.com/Netcracker/qubership-apihub-capture-manager/services/poller"
	"github.com/Netcracker/qubership-apihub-capture-manager/services/session"
	"github.com/Netcracker/qubership-apihub-capture-manager/services/validator"
	"github.com/Netcracker/qubership-apihub-capture-manager/view"
	log "github.com/sirupsen/logrus"
)

// CaptureManager
// operations the dashboard controller exposes
type CaptureManager interface {
	// Validate checks a config against locally known state only
	Validate(cfg entities.CaptureConfig) (entities.ValidationResult, entities.SizeEstimate)
	Estimate(durationMinutes, truncationBytes, packetsPerSecond int) entities.SizeEstimate
	Start(ctx context.Context, cfg entities.CaptureConfig) (entities.StartResult, error)
	StopOne(ctx context.Context, id string) error
	StopAll(ctx context.Context) error
	Sessions() []entities.SessionState
	ListFiles(ctx context.Context) ([]entities.CaptureFile, error)
	Download(ctx context.Context, fileId, filename string) ([]byte, error)
	Delete(ctx context.Context, fileId, filename string) error
	AccessPoints(ctx context.Context) ([]entities.AccessPoint, error)
	SetVisible(visible bool)
	ServeWS(w http.ResponseWriter, r *http.Request)
	IsPolling() bool
	// Close clears both timers and releases local resources, safe to call twice
	Close()
}

type captureManagerImpl struct {
	orchestrator session.Orchestrator
	registry     file_registry.FileRegistry
	inventory    inventory.Inventory
	hub          notifier.Hub
	archive      cloud_storage.CloudStorage
	journalCache disk_cache.DiskCache
	statusPoller poller.Poller
	progress     poller.Poller
	clock        func() time.Time
	ctx          context.Context
	cancel       context.CancelFunc
	closeOnce    sync.Once
}

// timerControl
// starts and stops the status poller together with the progress redraw
type timerControl struct {
	status   poller.Poller
	progress poller.Poller
}

func (t timerControl) Start() {
	t.status.Start()
	t.progress.Start()
}

func (t timerControl) Stop() {
	t.status.Stop()
	t.progress.Stop()
}

// NewCaptureManager
// archive may be nil; the session journal is opened when cfg.JournalDirectory is set
func NewCaptureManager(gw gateway.Gateway, cfg entities.ManagerConfig, hub notifier.Hub, archive cloud_storage.CloudStorage) (CaptureManager, error) {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = view.DefaultPollInterval
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = view.DefaultProgressInterval
	}
	m := &captureManagerImpl{
		inventory: inventory.NewInventory(gw, cfg.InventoryTTL),
		registry:  file_registry.NewFileRegistry(gw, archive),
		hub:       hub,
		archive:   archive,
		clock:     time.Now,
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())

	var journal session.Journal
	if cfg.JournalDirectory != view.EmptyString {
		dc, err := disk_cache.NewDiskCache(session.JournalCacheName, cfg.JournalDirectory)
		if err != nil {
			m.cancel()
			return nil, err
		}
		m.journalCache = dc
		journal = session.NewJournal(dc)
	}
	m.orchestrator = session.NewOrchestrator(gw, m.inventory, m.registry, journal)
	m.statusPoller = poller.NewPoller("status", cfg.PollInterval, m.pollTick)
	m.progress = poller.NewPoller("progress", cfg.ProgressInterval, m.progressTick)
	m.orchestrator.SetPollControl(timerControl{status: m.statusPoller, progress: m.progress})

	m.orchestrator.SetListener(func(sessions []entities.CaptureSession) {
		m.hub.Broadcast(view.MessageSessions, m.progressOf(sessions))
	})
	m.registry.SetListener(func(files []entities.CaptureFile) {
		m.hub.Broadcast(view.MessageFiles, files)
	})
	m.hub.SetVisibilityListener(func(visible bool) {
		log.Debugf("dashboard visibility changed: %v", visible)
		m.statusPoller.SetVisible(visible)
		m.progress.SetVisible(visible)
	})

	if err := m.orchestrator.Restore(); err != nil {
		log.Warnf("session journal is not restored: %v", err)
	}
	return m, nil
}

// pollTick
// one status refresh; failures are logged and the next tick retries
func (m *captureManagerImpl) pollTick() {
	if err := m.orchestrator.Refresh(m.ctx); err != nil {
		log.Warnf("capture status refresh failed: %v", err)
	}
	if _, err := m.registry.List(m.ctx); err != nil {
		log.Warnf("capture file refresh failed: %v", err)
	}
}

func (m *captureManagerImpl) progressTick() {
	m.hub.Broadcast(view.MessageProgress, m.orchestrator.Progress(m.clock()))
}

func (m *captureManagerImpl) progressOf(sessions []entities.CaptureSession) []entities.SessionState {
	now := m.clock()
	ret := make([]entities.SessionState, 0, len(sessions))
	for _, s := range sessions {
		ret = append(ret, entities.SessionState{CaptureSession: s, Progress: s.ProgressAt(now)})
	}
	return ret
}

func (m *captureManagerImpl) Validate(cfg entities.CaptureConfig) (entities.ValidationResult, entities.SizeEstimate) {
	res := validator.Validate(cfg, m.inventory.Known())
	return res, estimator.Estimate(cfg.DurationMinutes, cfg.TruncationBytes, 0)
}

func (m *captureManagerImpl) Estimate(durationMinutes, truncationBytes, packetsPerSecond int) entities.SizeEstimate {
	return estimator.Estimate(durationMinutes, truncationBytes, packetsPerSecond)
}

func (m *captureManagerImpl) Start(ctx context.Context, cfg entities.CaptureConfig) (entities.StartResult, error) {
	res, err := m.orchestrator.Start(ctx, cfg)
	if err != nil {
		return res, err
	}
	if res.Notice != view.EmptyString {
		m.hub.Broadcast(view.MessageNotice, view.NoticePayload{Level: "info", Message: res.Notice})
	}
	for _, w := range res.Warnings {
		m.hub.Broadcast(view.MessageNotice, view.NoticePayload{Level: "warning", Message: w})
	}
	return res, nil
}

func (m *captureManagerImpl) StopOne(ctx context.Context, id string) error {
	return m.orchestrator.StopOne(ctx, id)
}

func (m *captureManagerImpl) StopAll(ctx context.Context) error {
	return m.orchestrator.StopAll(ctx)
}

func (m *captureManagerImpl) Sessions() []entities.SessionState {
	return m.progressOf(m.orchestrator.Sessions())
}

func (m *captureManagerImpl) ListFiles(ctx context.Context) ([]entities.CaptureFile, error) {
	return m.registry.List(ctx)
}

func (m *captureManagerImpl) Download(ctx context.Context, fileId, filename string) ([]byte, error) {
	return m.registry.Download(ctx, fileId, filename)
}

func (m *captureManagerImpl) Delete(ctx context.Context, fileId, filename string) error {
	return m.registry.Delete(ctx, fileId, filename)
}

func (m *captureManagerImpl) AccessPoints(ctx context.Context) ([]entities.AccessPoint, error) {
	return m.inventory.AccessPoints(ctx)
}

func (m *captureManagerImpl) SetVisible(visible bool) {
	m.hub.SetVisible(visible)
}

func (m *captureManagerImpl) ServeWS(w http.ResponseWriter, r *http.Request) {
	m.hub.ServeWS(w, r)
}

func (m *captureManagerImpl) IsPolling() bool {
	return m.statusPoller.IsRunning()
}

func (m *captureManagerImpl) Close() {
	m.closeOnce.Do(func() {
		m.statusPoller.Stop()
		m.progress.Stop()
		m.cancel()
		m.hub.Close()
		if m.archive != nil {
			m.archive.Close()
		}
		if m.journalCache != nil {
			if err := m.journalCache.Close(); err != nil {
				log.Warnf("unable to close session journal: %v", err)
			}
		}
		log.Info("capture manager closed")
	})
}
