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

// Package session
// the locally known set of remote capture sessions
package session

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Netcracker/qubership-apihub-capture-manager/entities"
	"github.com/Netcracker/qubership-apihub-capture-manager/exception"
	"github.com/Netcracker/qubership-apihub-capture-manager/services/estimator"
	"github.com/Netcracker/qubership-apihub-capture-manager/services/file_registry"
	"github.com/Netcracker/qubership-apihub-capture-manager/services/gateway"
	"github.com/Netcracker/qubership-apihub-capture-manager/services/inventory"
	"github.com/Netcracker/qubership-apihub-capture-manager/services/validator"
	"github.com/Netcracker/qubership-apihub-capture-manager/utils"
	"github.com/Netcracker/qubership-apihub-capture-manager/view"
	log "github.com/sirupsen/logrus"
)

// PollControl
// the status poller as seen by the orchestrator
type PollControl interface {
	Start()
	Stop()
}

// Orchestrator
// owns the session set; every mutation goes through these methods
type Orchestrator interface {
	Start(ctx context.Context, cfg entities.CaptureConfig) (entities.StartResult, error)
	StopOne(ctx context.Context, id string) error
	StopAll(ctx context.Context) error
	// Refresh reconciles the local set against the remote active list
	Refresh(ctx context.Context) error
	Sessions() []entities.CaptureSession
	Session(id string) (entities.CaptureSession, bool)
	Progress(now time.Time) []entities.SessionProgress
	SetPollControl(pc PollControl)
	SetListener(listener func([]entities.CaptureSession))
	// Restore loads journaled sessions, the next refresh reconciles them
	Restore() error
}

type orchestratorImpl struct {
	gw        gateway.Gateway
	inventory inventory.Inventory
	registry  file_registry.FileRegistry
	journal   Journal
	clock     func() time.Time

	lock     sync.Mutex
	sessions map[string]entities.CaptureSession
	poll     PollControl
	listener func([]entities.CaptureSession)
}

// NewOrchestrator
// journal may be nil
func NewOrchestrator(gw gateway.Gateway, inv inventory.Inventory, registry file_registry.FileRegistry, journal Journal) Orchestrator {
	return &orchestratorImpl{
		gw:        gw,
		inventory: inv,
		registry:  registry,
		journal:   journal,
		clock:     time.Now,
		sessions:  make(map[string]entities.CaptureSession),
	}
}

func (o *orchestratorImpl) SetPollControl(pc PollControl) {
	o.lock.Lock()
	o.poll = pc
	o.lock.Unlock()
}

func (o *orchestratorImpl) SetListener(listener func([]entities.CaptureSession)) {
	o.lock.Lock()
	o.listener = listener
	o.lock.Unlock()
}

func (o *orchestratorImpl) Start(ctx context.Context, cfg entities.CaptureConfig) (entities.StartResult, error) {
	accessPoints := o.inventory.Known()
	if cfg.Location == entities.LocationWireless && len(accessPoints) == 0 {
		// nothing fetched yet, the list may simply be cold
		aps, err := o.inventory.AccessPoints(ctx)
		if err != nil {
			log.Warnf("unable to refresh access points before wireless capture: %v", err)
		}
		accessPoints = aps
	}
	res := validator.Validate(cfg, accessPoints)
	if !res.Valid {
		return entities.StartResult{}, exception.NewValidationError("%s", res.Error)
	}
	var warnings []string
	if res.Warning != view.EmptyString {
		warnings = append(warnings, res.Warning)
	}
	if est := estimator.Estimate(cfg.DurationMinutes, cfg.TruncationBytes, 0); est.Warning != view.EmptyString {
		warnings = append(warnings, est.Warning)
	}

	req, notice := BuildStartRequest(cfg, accessPoints)
	id, err := o.gw.StartCapture(ctx, req)
	if err != nil {
		log.Errorf("capture start failed: %v", err)
		return entities.StartResult{}, err
	}
	if id == view.EmptyString {
		id = view.LocalSessionIdPrefix + utils.MakeUniqueId()
		log.Warnf("controller returned no capture id, using %s", id)
	}
	s := entities.CaptureSession{
		Id:              id,
		Location:        cfg.Location,
		Direction:       cfg.EffectiveDirection(),
		Filters:         validator.CanonicalFilters(cfg.AddressFilters),
		DurationSeconds: cfg.DurationMinutes * 60,
		StartTime:       o.clock(),
		Status:          entities.SessionRunning,
	}
	o.lock.Lock()
	if _, exists := o.sessions[id]; exists {
		log.Warnf("controller reused capture id %s, local record replaced", id)
	}
	o.sessions[id] = s
	poll := o.poll
	o.lock.Unlock()

	log.Infof("capture %s started: location=%s duration=%ds", id, s.Location, s.DurationSeconds)
	o.journalSave(s)
	o.notify()
	if poll != nil {
		poll.Start()
	}
	return entities.StartResult{Session: s, Notice: notice, Warnings: warnings}, nil
}

func (o *orchestratorImpl) StopOne(ctx context.Context, id string) error {
	o.lock.Lock()
	s, found := o.sessions[id]
	if !found {
		o.lock.Unlock()
		return exception.ErrSessionNotFound
	}
	if s.Status == entities.SessionStopping {
		o.lock.Unlock()
		return exception.ErrStopInProgress
	}
	s.Status = entities.SessionStopping
	o.sessions[id] = s
	o.lock.Unlock()
	o.notify()

	if err := o.gw.StopCapture(ctx, id); err != nil {
		o.lock.Lock()
		// a refresh may have dropped it meanwhile, nothing to revert then
		if cur, ok := o.sessions[id]; ok && cur.Status == entities.SessionStopping {
			cur.Status = entities.SessionRunning
			o.sessions[id] = cur
		}
		o.lock.Unlock()
		log.Errorf("capture %s stop failed, reverted to %s: %v", id, entities.SessionRunning, err)
		o.notify()
		return err
	}

	o.lock.Lock()
	delete(o.sessions, id)
	o.lock.Unlock()
	log.Infof("capture %s stopped", id)
	o.journalRemove(id)
	o.notify()
	// the finished capture usually shows up as a new file
	if _, err := o.registry.List(ctx); err != nil {
		log.Warnf("file list refresh after stopping %s failed: %v", id, err)
	}
	return nil
}

func (o *orchestratorImpl) StopAll(ctx context.Context) error {
	if err := o.gw.StopAllCaptures(ctx); err != nil {
		log.Errorf("bulk capture stop failed: %v", err)
		return err
	}
	o.lock.Lock()
	count := len(o.sessions)
	o.sessions = make(map[string]entities.CaptureSession)
	poll := o.poll
	o.lock.Unlock()
	log.Infof("all captures stopped, %d local session(s) cleared", count)
	o.journalReplace(nil)
	o.notify()
	if poll != nil {
		poll.Stop()
	}
	if _, err := o.registry.List(ctx); err != nil {
		log.Warnf("file list refresh after bulk stop failed: %v", err)
	}
	return nil
}

func (o *orchestratorImpl) Refresh(ctx context.Context) error {
	fetchedAt := o.clock()
	descs, err := o.gw.ListActiveCaptures(ctx)
	if err != nil {
		return err
	}
	o.lock.Lock()
	reconciled := make(map[string]entities.CaptureSession, len(descs))
	for idx, d := range descs {
		remote, ok := sessionFromDescriptor(d, o.clock)
		if !ok {
			log.Warnf("active capture #%d has no identifier, skipped", idx)
			continue
		}
		if local, exists := o.sessions[remote.Id]; exists {
			remote = mergeSession(local, remote)
		}
		reconciled[remote.Id] = remote
	}
	for id, local := range o.sessions {
		if _, reported := reconciled[id]; reported {
			continue
		}
		if local.StartTime.After(fetchedAt) {
			// started while the list was in flight
			reconciled[id] = local
			continue
		}
		log.Infof("capture %s is no longer active on the controller", id)
	}
	changed := !reflect.DeepEqual(o.sessions, reconciled)
	o.sessions = reconciled
	empty := len(reconciled) == 0
	poll := o.poll
	snapshot := sortedSessions(reconciled)
	o.lock.Unlock()

	// the journal mirrors the set, an unchanged refresh leaves it alone
	if changed {
		o.journalReplace(snapshot)
	}
	o.notify()
	if poll != nil {
		if empty {
			poll.Stop()
		} else {
			poll.Start()
		}
	}
	return nil
}

func (o *orchestratorImpl) Sessions() []entities.CaptureSession {
	o.lock.Lock()
	defer o.lock.Unlock()
	return sortedSessions(o.sessions)
}

func (o *orchestratorImpl) Session(id string) (entities.CaptureSession, bool) {
	o.lock.Lock()
	defer o.lock.Unlock()
	s, found := o.sessions[id]
	return s, found
}

func (o *orchestratorImpl) Progress(now time.Time) []entities.SessionProgress {
	sessions := o.Sessions()
	ret := make([]entities.SessionProgress, 0, len(sessions))
	for _, s := range sessions {
		ret = append(ret, s.ProgressAt(now))
	}
	return ret
}

func (o *orchestratorImpl) Restore() error {
	if o.journal == nil {
		return nil
	}
	sessions, err := o.journal.Load()
	if err != nil {
		return fmt.Errorf("unable to load session journal: %w", err)
	}
	if len(sessions) == 0 {
		return nil
	}
	o.lock.Lock()
	for _, s := range sessions {
		s.Status = entities.SessionRunning // a stop in flight did not survive the restart
		o.sessions[s.Id] = s
	}
	poll := o.poll
	o.lock.Unlock()
	log.Infof("%d capture session(s) restored from journal", len(sessions))
	o.notify()
	if poll != nil {
		poll.Start()
	}
	return nil
}

func (o *orchestratorImpl) notify() {
	o.lock.Lock()
	listener := o.listener
	snapshot := sortedSessions(o.sessions)
	o.lock.Unlock()
	if listener != nil {
		listener(snapshot)
	}
}

func (o *orchestratorImpl) journalSave(s entities.CaptureSession) {
	if o.journal == nil {
		return
	}
	if err := o.journal.Save(s); err != nil {
		log.Warnf("unable to journal session %s: %v", s.Id, err)
	}
}

func (o *orchestratorImpl) journalRemove(id string) {
	if o.journal == nil {
		return
	}
	if err := o.journal.Remove(id); err != nil {
		log.Warnf("unable to remove session %s from journal: %v", id, err)
	}
}

func (o *orchestratorImpl) journalReplace(sessions []entities.CaptureSession) {
	if o.journal == nil {
		return
	}
	if err := o.journal.Replace(sessions); err != nil {
		log.Warnf("unable to rewrite session journal: %v", err)
	}
}

// BuildStartRequest
// maps a valid configuration to the controller vocabulary
// returns a notice when a default access point was picked
func BuildStartRequest(cfg entities.CaptureConfig, accessPoints []entities.AccessPoint) (view.StartCaptureRequest, string) {
	var notice string
	req := view.StartCaptureRequest{
		Location:    remoteLocation(cfg.Location),
		Direction:   strings.ToLower(string(cfg.EffectiveDirection())),
		Duration:    cfg.DurationMinutes * 60,
		SnapLength:  cfg.TruncationBytes,
		Protocol:    strings.ToLower(string(cfg.Protocol)),
		Destination: strings.ToLower(string(cfg.EffectiveDestination())),
	}
	switch cfg.Location {
	case entities.LocationWireless:
		req.ApId = cfg.ApId
		if req.ApId == view.EmptyString && len(accessPoints) > 0 {
			ap := accessPoints[0]
			req.ApId = ap.Id
			notice = fmt.Sprintf("no access point selected, capturing on %s (%s)", ap.Name, ap.Id)
		}
		req.Radio = cfg.Radio
	case entities.LocationWired:
		include := cfg.IncludeWiredClients
		req.IncludeWiredClients = &include
	}
	// the controller honours one filter of each type
	for _, f := range validator.CanonicalFilters(cfg.AddressFilters) {
		switch f.Type {
		case entities.FilterTypeMac:
			if req.MacFilter == view.EmptyString {
				req.MacFilter = f.Value
			}
		case entities.FilterTypeIp:
			if req.IpFilter == view.EmptyString {
				req.IpFilter = f.Value
			}
		}
	}
	if cfg.EffectiveDestination() == entities.DestinationScp && cfg.ScpConfig != nil {
		req.Scp = &view.ScpTargetRequest{
			Server:   strings.TrimSpace(cfg.ScpConfig.ServerIp),
			Username: strings.TrimSpace(cfg.ScpConfig.Username),
			Password: cfg.ScpConfig.Password,
			Path:     cfg.ScpConfig.Path,
		}
	}
	return req, notice
}

func remoteLocation(location entities.CaptureLocation) string {
	switch location {
	case entities.LocationWired:
		return view.RemoteLocationWired
	case entities.LocationWireless:
		return view.RemoteLocationWireless
	default:
		return view.RemoteLocationAppliance
	}
}

func localLocation(remote string) entities.CaptureLocation {
	switch strings.ToLower(remote) {
	case view.RemoteLocationWired, strings.ToLower(string(entities.LocationWired)):
		return entities.LocationWired
	case view.RemoteLocationWireless, strings.ToLower(string(entities.LocationWireless)):
		return entities.LocationWireless
	case view.RemoteLocationAppliance, strings.ToLower(string(entities.LocationAppliancePort)):
		return entities.LocationAppliancePort
	}
	return ""
}

// sessionFromDescriptor
// best effort mapping of a remote active capture, status falls back to RUNNING
func sessionFromDescriptor(d view.RemoteDescriptor, clock func() time.Time) (entities.CaptureSession, bool) {
	id := view.DescriptorString(d, "id", "captureId", "capture_id", "sessionId", "_id")
	if id == view.EmptyString {
		return entities.CaptureSession{}, false
	}
	s := entities.CaptureSession{
		Id:        id,
		Location:  localLocation(view.DescriptorString(d, "location", "captureLocation", "type")),
		Direction: entities.CaptureDirection(strings.ToUpper(view.DescriptorString(d, "direction"))),
		Status:    entities.SessionRunning,
	}
	if strings.EqualFold(view.DescriptorString(d, "status", "state"), string(entities.SessionStopping)) {
		s.Status = entities.SessionStopping
	}
	if seconds, ok := view.DescriptorInt64(d, "duration", "durationSeconds", "duration_seconds"); ok {
		s.DurationSeconds = int(seconds)
	} else if minutes, ok := view.DescriptorInt64(d, "durationMinutes", "duration_minutes"); ok {
		s.DurationSeconds = int(minutes) * 60
	}
	if started, ok := view.DescriptorTime(d, "startTime", "start_time", "startedAt", "createdAt"); ok {
		s.StartTime = started
	} else {
		s.StartTime = clock()
	}
	if mac := view.DescriptorString(d, "macFilter", "mac_filter"); mac != view.EmptyString {
		s.Filters = append(s.Filters, entities.AddressFilter{Type: entities.FilterTypeMac, Value: validator.FormatMacAddress(mac)})
	}
	if ip := view.DescriptorString(d, "ipFilter", "ip_filter"); ip != view.EmptyString {
		s.Filters = append(s.Filters, entities.AddressFilter{Type: entities.FilterTypeIp, Value: ip})
	}
	return s, true
}

// mergeSession
// keeps local display fields of a session still reported active
func mergeSession(local, remote entities.CaptureSession) entities.CaptureSession {
	ret := local
	ret.Status = remote.Status
	if ret.Location == "" {
		ret.Location = remote.Location
	}
	if ret.Direction == "" {
		ret.Direction = remote.Direction
	}
	if ret.DurationSeconds <= 0 {
		ret.DurationSeconds = remote.DurationSeconds
	}
	if len(ret.Filters) == 0 {
		ret.Filters = remote.Filters
	}
	if ret.StartTime.IsZero() {
		ret.StartTime = remote.StartTime
	}
	return ret
}

func sortedSessions(sessions map[string]entities.CaptureSession) []entities.CaptureSession {
	ret := make([]entities.CaptureSession, 0, len(sessions))
	for _, s := range sessions {
		ret = append(ret, s)
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].StartTime.Equal(ret[j].StartTime) {
			return ret[i].Id < ret[j].Id
		}
		return ret[i].StartTime.Before(ret[j].StartTime)
	})
	return ret
}
