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

package session

import (
	"encoding/json"
	"fmt"

	"github.com/Netcracker/qubership-apihub-capture-manager/entities"
	"github.com/Netcracker/qubership-apihub-capture-manager/services/disk_cache"
	log "github.com/sirupsen/logrus"
)

// JournalCacheName pogreb store name under the journal directory
const JournalCacheName = "capture_sessions"

// Journal
// persisted copy of the local session set, only used to survive a restart
type Journal interface {
	Save(session entities.CaptureSession) error
	Remove(id string) error
	// Replace makes the journal hold exactly the given sessions
	Replace(sessions []entities.CaptureSession) error
	Load() ([]entities.CaptureSession, error)
}

type diskJournal struct {
	cache disk_cache.DiskCache
}

// NewJournal
// a journal over a disk cache, one JSON record per session id
func NewJournal(cache disk_cache.DiskCache) Journal {
	return &diskJournal{cache: cache}
}

func (j *diskJournal) Save(session entities.CaptureSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("unable to encode session %s: %w", session.Id, err)
	}
	return j.cache.StoreItem(session.Id, data)
}

func (j *diskJournal) Remove(id string) error {
	return j.cache.DeleteItem(id)
}

func (j *diskJournal) Replace(sessions []entities.CaptureSession) error {
	items, err := j.cache.Items()
	if err != nil {
		return err
	}
	keep := make(map[string]bool, len(sessions))
	for _, s := range sessions {
		keep[s.Id] = true
		if err = j.Save(s); err != nil {
			return err
		}
	}
	for id := range items {
		if !keep[id] {
			if err = j.cache.DeleteItem(id); err != nil {
				return err
			}
		}
	}
	return nil
}

func (j *diskJournal) Load() ([]entities.CaptureSession, error) {
	items, err := j.cache.Items()
	if err != nil {
		return nil, err
	}
	ret := make([]entities.CaptureSession, 0, len(items))
	for key, data := range items {
		var s entities.CaptureSession
		if err = json.Unmarshal(data, &s); err != nil || s.Id == "" {
			log.Warnf("journal record %s is not readable, dropped: %v", key, err)
			_ = j.cache.DeleteItem(key)
			continue
		}
		ret = append(ret, s)
	}
	return ret, nil
}
