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

package inventory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Netcracker/qubership-apihub-capture-manager/entities"
	"github.com/Netcracker/qubership-apihub-capture-manager/services/gateway"
	"github.com/Netcracker/qubership-apihub-capture-manager/view"
	"github.com/shaj13/libcache"
	_ "github.com/shaj13/libcache/lru"
	log "github.com/sirupsen/logrus"
)

const accessPointsKey = "access-points"

// Inventory
// access points known to the controller
type Inventory interface {
	// AccessPoints returns the cached list, fetching it when it is older than the TTL
	AccessPoints(ctx context.Context) ([]entities.AccessPoint, error)
	// Known returns the last fetched list without touching the network
	Known() []entities.AccessPoint
	Invalidate()
}

type inventoryImpl struct {
	gw    gateway.Gateway
	cache libcache.Cache // freshness marker, expires after TTL
	lock  sync.Mutex
	known []entities.AccessPoint
}

// NewInventory
// creates an inventory refreshed from the gateway at most once per ttl
func NewInventory(gw gateway.Gateway, ttl time.Duration) Inventory {
	if ttl <= 0 {
		ttl = view.DefaultInventoryTTL
	}
	cache := libcache.LRU.New(1)
	cache.SetTTL(ttl)
	return &inventoryImpl{gw: gw, cache: cache}
}

func (inv *inventoryImpl) AccessPoints(ctx context.Context) ([]entities.AccessPoint, error) {
	if cached, found := inv.cache.Load(accessPointsKey); found {
		return cached.([]entities.AccessPoint), nil
	}
	descs, err := inv.gw.ListAccessPoints(ctx)
	if err != nil {
		return inv.Known(), err
	}
	aps := NormalizeAccessPoints(descs)
	inv.cache.Store(accessPointsKey, aps)
	inv.lock.Lock()
	inv.known = aps
	inv.lock.Unlock()
	log.Debugf("access point inventory refreshed: %d item(s)", len(aps))
	return aps, nil
}

func (inv *inventoryImpl) Known() []entities.AccessPoint {
	inv.lock.Lock()
	defer inv.lock.Unlock()
	ret := make([]entities.AccessPoint, len(inv.known))
	copy(ret, inv.known)
	return ret
}

func (inv *inventoryImpl) Invalidate() {
	inv.cache.Delete(accessPointsKey)
}

// NormalizeAccessPoints
// maps remote descriptors to access points, entries without any id are dropped
func NormalizeAccessPoints(descs []view.RemoteDescriptor) []entities.AccessPoint {
	ret := make([]entities.AccessPoint, 0, len(descs))
	for idx, d := range descs {
		ap := entities.AccessPoint{
			Id:    view.DescriptorString(d, "id", "apId", "_id", "serial", "serialNumber"),
			Name:  view.DescriptorString(d, "name", "hostname", "displayName"),
			Mac:   view.DescriptorString(d, "mac", "macAddress", "mac_address"),
			Model: view.DescriptorString(d, "model", "type"),
		}
		if ap.Id == view.EmptyString {
			ap.Id = ap.Mac // some controllers key devices by MAC only
		}
		if ap.Id == view.EmptyString {
			log.Warnf("access point #%d has no identifier, skipped", idx)
			continue
		}
		if ap.Name == view.EmptyString {
			ap.Name = fmt.Sprintf("AP %s", ap.Id)
		}
		ret = append(ret, ap)
	}
	return ret
}
