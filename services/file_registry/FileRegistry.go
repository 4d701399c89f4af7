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

// Package file_registry
// completed capture artifacts: list, download and delete
package file_registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/Netcracker/qubership-apihub-capture-manager/entities"
	"github.com/Netcracker/qubership-apihub-capture-manager/services/cloud_storage"
	"github.com/Netcracker/qubership-apihub-capture-manager/services/gateway"
	"github.com/Netcracker/qubership-apihub-capture-manager/view"
	log "github.com/sirupsen/logrus"
)

// FileRegistry
// owns the local capture file list
type FileRegistry interface {
	// List fetches the remote list and replaces the local one
	List(ctx context.Context) ([]entities.CaptureFile, error)
	// Files returns the last listed files
	Files() []entities.CaptureFile
	Download(ctx context.Context, fileId string, filename string) ([]byte, error)
	// Delete removes the artifact remotely, then locally
	Delete(ctx context.Context, fileId string, filename string) error
	// SetListener registers a callback invoked with the new list after every change
	SetListener(listener func([]entities.CaptureFile))
}

type fileRegistryImpl struct {
	gw       gateway.Gateway
	archive  cloud_storage.CloudStorage
	lock     sync.RWMutex
	files    []entities.CaptureFile
	listener func([]entities.CaptureFile)
}

// NewFileRegistry
// archive may be nil
func NewFileRegistry(gw gateway.Gateway, archive cloud_storage.CloudStorage) FileRegistry {
	return &fileRegistryImpl{gw: gw, archive: archive, files: []entities.CaptureFile{}}
}

func (r *fileRegistryImpl) SetListener(listener func([]entities.CaptureFile)) {
	r.lock.Lock()
	r.listener = listener
	r.lock.Unlock()
}

func (r *fileRegistryImpl) List(ctx context.Context) ([]entities.CaptureFile, error) {
	descs, err := r.gw.ListCaptureFiles(ctx)
	if err != nil {
		return nil, err
	}
	files := NormalizeFiles(descs)
	r.lock.Lock()
	r.files = files
	r.lock.Unlock()
	r.notify()
	return copyFiles(files), nil
}

func (r *fileRegistryImpl) Files() []entities.CaptureFile {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return copyFiles(r.files)
}

func (r *fileRegistryImpl) Download(ctx context.Context, fileId string, filename string) ([]byte, error) {
	if fileId == view.EmptyString {
		return nil, fmt.Errorf("file id must not be empty")
	}
	data, err := r.gw.DownloadCaptureFile(ctx, fileId)
	if err != nil {
		log.Warnf("download of capture file %s (%s) failed: %v", fileId, filename, err)
		return nil, err
	}
	log.Infof("downloaded capture file %s (%s), %d byte(s)", fileId, filename, len(data))
	if r.archive != nil && r.archive.IsActive() {
		name := filename
		if name == view.EmptyString {
			name = fileId
		}
		r.archive.StoreFile(name, data)
	}
	return data, nil
}

func (r *fileRegistryImpl) Delete(ctx context.Context, fileId string, filename string) error {
	if fileId == view.EmptyString {
		return fmt.Errorf("file id must not be empty")
	}
	if err := r.gw.DeleteCaptureFile(ctx, fileId); err != nil {
		log.Warnf("delete of capture file %s (%s) failed: %v", fileId, filename, err)
		return err
	}
	r.lock.Lock()
	kept := make([]entities.CaptureFile, 0, len(r.files))
	for _, f := range r.files {
		if f.Id != fileId {
			kept = append(kept, f)
		}
	}
	r.files = kept
	r.lock.Unlock()
	log.Infof("capture file %s (%s) deleted", fileId, filename)
	r.notify()
	return nil
}

func (r *fileRegistryImpl) notify() {
	r.lock.RLock()
	listener := r.listener
	files := copyFiles(r.files)
	r.lock.RUnlock()
	if listener != nil {
		listener(files)
	}
}

// NormalizeFiles
// maps loosely shaped remote descriptors to capture files, defaults are derived from the index
func NormalizeFiles(descs []view.RemoteDescriptor) []entities.CaptureFile {
	ret := make([]entities.CaptureFile, 0, len(descs))
	for idx, d := range descs {
		f := entities.CaptureFile{
			Id:       view.DescriptorString(d, "id", "fileId", "file_id", "_id"),
			Filename: view.DescriptorString(d, "filename", "fileName", "file_name", "name"),
			Status:   view.DescriptorString(d, "status", "state"),
		}
		if f.Id == view.EmptyString {
			f.Id = fmt.Sprintf("file-%d", idx)
		}
		if f.Filename == view.EmptyString {
			f.Filename = fmt.Sprintf("capture-%d.pcap", idx)
		}
		if size, ok := view.DescriptorInt64(d, "size", "sizeBytes", "size_bytes", "fileSize"); ok {
			f.SizeBytes = size
		}
		// zero time when the controller reports no date
		if created, ok := view.DescriptorTime(d, "date", "createdAt", "created_at", "timestamp"); ok {
			f.CreatedAt = created
		}
		ret = append(ret, f)
	}
	return ret
}

func copyFiles(files []entities.CaptureFile) []entities.CaptureFile {
	ret := make([]entities.CaptureFile, len(files))
	copy(ret, files)
	return ret
}
