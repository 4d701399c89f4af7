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

package cloud_storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/Netcracker/qubership-apihub-capture-manager/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryUploader struct {
	lock     sync.Mutex
	failures int
	puts     map[string][]byte
	attempts int
}

func (m *memoryUploader) EnsureBucket(_ context.Context, _ string) error {
	return nil
}

func (m *memoryUploader) Put(_ context.Context, _ string, objectName string, content []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.attempts++
	if m.failures > 0 {
		m.failures--
		return errors.New("service unavailable")
	}
	if m.puts == nil {
		m.puts = map[string][]byte{}
	}
	m.puts[objectName] = content
	return nil
}

func TestInactiveStorage(t *testing.T) {
	s := NewCloudStorage(entities.MinioStorageCreds{})
	assert.False(t, s.IsActive())
	assert.NotPanics(t, func() {
		s.StoreFile("a.pcap", []byte{1, 2, 3})
		s.Close()
		s.Close()
	})
}

func TestStoreFileWithRetries(t *testing.T) {
	up := &memoryUploader{failures: 2}
	s := newCloudStorageWithUploader(entities.MinioStorageCreds{IsActive: true, BucketName: "captures"}, up)
	require.True(t, s.IsActive())
	s.StoreFile("capture-1.pcap", []byte("pcap-bytes"))
	s.Close()
	assert.Equal(t, 3, up.attempts)
	assert.Equal(t, []byte("pcap-bytes"), up.puts[TableName+"/capture-1.pcap"])
}

func TestStoreFileCompressed(t *testing.T) {
	up := &memoryUploader{}
	s := newCloudStorageWithUploader(entities.MinioStorageCreds{IsActive: true, CompressBeforeUpload: true}, up)
	s.StoreFile("dir/capture-2.pcap", []byte("pcap-bytes"))
	s.Close()
	stored, found := up.puts[TableName+"/capture-2.pcap.gz"]
	require.True(t, found)
	zr, err := gzip.NewReader(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.Equal(t, "capture-2.pcap", zr.Name)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, "pcap-bytes", string(plain))
}

func TestStoreFileIgnoresEmpty(t *testing.T) {
	up := &memoryUploader{}
	s := newCloudStorageWithUploader(entities.MinioStorageCreds{IsActive: true}, up)
	s.StoreFile("", []byte{1})
	s.StoreFile("x.pcap", nil)
	s.Close()
	assert.Equal(t, 0, up.attempts)
}
