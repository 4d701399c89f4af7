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

package disk_cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cacheTestName = "disk_cache_test"

func TestDiskCacheLifecycle(t *testing.T) {
	dirName := t.TempDir()
	dc, err := NewDiskCache(cacheTestName, dirName)
	require.NoError(t, err)

	require.NoError(t, dc.StoreItem("s1", []byte(`{"id":"s1"}`)))
	require.NoError(t, dc.StoreItem("s2", []byte(`{"id":"s2"}`)))
	require.NoError(t, dc.StoreItem("s1", []byte(`{"id":"s1","status":"RUNNING"}`)))
	assert.Equal(t, 2, dc.Count())

	val, err := dc.GetItem("s1")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"s1","status":"RUNNING"}`, string(val))

	missing, err := dc.GetItem("nope")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	assert.Error(t, dc.StoreItem("", []byte("x")))
	assert.Error(t, dc.DeleteItem(""))

	require.NoError(t, dc.DeleteItem("s2"))
	require.NoError(t, dc.DeleteItem("s2"))
	items, err := dc.Items()
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Contains(t, items, "s1")
	assert.Equal(t, 1, dc.Sync())
	require.NoError(t, dc.Close())
	assert.Error(t, dc.Close())
	assert.Equal(t, -1, dc.Count())
}

func TestDiskCacheSurvivesReopen(t *testing.T) {
	dirName := t.TempDir()
	dc, err := NewDiskCache(cacheTestName, dirName)
	require.NoError(t, err)
	require.NoError(t, dc.StoreItem("s1", []byte("one")))
	require.NoError(t, dc.Close())

	dc, err = NewDiskCache(cacheTestName, dirName)
	require.NoError(t, err)
	val, err := dc.GetItem("s1")
	require.NoError(t, err)
	assert.Equal(t, "one", string(val))

	require.NoError(t, dc.Destroy())
	_, err = os.Stat(filepath.Join(dirName, cacheTestName))
	assert.True(t, os.IsNotExist(err))
}

func TestNewDiskCacheRequiresName(t *testing.T) {
	_, err := NewDiskCache("", t.TempDir())
	assert.Error(t, err)
}
