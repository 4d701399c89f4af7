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

package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorString(t *testing.T) {
	d := RemoteDescriptor{"id": "  ", "captureId": 42.0, "flag": true}
	assert.Equal(t, "42", DescriptorString(d, "id", "captureId"))
	assert.Equal(t, "true", DescriptorString(d, "flag"))
	assert.Equal(t, EmptyString, DescriptorString(d, "missing"))
}

func TestDescriptorInt64(t *testing.T) {
	n, ok := DescriptorInt64(RemoteDescriptor{"size": "1024"}, "sizeBytes", "size")
	assert.True(t, ok)
	assert.Equal(t, int64(1024), n)
	_, ok = DescriptorInt64(RemoteDescriptor{"size": "big"}, "size")
	assert.False(t, ok)
}

func TestDescriptorTime(t *testing.T) {
	expected := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	got, ok := DescriptorTime(RemoteDescriptor{"startTime": "2025-03-01T12:00:00Z"}, "startTime")
	require.True(t, ok)
	assert.True(t, expected.Equal(got))

	got, ok = DescriptorTime(RemoteDescriptor{"createdAt": float64(expected.Unix())}, "createdAt")
	require.True(t, ok)
	assert.True(t, expected.Equal(got))

	got, ok = DescriptorTime(RemoteDescriptor{"createdAt": float64(expected.UnixMilli())}, "createdAt")
	require.True(t, ok)
	assert.True(t, expected.Equal(got))

	_, ok = DescriptorTime(RemoteDescriptor{"createdAt": "yesterday"}, "createdAt")
	assert.False(t, ok)
}

func TestDecodeDescriptorList(t *testing.T) {
	list, err := DecodeDescriptorList([]byte(`{"data":{"files":[{"id":"a"},"junk"]}}`), "files")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", DescriptorString(list[0], "id"))
	assert.Empty(t, list[1])

	list, err = DecodeDescriptorList([]byte(" "))
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = DecodeDescriptorList([]byte(`42`))
	assert.Error(t, err)
}

func TestDecodeDescriptor(t *testing.T) {
	d, err := DecodeDescriptor([]byte(`"cap-9"`))
	require.NoError(t, err)
	assert.Equal(t, "cap-9", DescriptorString(d, "id"))

	d, err = DecodeDescriptor([]byte(`{"data":{"id":"cap-1"}}`))
	require.NoError(t, err)
	assert.Equal(t, "cap-1", DescriptorString(d, "id"))
}

func TestRemoteMessage(t *testing.T) {
	assert.Equal(t, "busy", RemoteMessage([]byte(`{"error":{"detail":"busy"}}`)))
	assert.Equal(t, "denied", RemoteMessage([]byte(`{"message":"denied"}`)))
	assert.Equal(t, EmptyString, RemoteMessage([]byte(`<html>`)))
}
