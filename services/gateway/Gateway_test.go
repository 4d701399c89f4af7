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

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Netcracker/qubership-apihub-capture-manager/entities"
	"github.com/Netcracker/qubership-apihub-capture-manager/exception"
	"github.com/Netcracker/qubership-apihub-capture-manager/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "token-123"

func newTestGateway(t *testing.T, handler http.HandlerFunc) Gateway {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	gw, err := NewGateway(entities.GatewayConfig{BaseUrl: srv.URL + "/", Token: testToken, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return gw
}

func TestNewGatewayRequiresUrl(t *testing.T) {
	_, err := NewGateway(entities.GatewayConfig{})
	assert.Error(t, err)
}

func TestStartCapture(t *testing.T) {
	var received view.StartCaptureRequest
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, view.GatewayCapturesPath, r.URL.Path)
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"captureId":"cap-7"}}`))
	})
	id, err := gw.StartCapture(context.Background(), view.StartCaptureRequest{Location: view.RemoteLocationWired, Duration: 300})
	require.NoError(t, err)
	assert.Equal(t, "cap-7", id)
	assert.Equal(t, view.RemoteLocationWired, received.Location)
	assert.Equal(t, 300, received.Duration)
}

func TestStartCaptureWithoutId(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	id, err := gw.StartCapture(context.Background(), view.StartCaptureRequest{})
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestRemoteErrorMessage(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":{"message":"capture already running on this port"}}`))
	})
	_, err := gw.StartCapture(context.Background(), view.StartCaptureRequest{})
	require.Error(t, err)
	var remote *exception.RemoteRequestError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, http.StatusConflict, remote.Status)
	assert.Equal(t, "capture already running on this port", remote.Error())
}

func TestRemoteErrorFallback(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	err := gw.StopCapture(context.Background(), "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stop capture abc")
	assert.Contains(t, err.Error(), "500")
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	gw, err := NewGateway(entities.GatewayConfig{BaseUrl: srv.URL, Timeout: time.Second})
	require.NoError(t, err)
	srv.Close()
	err = gw.StopAllCaptures(context.Background())
	var remote *exception.RemoteRequestError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, 0, remote.Status)
	assert.NotNil(t, remote.Unwrap())
}

func TestStopPaths(t *testing.T) {
	var paths []string
	var stopAll view.StopAllRequest
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.EscapedPath())
		if r.URL.Path == view.GatewayCaptureStopAllPath {
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &stopAll)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, gw.StopCapture(context.Background(), "a/b"))
	require.NoError(t, gw.StopAllCaptures(context.Background()))
	require.NoError(t, gw.DeleteCaptureFile(context.Background(), "f1"))
	assert.Equal(t, []string{
		"POST /api/v1/packet-captures/a%2Fb/stop",
		"POST /api/v1/packet-captures/stop",
		"DELETE /api/v1/packet-captures/files/f1",
	}, paths)
	assert.True(t, stopAll.All)
}

func TestListActiveCaptures(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, view.GatewayActiveStatus, r.URL.Query().Get("status"))
		_, _ = w.Write([]byte(`{"captures":[{"id":"c1"},{"captureId":"c2"}]}`))
	})
	list, err := gw.ListActiveCaptures(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c1", view.DescriptorString(list[0], "id", "captureId"))
	assert.Equal(t, "c2", view.DescriptorString(list[1], "id", "captureId"))
}

func TestListCaptureFilesBareArray(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"f1","filename":"a.pcap","size":10}]`))
	})
	list, err := gw.ListCaptureFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	size, ok := view.DescriptorInt64(list[0], "size")
	assert.True(t, ok)
	assert.Equal(t, int64(10), size)
}

func TestListUnexpectedFormat(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"unexpected":true}`))
	})
	_, err := gw.ListAccessPoints(context.Background())
	assert.Error(t, err)
}

func TestDownloadCaptureFile(t *testing.T) {
	payload := []byte{0xd4, 0xc3, 0xb2, 0xa1, 0x02, 0x00}
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/packet-captures/files/f9/download", r.URL.Path)
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(payload)
	})
	data, err := gw.DownloadCaptureFile(context.Background(), "f9")
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}
