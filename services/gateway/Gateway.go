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

// Package gateway
// authenticated REST access to the remote controller
package gateway

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Netcracker/qubership-apihub-capture-manager/entities"
	"github.com/Netcracker/qubership-apihub-capture-manager/exception"
	"github.com/Netcracker/qubership-apihub-capture-manager/view"
	log "github.com/sirupsen/logrus"
	"gopkg.in/resty.v1"
)

// Gateway
// logical controller operations used by the capture manager
type Gateway interface {
	StartCapture(ctx context.Context, req view.StartCaptureRequest) (string, error)
	StopCapture(ctx context.Context, id string) error
	StopAllCaptures(ctx context.Context) error
	ListActiveCaptures(ctx context.Context) ([]view.RemoteDescriptor, error)
	ListCaptureFiles(ctx context.Context) ([]view.RemoteDescriptor, error)
	DownloadCaptureFile(ctx context.Context, id string) ([]byte, error)
	DeleteCaptureFile(ctx context.Context, id string) error
	ListAccessPoints(ctx context.Context) ([]view.RemoteDescriptor, error)
}

// gatewayImpl
// resty based implementation
type gatewayImpl struct {
	client *resty.Client
}

// NewGateway
// creates a client bound to the controller base URL with bearer authentication
func NewGateway(cfg entities.GatewayConfig) (Gateway, error) {
	if cfg.BaseUrl == view.EmptyString {
		return nil, fmt.Errorf("controller gateway URL must not be empty")
	}
	if _, err := url.Parse(cfg.BaseUrl); err != nil {
		return nil, fmt.Errorf("invalid controller gateway URL '%s': %v", cfg.BaseUrl, err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = view.DefaultGatewayTimeout
	}
	tr := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if cfg.Insecure {
		log.Warnf("TLS verification for controller '%s' is turned off", cfg.BaseUrl)
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	client := resty.NewWithClient(&http.Client{Transport: tr, Timeout: cfg.Timeout})
	client.SetHostURL(strings.TrimRight(cfg.BaseUrl, "/"))
	client.SetHeader("Accept", "application/json")
	if cfg.Token != view.EmptyString {
		client.SetAuthToken(cfg.Token)
	}
	if cfg.RetryCount > 0 {
		client.SetRetryCount(cfg.RetryCount)
	}
	return &gatewayImpl{client: client}, nil
}

// request
// a request bound to the caller's context
func (g *gatewayImpl) request(ctx context.Context) *resty.Request {
	return g.client.R().SetContext(ctx)
}

// check
// converts a transport failure or non-success response into RemoteRequestError
func check(operation string, resp *resty.Response, err error) error {
	if err != nil {
		log.Debugf("%s failed on transport: %v", operation, err)
		return exception.NewRemoteRequestError(operation, 0, view.EmptyString, err)
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		log.Debugf("%s failed with status %d: %s", operation, resp.StatusCode(), string(resp.Body()))
		return exception.NewRemoteRequestError(operation, resp.StatusCode(), view.RemoteMessage(resp.Body()), nil)
	}
	return nil
}

// StartCapture
// submits the mapped configuration, returns the remote session id (may be empty)
func (g *gatewayImpl) StartCapture(ctx context.Context, req view.StartCaptureRequest) (string, error) {
	const operation = "start capture"
	resp, err := g.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(view.GatewayCapturesPath)
	if err = check(operation, resp, err); err != nil {
		return view.EmptyString, err
	}
	d, err := view.DecodeDescriptor(resp.Body())
	if err != nil {
		log.Warnf("unable to decode start capture response '%s': %v", string(resp.Body()), err)
		return view.EmptyString, nil
	}
	return view.DescriptorString(d, "id", "captureId", "capture_id", "sessionId", "_id"), nil
}

// StopCapture
// stops one capture by id
func (g *gatewayImpl) StopCapture(ctx context.Context, id string) error {
	resp, err := g.request(ctx).Post(fmt.Sprintf(view.GatewayCaptureStopPath, url.PathEscape(id)))
	return check("stop capture "+id, resp, err)
}

// StopAllCaptures
// a single bulk stop call
func (g *gatewayImpl) StopAllCaptures(ctx context.Context) error {
	resp, err := g.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(view.StopAllRequest{All: true}).
		Post(view.GatewayCaptureStopAllPath)
	return check("stop all captures", resp, err)
}

// ListActiveCaptures
// returns remote descriptors of captures still running
func (g *gatewayImpl) ListActiveCaptures(ctx context.Context) ([]view.RemoteDescriptor, error) {
	resp, err := g.request(ctx).
		SetQueryParam("status", view.GatewayActiveStatus).
		Get(view.GatewayCapturesPath)
	return decodeList("list active captures", resp, err, "captures", "sessions")
}

// ListCaptureFiles
// returns remote descriptors of completed capture artifacts
func (g *gatewayImpl) ListCaptureFiles(ctx context.Context) ([]view.RemoteDescriptor, error) {
	resp, err := g.request(ctx).Get(view.GatewayCaptureFilesPath)
	return decodeList("list capture files", resp, err, "files")
}

// DownloadCaptureFile
// returns the artifact bytes
func (g *gatewayImpl) DownloadCaptureFile(ctx context.Context, id string) ([]byte, error) {
	resp, err := g.request(ctx).
		SetHeader("Accept", "application/octet-stream").
		Get(fmt.Sprintf(view.GatewayCaptureFileDownloadPath, url.PathEscape(id)))
	if err = check("download capture file "+id, resp, err); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// DeleteCaptureFile
// removes the artifact on the controller
func (g *gatewayImpl) DeleteCaptureFile(ctx context.Context, id string) error {
	resp, err := g.request(ctx).Delete(fmt.Sprintf(view.GatewayCaptureFilePath, url.PathEscape(id)))
	return check("delete capture file "+id, resp, err)
}

// ListAccessPoints
// returns remote descriptors of access points
func (g *gatewayImpl) ListAccessPoints(ctx context.Context) ([]view.RemoteDescriptor, error) {
	resp, err := g.request(ctx).Get(view.GatewayAccessPointsPath)
	return decodeList("list access points", resp, err, "accessPoints", "devices")
}

func decodeList(operation string, resp *resty.Response, err error, keys ...string) ([]view.RemoteDescriptor, error) {
	if err = check(operation, resp, err); err != nil {
		return nil, err
	}
	list, err := view.DecodeDescriptorList(resp.Body(), keys...)
	if err != nil {
		return nil, exception.NewRemoteRequestError(operation, resp.StatusCode(),
			fmt.Sprintf("unable to %s: unexpected response format (%v)", operation, err), err)
	}
	return list, nil
}
