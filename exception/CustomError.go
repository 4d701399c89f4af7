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

package exception

import (
	"errors"
	"fmt"
	"strings"
)

// CustomError
// an error body returned to the dashboard
type CustomError struct {
	Status  int                    `json:"status"`
	Code    string                 `json:"code,omitempty"`
	Message string                 `json:"message,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Debug   string                 `json:"debug,omitempty"`
}

func (c CustomError) Error() string {
	msg := c.Message
	for k, v := range c.Params {
		msg = strings.ReplaceAll(msg, "$"+k, fmt.Sprintf("%v", v))
	}
	if c.Debug != "" {
		return msg + ": " + c.Debug
	}
	return msg
}

// ValidationError
// a capture configuration failed a local rule; never reaches the network
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError
// creates a validation error with the first failing rule message
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// RemoteRequestError
// a call to the remote controller failed with a non-success response or on transport
type RemoteRequestError struct {
	Operation string // what was attempted, e.g. "stop capture 42"
	Status    int    // HTTP status, 0 on transport failure
	Message   string // single human readable message
	Err       error  // underlying transport error, if any
}

func (e *RemoteRequestError) Error() string {
	return e.Message
}

func (e *RemoteRequestError) Unwrap() error {
	return e.Err
}

// NewRemoteRequestError
// prefers the remote provided message and falls back to a generic one
func NewRemoteRequestError(operation string, status int, remoteMessage string, cause error) *RemoteRequestError {
	msg := remoteMessage
	if msg == "" {
		switch {
		case cause != nil:
			msg = fmt.Sprintf("unable to %s: %v", operation, cause)
		case status != 0:
			msg = fmt.Sprintf("unable to %s: remote controller responded with status %d", operation, status)
		default:
			msg = fmt.Sprintf("unable to %s", operation)
		}
	}
	return &RemoteRequestError{Operation: operation, Status: status, Message: msg, Err: cause}
}

// ErrSessionNotFound
// the requested session id is not tracked locally
var ErrSessionNotFound = errors.New("capture session not found")

// ErrStopInProgress
// a stop request for the session is already in flight
var ErrStopInProgress = errors.New("stop request already in progress")
