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

package entities

import (
	"math"
	"time"
)

type SessionStatus string

// session states: RUNNING -> STOPPING -> removed, or RUNNING -> removed
const (
	SessionRunning  SessionStatus = "RUNNING"
	SessionStopping SessionStatus = "STOPPING"
)

// CaptureSession
// a locally known remote capture
type CaptureSession struct {
	Id              string           `json:"id"`
	Location        CaptureLocation  `json:"location,omitempty"`
	Direction       CaptureDirection `json:"direction,omitempty"`
	Filters         []AddressFilter  `json:"filters,omitempty"`
	DurationSeconds int              `json:"durationSeconds"`
	StartTime       time.Time        `json:"startTime"`
	Status          SessionStatus    `json:"status"`
}

// SessionProgress
// derived display values, never stored
type SessionProgress struct {
	Id               string        `json:"id"`
	Status           SessionStatus `json:"status"`
	ElapsedSeconds   int           `json:"elapsedSeconds"`
	RemainingSeconds int           `json:"remainingSeconds"`
	ProgressPercent  float64       `json:"progressPercent"`
}

// SessionState
// a session together with its progress, as shown on the dashboard
type SessionState struct {
	CaptureSession
	Progress SessionProgress `json:"progress"`
}

// StartResult
// a created session together with operator notices produced on the way
type StartResult struct {
	Session  CaptureSession `json:"session"`
	Notice   string         `json:"notice,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
}

// ProgressAt
// computes progress against the wall clock
func (s CaptureSession) ProgressAt(now time.Time) SessionProgress {
	elapsed := int(math.Floor(now.Sub(s.StartTime).Seconds()))
	if elapsed < 0 {
		elapsed = 0 // clock skew between the controller and us
	}
	ret := SessionProgress{Id: s.Id, Status: s.Status, ElapsedSeconds: elapsed}
	if s.DurationSeconds <= 0 {
		return ret // unknown duration, nothing to draw
	}
	ret.RemainingSeconds = s.DurationSeconds - elapsed
	if ret.RemainingSeconds < 0 {
		ret.RemainingSeconds = 0
	}
	ret.ProgressPercent = math.Min(100, 100*float64(elapsed)/float64(s.DurationSeconds))
	return ret
}
