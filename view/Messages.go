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

import "encoding/json"

// websocket message types
const (
	MessageProgress   = "progress"
	MessageSessions   = "sessions"
	MessageFiles      = "files"
	MessageNotice     = "notice"
	MessageVisibility = "visibility"
)

// WsMessage
// an envelope for every websocket frame in both directions
type WsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// VisibilityPayload
// sent by the dashboard page when its tab is shown or hidden
type VisibilityPayload struct {
	Visible bool `json:"visible"`
}

// NoticePayload
// a transient operator notice
type NoticePayload struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}
