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

// remote location vocabulary
const (
	RemoteLocationAppliance = "appliance"
	RemoteLocationWired     = "wired"
	RemoteLocationWireless  = "wireless"
)

// StartCaptureRequest
// capture start payload in the remote controller's vocabulary
type StartCaptureRequest struct {
	Location            string            `json:"location"`
	ApId                string            `json:"apId,omitempty"`
	Radio               string            `json:"radio,omitempty"`
	IncludeWiredClients *bool             `json:"includeWiredClients,omitempty"`
	Direction           string            `json:"direction,omitempty"`
	Duration            int               `json:"duration"` // seconds
	SnapLength          int               `json:"snapLength"`
	Protocol            string            `json:"protocol,omitempty"`
	MacFilter           string            `json:"macFilter,omitempty"`
	IpFilter            string            `json:"ipFilter,omitempty"`
	Destination         string            `json:"destination"`
	Scp                 *ScpTargetRequest `json:"scp,omitempty"`
}

// ScpTargetRequest
// remote copy target, sent only for SCP destination
type ScpTargetRequest struct {
	Server   string `json:"server"`
	Username string `json:"username"`
	Password string `json:"password"`
	Path     string `json:"path,omitempty"`
}

// StopAllRequest
// bulk stop flag
type StopAllRequest struct {
	All bool `json:"all"`
}
