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

import "strings"

type CaptureLocation string
type CaptureDirection string
type CaptureProtocol string
type CaptureDestination string
type FilterType string

// capture points
const (
	LocationAppliancePort CaptureLocation = "APPLIANCE_PORT"
	LocationWired         CaptureLocation = "WIRED"
	LocationWireless      CaptureLocation = "WIRELESS"
)

const (
	DirectionBoth    CaptureDirection = "BOTH"
	DirectionIngress CaptureDirection = "INGRESS"
	DirectionEgress  CaptureDirection = "EGRESS"
)

// ProtocolAny means no protocol restriction
const (
	ProtocolAny  CaptureProtocol = ""
	ProtocolTcp  CaptureProtocol = "TCP"
	ProtocolUdp  CaptureProtocol = "UDP"
	ProtocolIcmp CaptureProtocol = "ICMP"
)

const (
	DestinationFile CaptureDestination = "FILE"
	DestinationScp  CaptureDestination = "SCP"
)

const (
	FilterTypeMac FilterType = "mac"
	FilterTypeIp  FilterType = "ip"
)

// Normalized
// filter types are matched case-insensitively, "MAC" and "mac" are the same type
func (t FilterType) Normalized() FilterType {
	return FilterType(strings.ToLower(strings.TrimSpace(string(t))))
}

// AddressFilter
// a single MAC or IP address restriction
type AddressFilter struct {
	Type  FilterType `json:"type"`
	Value string     `json:"value"`
}

// ScpConfig
// remote copy target for the SCP destination
type ScpConfig struct {
	ServerIp string `json:"serverIp"`
	Username string `json:"username"`
	Password string `json:"password"`
	Path     string `json:"path,omitempty"`
}

// CaptureConfig
// a proposed capture, built fresh for every start request and discarded after submission
type CaptureConfig struct {
	Location            CaptureLocation    `json:"location"`
	ApId                string             `json:"apId,omitempty"`  // WIRELESS only
	Radio               string             `json:"radio,omitempty"` // WIRELESS only
	IncludeWiredClients bool               `json:"includeWiredClients,omitempty"`
	Direction           CaptureDirection   `json:"direction,omitempty"`
	DurationMinutes     int                `json:"durationMinutes"`
	TruncationBytes     int                `json:"truncationBytes"` // 0 = full packet
	Protocol            CaptureProtocol    `json:"protocol,omitempty"`
	AddressFilters      []AddressFilter    `json:"addressFilters,omitempty"`
	Destination         CaptureDestination `json:"destination,omitempty"`
	ScpConfig           *ScpConfig         `json:"scpConfig,omitempty"`
}

// EffectiveDirection
// an unset direction means both directions
func (c CaptureConfig) EffectiveDirection() CaptureDirection {
	if c.Direction == "" {
		return DirectionBoth
	}
	return c.Direction
}

// EffectiveDestination
// an unset destination means a file kept on the controller
func (c CaptureConfig) EffectiveDestination() CaptureDestination {
	if c.Destination == "" {
		return DestinationFile
	}
	return c.Destination
}

// ValidationResult
// outcome of a capture configuration check; a warning never makes a config invalid
type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Error   string `json:"error,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// SizeEstimate
// advisory capture size
type SizeEstimate struct {
	EstimatedSizeMB int64  `json:"estimatedSizeMB"`
	Warning         string `json:"warning,omitempty"`
}
