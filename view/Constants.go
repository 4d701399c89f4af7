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

import "time"

const (
	EmptyString  = ""
	GzipSuffix   = ".gz"
	ApiKeyHeader = "api-key"
	// DefaultPollInterval remote state refresh period while sessions are active
	DefaultPollInterval = time.Second * 3
	// DefaultProgressInterval local progress redraw period, independent of polling
	DefaultProgressInterval = time.Second
	// DefaultInventoryTTL how long a fetched access point list is considered fresh
	DefaultInventoryTTL = time.Second * 60
	// DefaultGatewayTimeout request timeout for the remote controller gateway
	DefaultGatewayTimeout = time.Second * 30
	// ArrayJoinSeparator a separator to use with strings.Join
	ArrayJoinSeparator = ","
	// LocalSessionIdPrefix marks ids synthesized when the gateway returns none
	LocalSessionIdPrefix = "local-"
)

// remote controller gateway paths
const (
	GatewayCapturesPath            = "/api/v1/packet-captures"
	GatewayCaptureStopPath         = "/api/v1/packet-captures/%s/stop"
	GatewayCaptureStopAllPath      = "/api/v1/packet-captures/stop"
	GatewayCaptureFilesPath        = "/api/v1/packet-captures/files"
	GatewayCaptureFilePath         = "/api/v1/packet-captures/files/%s"
	GatewayCaptureFileDownloadPath = "/api/v1/packet-captures/files/%s/download"
	GatewayAccessPointsPath        = "/api/v1/access-points"
	GatewayActiveStatus            = "active"
)

// dashboard facing paths
const (
	ApiValidatePath     = "/api/v1/captures/validate"
	ApiEstimatePath     = "/api/v1/captures/estimate"
	ApiCapturesPath     = "/api/v1/captures"
	ApiCaptureStopPath  = "/api/v1/captures/{id}/stop"
	ApiStopAllPath      = "/api/v1/captures/stop-all"
	ApiFilesPath        = "/api/v1/files"
	ApiFilePath         = "/api/v1/files/{id}"
	ApiAccessPointsPath = "/api/v1/access-points"
	ApiVisibilityPath   = "/api/v1/visibility"
	ApiWebSocketPath    = "/api/v1/ws"
)
