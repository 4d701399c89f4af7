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

import "time"

// GatewayConfig
// remote controller access
type GatewayConfig struct {
	BaseUrl    string        // controller REST root, e.g. https://controller.local:8443
	Token      string        // bearer token
	Timeout    time.Duration // per request timeout
	Insecure   bool          // skip TLS verification for self-signed controllers
	RetryCount int           // resty retry count for transport failures
}

// ManagerConfig
// timers and local state of the capture manager
type ManagerConfig struct {
	PollInterval     time.Duration // remote refresh period
	ProgressInterval time.Duration // local progress redraw period
	InventoryTTL     time.Duration // access point list freshness
	JournalDirectory string        // session journal location, empty means no journal
}

// MinioStorageCreds
// S3/Minio archive for downloaded capture files
type MinioStorageCreds struct {
	BucketName           string
	IsActive             bool
	Endpoint             string
	Crt                  string // base64 encoded CA certificate, optional
	AccessKeyId          string
	SecretAccessKey      string
	CompressBeforeUpload bool
}

// CaptureControllerConfig
// dashboard facing REST controller settings
type CaptureControllerConfig struct {
	APIkey         string // expected api-key header value
	ProductionMode bool   // refuse requests when no API key configured
}
