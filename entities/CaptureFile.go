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

// CaptureFile
// a completed capture artifact kept by the controller
type CaptureFile struct {
	Id        string    `json:"id"`
	Filename  string    `json:"filename"`
	SizeBytes int64     `json:"sizeBytes"`
	CreatedAt time.Time `json:"createdAt"`
	Status    string    `json:"status,omitempty"` // e.g. still finalizing
}

// AccessPoint
// an access point known to the controller
type AccessPoint struct {
	Id    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Mac   string `json:"mac,omitempty"`
	Model string `json:"model,omitempty"`
}
