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

package estimator

import (
	"math"

	"github.com/Netcracker/qubership-apihub-capture-manager/entities"
)

const (
	// DefaultPacketsPerSecond assumed traffic rate
	DefaultPacketsPerSecond = 100
	// FullPacketSize standard MTU used when capturing full packets
	FullPacketSize = 1500
	// RecordOverhead per packet capture-format overhead (pcap record header + padding)
	RecordOverhead = 24
	bytesPerMB     = 1024 * 1024
	LargeSizeMB    = 500
	HugeSizeMB     = 1000
	// maxSizeMB the largest size still exactly representable as both float64 and int64
	maxSizeMB = 1 << 53
)

const (
	HugeSizeWarning  = "estimated capture size exceeds 1GB, consider reducing duration or adding filters"
	LargeSizeWarning = "estimated capture size is large, download may take significant time"
)

// Estimate
// advisory capture size for the given duration and snap length
// packetsPerSecond <= 0 selects DefaultPacketsPerSecond
func Estimate(durationMinutes, truncationBytes, packetsPerSecond int) entities.SizeEstimate {
	if packetsPerSecond <= 0 {
		packetsPerSecond = DefaultPacketsPerSecond
	}
	if durationMinutes < 0 {
		durationMinutes = 0
	}
	avgPacketSize := FullPacketSize
	if truncationBytes > 0 {
		avgPacketSize = truncationBytes
	}
	// float64, huge rates must not wrap into negative sizes
	totalBytes := float64(packetsPerSecond) * float64(durationMinutes) * 60 * float64(avgPacketSize+RecordOverhead)
	sizeMB := math.Round(totalBytes / bytesPerMB)
	if sizeMB > maxSizeMB {
		sizeMB = maxSizeMB
	}
	ret := entities.SizeEstimate{EstimatedSizeMB: int64(sizeMB)}
	switch {
	case ret.EstimatedSizeMB > HugeSizeMB:
		ret.Warning = HugeSizeWarning
	case ret.EstimatedSizeMB > LargeSizeMB:
		ret.Warning = LargeSizeWarning
	}
	return ret
}
