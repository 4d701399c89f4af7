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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateFullPacketsOneHour(t *testing.T) {
	// 100 * 3600 * 1524 = 548,640,000 bytes
	est := Estimate(60, 0, 0)
	assert.Equal(t, int64(523), est.EstimatedSizeMB)
	assert.Equal(t, LargeSizeWarning, est.Warning)
}

func TestEstimateThresholds(t *testing.T) {
	assert.Empty(t, Estimate(5, 0, 100).Warning)
	assert.Empty(t, Estimate(60, 128, 100).Warning)
	assert.Equal(t, HugeSizeWarning, Estimate(60, 0, 250).Warning)
}

func TestEstimateTruncation(t *testing.T) {
	// 100 * 60 * (64 + 24) = 528,000 bytes
	assert.Equal(t, int64(1), Estimate(1, 64, 100).EstimatedSizeMB)
	assert.Less(t, Estimate(30, 64, 100).EstimatedSizeMB, Estimate(30, 0, 100).EstimatedSizeMB)
}

func TestEstimateMonotonicInDuration(t *testing.T) {
	for _, truncation := range []int{0, 1, 63, 64, 1500, 65535} {
		prev := int64(-1)
		for d := 0; d <= 60; d++ {
			cur := Estimate(d, truncation, 100).EstimatedSizeMB
			assert.GreaterOrEqual(t, cur, prev, "truncation %d duration %d", truncation, d)
			prev = cur
		}
	}
}

func TestEstimateDefaultsRate(t *testing.T) {
	assert.Equal(t, Estimate(10, 0, 100), Estimate(10, 0, 0))
	assert.Equal(t, Estimate(10, 0, 100), Estimate(10, 0, -3))
	assert.Equal(t, int64(0), Estimate(-1, 0, 100).EstimatedSizeMB)
}

func TestEstimateHugeInputs(t *testing.T) {
	est := Estimate(60, 0, 1<<50)
	assert.Positive(t, est.EstimatedSizeMB)
	assert.Equal(t, HugeSizeWarning, est.Warning)

	maxInt := int(^uint(0) >> 1)
	est = Estimate(maxInt, 65535, maxInt)
	assert.Equal(t, int64(maxSizeMB), est.EstimatedSizeMB)
	assert.Equal(t, HugeSizeWarning, est.Warning)
	assert.GreaterOrEqual(t, Estimate(maxInt, 0, 100).EstimatedSizeMB, Estimate(60, 0, 100).EstimatedSizeMB)
}
