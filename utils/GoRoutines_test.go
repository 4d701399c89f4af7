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

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSafeRunRecoversPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		SafeRun(func() { panic("boom") })
	})
}

func TestSafeAsyncRuns(t *testing.T) {
	done := make(chan struct{})
	SafeAsync(func() {
		close(done)
		panic("after done")
	})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("async function did not run")
	}
}

func TestMakeUniqueId(t *testing.T) {
	a := MakeUniqueId()
	b := MakeUniqueId()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
