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

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RemoteDescriptor
// a loosely shaped object returned by the remote controller
// fields of the same meaning arrive under several names, see the Descriptor* helpers
type RemoteDescriptor map[string]interface{}

// unixMillisThreshold numbers above this value are treated as milliseconds
const unixMillisThreshold = 1e12

// DescriptorString
// returns the first non-empty value found under the given keys as a string
func DescriptorString(d RemoteDescriptor, keys ...string) string {
	for _, key := range keys {
		v, found := d[key]
		if !found || v == nil {
			continue
		}
		var s string
		switch val := v.(type) {
		case string:
			s = val
		case float64:
			s = strconv.FormatFloat(val, 'f', -1, 64)
		case json.Number:
			s = val.String()
		case bool:
			s = strconv.FormatBool(val)
		default:
			s = fmt.Sprintf("%v", val)
		}
		if s = strings.TrimSpace(s); s != EmptyString {
			return s
		}
	}
	return EmptyString
}

// DescriptorInt64
// returns the first numeric value found under the given keys
func DescriptorInt64(d RemoteDescriptor, keys ...string) (int64, bool) {
	for _, key := range keys {
		v, found := d[key]
		if !found || v == nil {
			continue
		}
		switch val := v.(type) {
		case float64:
			return int64(val), true
		case json.Number:
			if n, err := val.Int64(); err == nil {
				return n, true
			}
			if f, err := val.Float64(); err == nil {
				return int64(f), true
			}
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// DescriptorTime
// returns the first timestamp found under the given keys
// accepts RFC3339 strings and unix seconds or milliseconds
func DescriptorTime(d RemoteDescriptor, keys ...string) (time.Time, bool) {
	for _, key := range keys {
		v, found := d[key]
		if !found || v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			s = strings.TrimSpace(s)
			if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
				return t, true
			}
			if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
				return t, true
			}
			if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
				return t, true
			}
		}
		if n, ok := DescriptorInt64(RemoteDescriptor{key: v}, key); ok && n > 0 {
			if n > unixMillisThreshold {
				return time.UnixMilli(n), true
			}
			return time.Unix(n, 0), true
		}
	}
	return time.Time{}, false
}

// DecodeDescriptorList
// decodes a remote list which may be a bare array or an object wrapping the array
// under "data", "items" or one of the given keys
func DecodeDescriptorList(body []byte, keys ...string) ([]RemoteDescriptor, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return []RemoteDescriptor{}, nil
	}
	var raw interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	return descriptorList(raw, append([]string{"data", "items"}, keys...))
}

func descriptorList(raw interface{}, keys []string) ([]RemoteDescriptor, error) {
	switch val := raw.(type) {
	case nil:
		return []RemoteDescriptor{}, nil
	case []interface{}:
		ret := make([]RemoteDescriptor, 0, len(val))
		for _, item := range val {
			if m, ok := item.(map[string]interface{}); ok {
				ret = append(ret, m)
			} else {
				ret = append(ret, RemoteDescriptor{})
			}
		}
		return ret, nil
	case map[string]interface{}:
		for _, key := range keys {
			if inner, found := val[key]; found {
				return descriptorList(inner, keys)
			}
		}
		return nil, fmt.Errorf("no list found in remote response")
	}
	return nil, fmt.Errorf("unexpected remote response type %T", raw)
}

// DecodeDescriptor
// decodes a single remote object, unwrapping "data" when present
func DecodeDescriptor(body []byte) (RemoteDescriptor, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return RemoteDescriptor{}, nil
	}
	var raw interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		// a bare identifier is a valid start acknowledgement as well
		if s, isString := raw.(string); isString {
			return RemoteDescriptor{"id": s}, nil
		}
		return RemoteDescriptor{}, nil
	}
	if inner, found := m["data"].(map[string]interface{}); found {
		return inner, nil
	}
	return m, nil
}

// RemoteMessage
// extracts a human readable message from a remote error body
func RemoteMessage(body []byte) string {
	d, err := DecodeDescriptor(body)
	if err != nil {
		return EmptyString
	}
	if nested, ok := d["error"].(map[string]interface{}); ok {
		if msg := DescriptorString(nested, "message", "detail"); msg != EmptyString {
			return msg
		}
	}
	return DescriptorString(d, "message", "error", "detail", "msg")
}
