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

package validator

import (
	"testing"

	"github.com/Netcracker/qubership-apihub-capture-manager/entities"
	"github.com/stretchr/testify/assert"
)

var testAccessPoints = []entities.AccessPoint{{Id: "ap-1", Name: "lobby"}}

func baseConfig() entities.CaptureConfig {
	return entities.CaptureConfig{
		Location:        entities.LocationAppliancePort,
		DurationMinutes: 5,
		TruncationBytes: 0,
		Destination:     entities.DestinationFile,
	}
}

func TestValidateDurationBoundaries(t *testing.T) {
	for _, d := range []int{0, 61, -5, 90} {
		cfg := baseConfig()
		cfg.DurationMinutes = d
		res := Validate(cfg, nil)
		assert.False(t, res.Valid, "duration %d", d)
		assert.Contains(t, res.Error, "duration")
	}
	for _, d := range []int{1, 60} {
		cfg := baseConfig()
		cfg.DurationMinutes = d
		assert.True(t, Validate(cfg, nil).Valid, "duration %d", d)
	}
	cfg := baseConfig()
	cfg.DurationMinutes = 90
	assert.Contains(t, Validate(cfg, nil).Error, "must not exceed 60")
}

func TestValidateTruncationBoundaries(t *testing.T) {
	for _, tr := range []int{-1, 65536} {
		cfg := baseConfig()
		cfg.TruncationBytes = tr
		assert.False(t, Validate(cfg, nil).Valid, "truncation %d", tr)
	}
	for _, tr := range []int{0, 64, 65535} {
		cfg := baseConfig()
		cfg.TruncationBytes = tr
		res := Validate(cfg, nil)
		assert.True(t, res.Valid, "truncation %d", tr)
		assert.Empty(t, res.Warning, "truncation %d", tr)
	}
	for tr := 1; tr < 64; tr++ {
		cfg := baseConfig()
		cfg.TruncationBytes = tr
		res := Validate(cfg, nil)
		assert.True(t, res.Valid, "truncation %d", tr)
		assert.Equal(t, TruncationWarning, res.Warning)
	}
}

func TestValidateFirstFailureWins(t *testing.T) {
	cfg := baseConfig()
	cfg.DurationMinutes = 0
	cfg.TruncationBytes = -1
	cfg.Location = entities.LocationWireless
	res := Validate(cfg, nil)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Error, "duration")

	cfg.DurationMinutes = 10
	res = Validate(cfg, nil)
	assert.Contains(t, res.Error, "truncation")

	cfg.TruncationBytes = 0
	res = Validate(cfg, nil)
	assert.Contains(t, res.Error, "access point")
}

func TestValidateWireless(t *testing.T) {
	cfg := baseConfig()
	cfg.Location = entities.LocationWireless
	assert.False(t, Validate(cfg, nil).Valid)
	assert.False(t, Validate(cfg, []entities.AccessPoint{}).Valid)
	// apId unset is fine as long as an access point is known
	assert.True(t, Validate(cfg, testAccessPoints).Valid)
}

func TestValidateScp(t *testing.T) {
	cfg := baseConfig()
	cfg.Destination = entities.DestinationScp
	assert.Contains(t, Validate(cfg, nil).Error, "SCP")

	good := entities.ScpConfig{ServerIp: "10.0.0.5", Username: "ops", Password: "secret", Path: "/srv/captures"}
	cfg.ScpConfig = &good
	assert.True(t, Validate(cfg, nil).Valid)

	v6 := good
	v6.ServerIp = "fe80::1"
	cfg.ScpConfig = &v6
	assert.True(t, Validate(cfg, nil).Valid)

	cases := map[string]func(c *entities.ScpConfig){
		"address":  func(c *entities.ScpConfig) { c.ServerIp = "controller.local" },
		"username": func(c *entities.ScpConfig) { c.Username = "  " },
		"password": func(c *entities.ScpConfig) { c.Password = "" },
		"path":     func(c *entities.ScpConfig) { c.Path = "/srv/cap*" },
	}
	for expected, mutate := range cases {
		bad := good
		mutate(&bad)
		cfg.ScpConfig = &bad
		res := Validate(cfg, nil)
		assert.False(t, res.Valid, expected)
		assert.Contains(t, res.Error, expected)
	}
	for _, c := range []string{"<", ">", "\"", "|", "?", "*"} {
		bad := good
		bad.Path = "/srv/" + c
		assert.Error(t, ValidateScpConfig(&bad), c)
	}
}

func TestValidateFilters(t *testing.T) {
	cfg := baseConfig()
	cfg.AddressFilters = []entities.AddressFilter{
		{Type: entities.FilterTypeMac, Value: "AA-BB-CC-DD-EE-FF"},
		{Type: entities.FilterTypeIp, Value: "192.168.1.10"},
		{Type: entities.FilterTypeIp, Value: "2001:db8::1"},
	}
	assert.True(t, Validate(cfg, nil).Valid)

	cfg.AddressFilters = append(cfg.AddressFilters, entities.AddressFilter{Type: entities.FilterTypeIp, Value: "999.1.1.1"})
	res := Validate(cfg, nil)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Error, "999.1.1.1")
	assert.Contains(t, res.Error, "out of range")

	cfg.AddressFilters = []entities.AddressFilter{{Type: "vlan", Value: "12"}}
	assert.False(t, Validate(cfg, nil).Valid)
}

func TestValidateFilterTypeCase(t *testing.T) {
	cfg := baseConfig()
	cfg.AddressFilters = []entities.AddressFilter{
		{Type: "MAC", Value: "AA-BB-CC-DD-EE-FF"},
		{Type: "IP", Value: "10.0.0.1"},
		{Type: "Ip", Value: "fe80::1"},
	}
	res := Validate(cfg, nil)
	assert.True(t, res.Valid, res.Error)

	assert.Equal(t, []entities.AddressFilter{
		{Type: entities.FilterTypeMac, Value: "AA:BB:CC:DD:EE:FF"},
		{Type: entities.FilterTypeIp, Value: "10.0.0.1"},
		{Type: entities.FilterTypeIp, Value: "fe80::1"},
	}, CanonicalFilters(cfg.AddressFilters))
}

func TestValidateRejectsPaddedAddresses(t *testing.T) {
	for _, f := range []entities.AddressFilter{
		{Type: entities.FilterTypeIp, Value: " 10.0.0.1"},
		{Type: entities.FilterTypeIp, Value: "10.0.0.1 "},
		{Type: entities.FilterTypeIp, Value: " ::1"},
		{Type: entities.FilterTypeMac, Value: "AA:BB:CC:DD:EE:FF "},
	} {
		assert.Error(t, ValidateFilter(f), "%q", f.Value)
	}
	scp := entities.ScpConfig{ServerIp: " 10.0.0.5", Username: "ops", Password: "secret"}
	assert.Error(t, ValidateScpConfig(&scp))
}

func TestValidateUnknownEnums(t *testing.T) {
	cfg := baseConfig()
	cfg.Location = "ROOFTOP"
	assert.False(t, Validate(cfg, nil).Valid)

	cfg = baseConfig()
	cfg.Direction = "SIDEWAYS"
	assert.False(t, Validate(cfg, nil).Valid)

	cfg = baseConfig()
	cfg.Direction = ""
	cfg.Destination = ""
	assert.True(t, Validate(cfg, nil).Valid)
}

func TestValidateIsTotal(t *testing.T) {
	assert.NotPanics(t, func() {
		res := Validate(entities.CaptureConfig{}, nil)
		assert.False(t, res.Valid)
		res = Validate(entities.CaptureConfig{
			Location:        entities.LocationWireless,
			DurationMinutes: 1,
			Destination:     entities.DestinationScp,
			AddressFilters:  []entities.AddressFilter{{}},
		}, testAccessPoints)
		assert.False(t, res.Valid)
	})
}

func TestMacAddress(t *testing.T) {
	valid := []string{"AA:BB:CC:DD:EE:FF", "aa-bb-cc-dd-ee-ff", "aabbccddeeff", "0a:1B:2c:3D:4e:5F"}
	for _, m := range valid {
		assert.True(t, ValidateMacAddress(m), m)
		formatted := FormatMacAddress(m)
		assert.Equal(t, formatted, FormatMacAddress(NormalizeMacAddress(m)), m)
		assert.Regexp(t, `^([0-9A-F]{2}:){5}[0-9A-F]{2}$`, formatted)
	}
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", FormatMacAddress("AA-BB-CC-DD-EE-FF"))
	for _, m := range []string{"", "AA:BB:CC:DD:EE", "GG:BB:CC:DD:EE:FF", "AA:BB:CC:DD:EE:FF:00", "AA.BB.CC.DD.EE.FF"} {
		assert.False(t, ValidateMacAddress(m), m)
	}
}

func TestIPv4(t *testing.T) {
	for _, a := range []string{"0.0.0.0", "255.255.255.255", "10.1.2.3"} {
		assert.NoError(t, ValidateIPv4(a), a)
	}
	for _, a := range []string{"256.1.1.1", "1.2.3", "1.2.3.4.5", "1..2.3", " 1.2.3.4", "1.2.3.4 ", "a.b.c.d", "1.2.3.-4"} {
		assert.Error(t, ValidateIPv4(a), a)
	}
}

func TestIPv6(t *testing.T) {
	for _, a := range []string{"::1", "fe80::1", "2001:0db8:0000:0000:0000:ff00:0042:8329", "::"} {
		assert.NoError(t, ValidateIPv6(a), a)
	}
	for _, a := range []string{"1", "2001:db8:0:0:0:0:0:0:1", "2001:db8::12345", "zz::1"} {
		assert.Error(t, ValidateIPv6(a), a)
	}
}

func TestCanonicalFilters(t *testing.T) {
	assert.Nil(t, CanonicalFilters(nil))
	out := CanonicalFilters([]entities.AddressFilter{
		{Type: entities.FilterTypeMac, Value: " aa-bb-cc-dd-ee-ff "},
		{Type: entities.FilterTypeIp, Value: "10.0.0.1"},
	})
	assert.Equal(t, []entities.AddressFilter{
		{Type: entities.FilterTypeMac, Value: "AA:BB:CC:DD:EE:FF"},
		{Type: entities.FilterTypeIp, Value: "10.0.0.1"},
	}, out)
}
