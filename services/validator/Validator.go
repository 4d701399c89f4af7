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

// Package validator
// checks a proposed capture configuration before anything is sent to the controller
package validator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Netcracker/qubership-apihub-capture-manager/entities"
	"github.com/Netcracker/qubership-apihub-capture-manager/view"
)

const (
	MinDurationMinutes = 1
	MaxDurationMinutes = 60
	MaxTruncationBytes = 65535
	// HeaderSafeTruncationBytes snap lengths below this may cut protocol headers
	HeaderSafeTruncationBytes = 64
	// macHexLength hex digits in a MAC address without separators
	macHexLength = 12
	// scpPathForbidden characters not allowed in an SCP destination path
	scpPathForbidden = `<>"|?*`
)

// TruncationWarning a warning attached to valid configs with a tiny snap length
const TruncationWarning = "truncation below 64 bytes may drop protocol headers"

var macSeparators = strings.NewReplacer(":", "", "-", "")

// NormalizeMacAddress
// strips separators and upper-cases the address, surrounding whitespace is kept and fails validation
func NormalizeMacAddress(mac string) string {
	return strings.ToUpper(macSeparators.Replace(mac))
}

// ValidateMacAddress
// accepts 12 hex digits optionally separated by ':' or '-'
func ValidateMacAddress(mac string) bool {
	normalized := NormalizeMacAddress(mac)
	if len(normalized) != macHexLength {
		return false
	}
	for _, c := range normalized {
		if !isHexDigit(c) {
			return false
		}
	}
	return true
}

// FormatMacAddress
// returns the canonical AA:BB:CC:DD:EE:FF form, an invalid address is returned unchanged
func FormatMacAddress(mac string) string {
	if !ValidateMacAddress(mac) {
		return mac
	}
	normalized := NormalizeMacAddress(mac)
	pairs := make([]string, 0, macHexLength/2)
	for i := 0; i < macHexLength; i += 2 {
		pairs = append(pairs, normalized[i:i+2])
	}
	return strings.Join(pairs, ":")
}

// ValidateIPv4
// four dot separated decimal groups, each within [0,255]
func ValidateIPv4(addr string) error {
	groups := strings.Split(addr, ".")
	if len(groups) != 4 {
		return fmt.Errorf("IPv4 address %q must have four dot separated groups", addr)
	}
	for _, g := range groups {
		if g == view.EmptyString || len(g) > 3 || !isDecimal(g) {
			return fmt.Errorf("IPv4 address %q has an invalid group %q", addr, g)
		}
		octet, _ := strconv.Atoi(g)
		if octet > 255 {
			return fmt.Errorf("IPv4 address %q has octet %d out of range 0-255", addr, octet)
		}
	}
	return nil
}

// ValidateIPv6
// a syntactic check: 2 to 8 colon separated groups of up to 4 hex digits
func ValidateIPv6(addr string) error {
	groups := strings.Split(addr, ":")
	if len(groups) < 2 || len(groups) > 8 {
		return fmt.Errorf("IPv6 address %q must have between 2 and 8 groups", addr)
	}
	for _, g := range groups {
		if len(g) > 4 {
			return fmt.Errorf("IPv6 address %q has an invalid group %q", addr, g)
		}
		for _, c := range g {
			if !isHexDigit(c) {
				return fmt.Errorf("IPv6 address %q has an invalid group %q", addr, g)
			}
		}
	}
	return nil
}

// ValidateIpAddress
// dispatches to IPv6 when the address contains a colon, IPv4 otherwise
func ValidateIpAddress(addr string) error {
	if strings.Contains(addr, ":") {
		return ValidateIPv6(addr)
	}
	return ValidateIPv4(addr)
}

// ValidateScpConfig
// server address, credentials and an optional path free of shell-hostile characters
func ValidateScpConfig(cfg *entities.ScpConfig) error {
	if cfg == nil {
		return fmt.Errorf("SCP destination requires server settings")
	}
	server := strings.TrimSpace(cfg.ServerIp)
	if server == view.EmptyString {
		return fmt.Errorf("SCP server address must not be empty")
	}
	if ValidateIpAddress(cfg.ServerIp) != nil {
		return fmt.Errorf("SCP server address %q is not a valid IPv4 or IPv6 address", cfg.ServerIp)
	}
	if strings.TrimSpace(cfg.Username) == view.EmptyString {
		return fmt.Errorf("SCP username must not be empty")
	}
	if cfg.Password == view.EmptyString {
		return fmt.Errorf("SCP password must not be empty")
	}
	if strings.ContainsAny(cfg.Path, scpPathForbidden) {
		return fmt.Errorf("SCP path must not contain any of < > \" | ? *")
	}
	return nil
}

// ValidateFilter
// checks a single address filter against its declared type
func ValidateFilter(filter entities.AddressFilter) error {
	value := filter.Value
	switch filter.Type.Normalized() {
	case entities.FilterTypeMac:
		if !ValidateMacAddress(value) {
			return fmt.Errorf("MAC filter %q must be 12 hexadecimal digits", filter.Value)
		}
	case entities.FilterTypeIp:
		if err := ValidateIpAddress(value); err != nil {
			return fmt.Errorf("IP filter %q is not valid: %v", filter.Value, err)
		}
	default:
		return fmt.Errorf("filter %q has unknown type %q", filter.Value, filter.Type)
	}
	return nil
}

// CanonicalFilters
// returns filters in stored form: trimmed, MAC addresses as AA:BB:CC:DD:EE:FF
func CanonicalFilters(filters []entities.AddressFilter) []entities.AddressFilter {
	if len(filters) == 0 {
		return nil
	}
	ret := make([]entities.AddressFilter, 0, len(filters))
	for _, f := range filters {
		value := strings.TrimSpace(f.Value)
		filterType := f.Type.Normalized()
		if filterType == entities.FilterTypeMac {
			value = FormatMacAddress(value)
		}
		ret = append(ret, entities.AddressFilter{Type: filterType, Value: value})
	}
	return ret
}

// Validate
// checks the configuration rule by rule, the first failing rule wins
// accessPoints is the locally known access point list
func Validate(cfg entities.CaptureConfig, accessPoints []entities.AccessPoint) entities.ValidationResult {
	if cfg.DurationMinutes < MinDurationMinutes {
		return failed("capture duration must be at least %d minute", MinDurationMinutes)
	}
	if cfg.DurationMinutes > MaxDurationMinutes {
		return failed("capture duration must not exceed %d minutes", MaxDurationMinutes)
	}
	if cfg.TruncationBytes < 0 {
		return failed("truncation size must not be negative")
	}
	if cfg.TruncationBytes > MaxTruncationBytes {
		return failed("truncation size must not exceed %d bytes", MaxTruncationBytes)
	}
	ret := entities.ValidationResult{Valid: true}
	if cfg.TruncationBytes > 0 && cfg.TruncationBytes < HeaderSafeTruncationBytes {
		ret.Warning = TruncationWarning
	}
	if cfg.Location == entities.LocationWireless && len(accessPoints) == 0 {
		return failed("wireless capture requires at least one access point, none are known")
	}
	if cfg.EffectiveDestination() == entities.DestinationScp {
		if err := ValidateScpConfig(cfg.ScpConfig); err != nil {
			return failed("%v", err)
		}
	}
	for _, filter := range cfg.AddressFilters {
		if err := ValidateFilter(filter); err != nil {
			return failed("%v", err)
		}
	}
	if err := validateEnums(cfg); err != nil {
		return failed("%v", err)
	}
	return ret
}

// validateEnums
// rejects values the controller vocabulary has no mapping for
func validateEnums(cfg entities.CaptureConfig) error {
	switch cfg.Location {
	case entities.LocationAppliancePort, entities.LocationWired, entities.LocationWireless:
	default:
		return fmt.Errorf("unknown capture location %q", cfg.Location)
	}
	switch cfg.EffectiveDirection() {
	case entities.DirectionBoth, entities.DirectionIngress, entities.DirectionEgress:
	default:
		return fmt.Errorf("unknown capture direction %q", cfg.Direction)
	}
	switch cfg.Protocol {
	case entities.ProtocolAny, entities.ProtocolTcp, entities.ProtocolUdp, entities.ProtocolIcmp:
	default:
		return fmt.Errorf("unknown protocol %q", cfg.Protocol)
	}
	switch cfg.EffectiveDestination() {
	case entities.DestinationFile, entities.DestinationScp:
	default:
		return fmt.Errorf("unknown capture destination %q", cfg.Destination)
	}
	return nil
}

func failed(format string, args ...interface{}) entities.ValidationResult {
	return entities.ValidationResult{Valid: false, Error: fmt.Sprintf(format, args...)}
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isDecimal(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
