// SPDX-License-Identifier: BSD-3-Clause

package ipc

import (
	"fmt"
	"strings"

	"github.com/nats-io/nats.go/micro"
)

// IPC Subject Constants for NATS Micro Services
// These constants define all the subjects used for inter-process communication.
// Services should use these constants rather than constructing subjects dynamically.

// Fan Management Service Subjects
const (
	SubjectFanProfileAdd    = "fan.profile_add"
	SubjectFanProfileGet    = "fan.profile_get"
	SubjectFanProfileList   = "fan.profile_list"
	SubjectFanProfileRemove = "fan.profile_remove"
	SubjectFanProfileRename = "fan.profile_rename"
	SubjectFanOverride      = "fan.override"
	SubjectFanCount         = "fan.count"
)

// LED Management Service Subjects
const (
	SubjectLEDProfileAdd    = "led.profile_add"
	SubjectLEDProfileGet    = "led.profile_get"
	SubjectLEDProfileList   = "led.profile_list"
	SubjectLEDProfileRemove = "led.profile_remove"
	SubjectLEDProfileRename = "led.profile_rename"
	SubjectLEDOverride      = "led.override"
	SubjectLEDDevices       = "led.devices"
)

// Global Profile Management Service Subjects
const (
	SubjectProfileAdd        = "profiles.add"
	SubjectProfileGet        = "profiles.get"
	SubjectProfileList       = "profiles.list"
	SubjectProfileRemove     = "profiles.remove"
	SubjectProfileRename     = "profiles.rename"
	SubjectProfileCopy       = "profiles.copy"
	SubjectProfileSetActive  = "profiles.set_active"
	SubjectProfileGetActive  = "profiles.get_active"
	SubjectProfileReload     = "profiles.reload"
	SubjectProfileFanCount   = "profiles.fan_count"
	SubjectProfileLedDevices = "profiles.led_devices"
)

// Performance Profile Service Subjects
const (
	SubjectPerformanceSet = "performance.set"
	SubjectPerformanceGet = "performance.get"
)

// Display Backlight Service Subjects
const (
	SubjectBacklightSet = "backlight.set"
	SubjectBacklightGet = "backlight.get"
)

// Hardware Report Service Subjects
const (
	SubjectHWReportSnapshot = "hwreport.snapshot"
)

// Default Timeouts (in milliseconds)
const (
	DefaultRequestTimeout  = 30000 // 30 seconds
	DefaultCommandTimeout  = 60000 // 60 seconds
	DefaultResponseTimeout = 10000 // 10 seconds
)

// Queue Groups for Load Balancing
const (
	QueueGroupFanManager         = "fanmgr"
	QueueGroupLEDManager         = "ledmgr"
	QueueGroupProfileManager     = "profilemgr"
	QueueGroupPerformanceManager = "perfmgr"
	QueueGroupBacklightManager   = "backlightmgr"
)

// IPC Error Constants
var (
	// Request/Response errors
	ErrMissingRequiredField = NewIPCError("MISSING_REQUIRED_FIELD", "missing required field")
	ErrMarshalingFailed     = NewIPCError("MARSHALING_FAILED", "marshaling failed")
	ErrUnmarshalingFailed   = NewIPCError("UNMARSHALING_FAILED", "unmarshaling failed")
	ErrResponseTimeout      = NewIPCError("RESPONSE_TIMEOUT", "response timeout")

	// Component errors
	ErrComponentNotFound = NewIPCError("COMPONENT_NOT_FOUND", "component not found")

	// Service errors
	ErrInternalError = NewIPCError("INTERNAL_ERROR", "internal error")

	// ErrDeviceUnavailable is returned by methods in a hardware namespace
	// that is absent on this platform.
	ErrDeviceUnavailable = NewIPCError("DEVICE_UNAVAILABLE", "device unavailable on this platform")
)

// IPCError represents a structured IPC error.
type IPCError struct {
	Code    string
	Message string
}

func (e *IPCError) Error() string {
	return e.Message
}

// NewIPCError creates a new IPC error.
func NewIPCError(code, message string) *IPCError {
	return &IPCError{
		Code:    code,
		Message: message,
	}
}

// ParseSubject splits a subject into group and endpoint components for NATS micro registration.
// For subjects like "fan.override", it returns group="fan" and endpoint="override".
// Returns an error if the subject doesn't contain exactly one dot or if components are empty.
func ParseSubject(subject string) (group, endpoint string, err error) {
	if subject == "" {
		return "", "", NewIPCError("INVALID_SUBJECT", "subject cannot be empty")
	}

	parts := strings.Split(subject, ".")
	if len(parts) != 2 {
		return "", "", NewIPCError("INVALID_SUBJECT", fmt.Sprintf("subject %s must contain exactly one dot", subject))
	}

	group = strings.TrimSpace(parts[0])
	endpoint = strings.TrimSpace(parts[1])

	if group == "" {
		return "", "", NewIPCError("INVALID_SUBJECT", "group component cannot be empty")
	}

	if endpoint == "" {
		return "", "", NewIPCError("INVALID_SUBJECT", "endpoint component cannot be empty")
	}

	return group, endpoint, nil
}

// RegisterEndpointWithGroupCache registers an endpoint by parsing the IPC subject and managing group creation.
// This helper reduces boilerplate by automatically creating and caching groups as needed.
//
// Example usage:
//
//	groups := make(map[string]micro.Group)
//	err := ipc.RegisterEndpointWithGroupCache(service, ipc.SubjectFanOverride, handler, groups)
func RegisterEndpointWithGroupCache(service micro.Service, subject string, handler micro.Handler, groups map[string]micro.Group) error {
	groupName, endpointName, err := ParseSubject(subject)
	if err != nil {
		return fmt.Errorf("failed to parse subject %s: %w", subject, err)
	}

	group, exists := groups[groupName]
	if !exists {
		group = service.AddGroup(groupName)
		groups[groupName] = group
	}

	if err := group.AddEndpoint(endpointName, handler); err != nil {
		return fmt.Errorf("failed to register endpoint %s in group %s: %w", endpointName, groupName, err)
	}

	return nil
}
