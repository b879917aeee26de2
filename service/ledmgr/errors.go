// SPDX-License-Identifier: BSD-3-Clause

package ledmgr

import "errors"

var (
	// ErrServiceAlreadyStarted indicates that the LED manager service is already running.
	ErrServiceAlreadyStarted = errors.New("LED manager service already started")
	// ErrInvalidConfiguration indicates that the LED manager configuration is invalid.
	ErrInvalidConfiguration = errors.New("invalid LED manager configuration")
	// ErrNATSConnectionFailed indicates that the NATS connection failed.
	ErrNATSConnectionFailed = errors.New("NATS connection failed")
	// ErrMicroServiceCreationFailed indicates that micro service creation failed.
	ErrMicroServiceCreationFailed = errors.New("micro service creation failed")
	// ErrEndpointRegistrationFailed indicates that endpoint registration failed.
	ErrEndpointRegistrationFailed = errors.New("endpoint registration failed")
	// ErrDeviceNotFound indicates an override or query named a zone not
	// attached to this daemon instance.
	ErrDeviceNotFound = errors.New("LED device not found")
)
