// SPDX-License-Identifier: BSD-3-Clause

package fanmgr

import "errors"

var (
	// ErrServiceAlreadyStarted indicates that the fan manager service is already running.
	ErrServiceAlreadyStarted = errors.New("fan manager service already started")
	// ErrInvalidConfiguration indicates that the fan manager configuration is invalid.
	ErrInvalidConfiguration = errors.New("invalid fan manager configuration")
	// ErrNATSConnectionFailed indicates that the NATS connection failed.
	ErrNATSConnectionFailed = errors.New("NATS connection failed")
	// ErrMicroServiceCreationFailed indicates that micro service creation failed.
	ErrMicroServiceCreationFailed = errors.New("micro service creation failed")
	// ErrEndpointRegistrationFailed indicates that endpoint registration failed.
	ErrEndpointRegistrationFailed = errors.New("endpoint registration failed")
	// ErrFanIndexOutOfRange indicates an override or query named a fan index
	// outside the range of fans configured for this daemon instance.
	ErrFanIndexOutOfRange = errors.New("fan index out of range")
)
