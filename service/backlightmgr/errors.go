// SPDX-License-Identifier: BSD-3-Clause

package backlightmgr

import "errors"

var (
	// ErrServiceAlreadyStarted indicates that the backlight manager service is already running.
	ErrServiceAlreadyStarted = errors.New("backlight manager service already started")
	// ErrInvalidConfiguration indicates that the backlight manager configuration is invalid.
	ErrInvalidConfiguration = errors.New("invalid backlight manager configuration")
	// ErrNATSConnectionFailed indicates that the NATS connection failed.
	ErrNATSConnectionFailed = errors.New("NATS connection failed")
	// ErrMicroServiceCreationFailed indicates that micro service creation failed.
	ErrMicroServiceCreationFailed = errors.New("micro service creation failed")
	// ErrEndpointRegistrationFailed indicates that endpoint registration failed.
	ErrEndpointRegistrationFailed = errors.New("endpoint registration failed")
)
