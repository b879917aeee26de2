// SPDX-License-Identifier: BSD-3-Clause

package profilemgr

import "errors"

var (
	// ErrServiceAlreadyStarted indicates that the profile manager service is already running.
	ErrServiceAlreadyStarted = errors.New("profile manager service already started")
	// ErrInvalidConfiguration indicates that the profile manager configuration is invalid.
	ErrInvalidConfiguration = errors.New("invalid profile manager configuration")
	// ErrNATSConnectionFailed indicates that the NATS connection failed.
	ErrNATSConnectionFailed = errors.New("NATS connection failed")
	// ErrMicroServiceCreationFailed indicates that micro service creation failed.
	ErrMicroServiceCreationFailed = errors.New("micro service creation failed")
	// ErrEndpointRegistrationFailed indicates that endpoint registration failed.
	ErrEndpointRegistrationFailed = errors.New("endpoint registration failed")
)
