// SPDX-License-Identifier: BSD-3-Clause

package ipc

import (
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

// Default configuration values for the embedded NATS server.
const (
	DefaultServiceName        = "ipc"
	DefaultServiceDescription = "embedded message bus for tailord"
	DefaultServiceVersion     = "1.0.0"
	DefaultServerName         = "tailord-ipc"
	DefaultStoreDir           = "/var/lib/tailord/ipc"
	DefaultMaxMemory          = 64 * 1024 * 1024
	DefaultMaxStorage         = 256 * 1024 * 1024
	DefaultStartupTimeout     = 5 * time.Second
	DefaultShutdownTimeout    = 5 * time.Second
)

type config struct {
	serviceName                 string
	serviceDescription          string
	serviceVersion              string
	serverName                  string
	storeDir                    string
	enableJetStream             bool
	dontListen                  bool
	maxMemory                   int64
	maxStorage                  int64
	startupTimeout              time.Duration
	shutdownTimeout             time.Duration
	maxConnections              int
	maxControlLine              int32
	maxPayload                  int32
	writeDeadline               time.Duration
	pingInterval                time.Duration
	maxPingsOut                 int
	enableSlowConsumerDetection bool
	slowConsumerThreshold       time.Duration
}

// Validate checks that the configuration is internally consistent.
func (c *config) Validate() error {
	if c.serviceName == "" {
		return fmt.Errorf("%w: service name cannot be empty", ErrInvalidConfiguration)
	}
	if c.serverName == "" {
		return fmt.Errorf("%w: server name cannot be empty", ErrInvalidServerName)
	}
	if c.enableJetStream && c.storeDir == "" {
		return fmt.Errorf("%w: store directory required when JetStream is enabled", ErrStorageDirInvalid)
	}
	if c.startupTimeout <= 0 {
		return fmt.Errorf("%w: startup timeout must be positive", ErrInvalidTimeout)
	}
	if c.shutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown timeout must be positive", ErrInvalidTimeout)
	}
	if c.maxConnections < 0 {
		return fmt.Errorf("%w: max connections cannot be negative", ErrInvalidConfiguration)
	}
	return nil
}

// ToServerOptions converts the config into NATS server options.
func (c *config) ToServerOptions() *server.Options {
	return &server.Options{
		ServerName:        c.serverName,
		JetStream:         c.enableJetStream,
		StoreDir:          c.storeDir,
		DontListen:        c.dontListen,
		JetStreamMaxMemory: c.maxMemory,
		JetStreamMaxStore:  c.maxStorage,
		MaxConn:            c.maxConnections,
		MaxControlLine:     c.maxControlLine,
		MaxPayload:         c.maxPayload,
		WriteDeadline:      c.writeDeadline,
		PingInterval:       c.pingInterval,
		MaxPingsOut:        c.maxPingsOut,
	}
}

// Option configures the IPC service.
type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (f optionFunc) apply(c *config) { f(c) }

// WithServiceName sets the service name used for logging and tracing.
func WithServiceName(name string) Option {
	return optionFunc(func(c *config) { c.serviceName = name })
}

// WithServerName sets the underlying NATS server name.
func WithServerName(name string) Option {
	return optionFunc(func(c *config) { c.serverName = name })
}

// WithStoreDir sets the JetStream storage directory.
func WithStoreDir(dir string) Option {
	return optionFunc(func(c *config) { c.storeDir = dir })
}

// WithJetStream enables or disables JetStream persistence.
func WithJetStream(enabled bool) Option {
	return optionFunc(func(c *config) { c.enableJetStream = enabled })
}

// WithMaxMemory sets the maximum JetStream memory store size in bytes.
func WithMaxMemory(bytes int64) Option {
	return optionFunc(func(c *config) { c.maxMemory = bytes })
}

// WithMaxStorage sets the maximum JetStream file store size in bytes.
func WithMaxStorage(bytes int64) Option {
	return optionFunc(func(c *config) { c.maxStorage = bytes })
}

// WithStartupTimeout sets how long Run waits for the server to become ready.
func WithStartupTimeout(timeout time.Duration) Option {
	return optionFunc(func(c *config) { c.startupTimeout = timeout })
}

// WithShutdownTimeout sets how long shutdown waits before forcing server termination.
func WithShutdownTimeout(timeout time.Duration) Option {
	return optionFunc(func(c *config) { c.shutdownTimeout = timeout })
}

// WithMaxConnections caps the number of concurrent client connections (0 means unlimited).
func WithMaxConnections(max int) Option {
	return optionFunc(func(c *config) { c.maxConnections = max })
}

// WithServerOpts overrides select NATS server behavior directly; kept for
// callers that need access to fields not otherwise exposed as options.
func WithServerOpts(opts *server.Options) Option {
	return optionFunc(func(c *config) {
		if opts == nil {
			return
		}
		if opts.ServerName != "" {
			c.serverName = opts.ServerName
		}
		if opts.StoreDir != "" {
			c.storeDir = opts.StoreDir
		}
		c.enableJetStream = opts.JetStream
	})
}
