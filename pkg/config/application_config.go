package config

import (
	"fmt"
	"time"
)

// ApplicationConfiguration carries node-local settings outside the wire
// protocol: storage location, peer-manager ban policy, and where the
// ambient P2P/Logger sections (p2p.go, logger.go) plug in.
type ApplicationConfiguration struct {
	DataDirectoryPath string        `yaml:"DataDirectoryPath"`
	BanThreshold      int           `yaml:"BanThreshold"`
	BanDuration       time.Duration `yaml:"BanDuration"`
	MetricsAddress    string        `yaml:"MetricsAddress"`

	P2P    P2P    `yaml:"P2P"`
	Logger Logger `yaml:"Logger"`
}

// Validate checks that the application configuration is internally
// consistent.
func (a ApplicationConfiguration) Validate() error {
	if a.DataDirectoryPath == "" {
		return fmt.Errorf("DataDirectoryPath must be set")
	}
	if a.BanThreshold <= 0 {
		return fmt.Errorf("BanThreshold must be positive")
	}
	if a.BanDuration <= 0 {
		return fmt.Errorf("BanDuration must be positive")
	}
	return a.Logger.Validate()
}

// DefaultApplicationConfiguration is used when no config file overrides
// it.
func DefaultApplicationConfiguration() ApplicationConfiguration {
	return ApplicationConfiguration{
		DataDirectoryPath: "./chaindata",
		BanThreshold:      100,
		BanDuration:       24 * time.Hour,
		MetricsAddress:    ":2112",
		P2P: P2P{
			AttemptConnPeers: 20,
			MaxPeers:         100,
			MinPeers:         5,
			DialTimeout:      5 * time.Second,
			PingInterval:     30 * time.Second,
			PingTimeout:      90 * time.Second,
		},
		Logger: Logger{
			LogEncoding: "console",
			LogLevel:    "info",
		},
	}
}
