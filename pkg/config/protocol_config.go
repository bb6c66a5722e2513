package config

import (
	"fmt"
	"time"

	"github.com/nspcc-dev/glasschain/pkg/config/netmode"
	syncpkg "github.com/nspcc-dev/glasschain/pkg/sync"
)

// ProtocolConfiguration carries the sync core's protocol-level bounds
// (spec §6.1): every size and time limit that turns a peer's behavior into
// misbehavior when exceeded.
type ProtocolConfiguration struct {
	Magic netmode.Magic `yaml:"Magic"`

	// GenesisTimestamp seeds the single genesis header every node of this
	// network is rooted at; it has no parent and is never subject to
	// PreliminaryHeaderCheck.
	GenesisTimestamp uint64 `yaml:"GenesisTimestamp"`

	MsgHeaderCountLimit           int           `yaml:"MsgHeaderCountLimit"`
	MaxRequestBlocksCount         int           `yaml:"MaxRequestBlocksCount"`
	MsgMaxLocatorCount            int           `yaml:"MsgMaxLocatorCount"`
	MaxMessageSize                int           `yaml:"MaxMessageSize"`
	MaxPeerTxAnnouncements        int           `yaml:"MaxPeerTxAnnouncements"`
	MaxSingularUnconnectedHeaders int           `yaml:"MaxSingularUnconnectedHeaders"`
	SyncStallingTimeout           time.Duration `yaml:"SyncStallingTimeout"`
	AnnounceDebounce              time.Duration `yaml:"AnnounceDebounce"`
}

// Validate checks that the protocol configuration is internally
// consistent.
func (p ProtocolConfiguration) Validate() error {
	if p.MsgHeaderCountLimit <= 0 {
		return fmt.Errorf("MsgHeaderCountLimit must be positive")
	}
	if p.MaxRequestBlocksCount <= 0 {
		return fmt.Errorf("MaxRequestBlocksCount must be positive")
	}
	if p.MsgMaxLocatorCount <= 0 {
		return fmt.Errorf("MsgMaxLocatorCount must be positive")
	}
	if p.SyncStallingTimeout <= 0 {
		return fmt.Errorf("SyncStallingTimeout must be positive")
	}
	if p.AnnounceDebounce <= 0 {
		return fmt.Errorf("AnnounceDebounce must be positive")
	}
	return nil
}

// Limits converts this configuration into the sync.Limits struct the sync
// core actually consumes.
func (p ProtocolConfiguration) Limits() syncpkg.Limits {
	return syncpkg.Limits{
		MsgHeaderCountLimit:           p.MsgHeaderCountLimit,
		MaxRequestBlocksCount:         p.MaxRequestBlocksCount,
		MsgMaxLocatorCount:            p.MsgMaxLocatorCount,
		MaxMessageSize:                p.MaxMessageSize,
		MaxPeerTxAnnouncements:        p.MaxPeerTxAnnouncements,
		MaxSingularUnconnectedHeaders: p.MaxSingularUnconnectedHeaders,
		SyncStallingTimeout:           p.SyncStallingTimeout,
		AnnounceDebounce:              p.AnnounceDebounce,
	}
}

// DefaultProtocolConfiguration mirrors sync.DefaultLimits under the
// privnet magic, used when no config file overrides it.
func DefaultProtocolConfiguration() ProtocolConfiguration {
	l := syncpkg.DefaultLimits()
	return ProtocolConfiguration{
		Magic:                         netmode.PrivNet,
		GenesisTimestamp:              1600000000,
		MsgHeaderCountLimit:           l.MsgHeaderCountLimit,
		MaxRequestBlocksCount:         l.MaxRequestBlocksCount,
		MsgMaxLocatorCount:            l.MsgMaxLocatorCount,
		MaxMessageSize:                l.MaxMessageSize,
		MaxPeerTxAnnouncements:        l.MaxPeerTxAnnouncements,
		MaxSingularUnconnectedHeaders: l.MaxSingularUnconnectedHeaders,
		SyncStallingTimeout:           l.SyncStallingTimeout,
		AnnounceDebounce:              l.AnnounceDebounce,
	}
}
