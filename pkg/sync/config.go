package sync

import "time"

// Limits bounds every size- and time-sensitive knob named in spec §6.1 and
// §4. Exceeding a count-based bound is misbehavior; the time-based bounds
// drive stall detection and relay pacing.
type Limits struct {
	// MsgHeaderCountLimit bounds a single HeaderList (spec §4.1(2)).
	MsgHeaderCountLimit int
	// MaxRequestBlocksCount bounds per-peer blocks in flight (spec §4.2).
	MaxRequestBlocksCount int
	// MsgMaxLocatorCount bounds a HeaderListRequest's locator (spec §4.4).
	MsgMaxLocatorCount int
	// MaxMessageSize is the configured bound on a single wire message's
	// encoded size. Neither the sync core nor pkg/transport checks
	// messages against it.
	MaxMessageSize int
	// MaxPeerTxAnnouncements bounds queued NewTransaction entries per peer
	// (spec §4.5).
	MaxPeerTxAnnouncements int
	// MaxSingularUnconnectedHeaders bounds V1's tolerance for lone
	// unconnected headers before penalizing (spec §4.1(6)).
	MaxSingularUnconnectedHeaders int
	// SyncStallingTimeout is how long an in-flight block request may go
	// unanswered before it is treated as a stall (spec §4.2).
	SyncStallingTimeout time.Duration
	// AnnounceDebounce is the quiet period the dispatcher batches NewTip
	// events over before running the Announcement Planner (spec §4.3).
	AnnounceDebounce time.Duration
}

// DefaultLimits returns sensible defaults for a production deployment;
// pkg/config overrides these from the on-disk configuration file.
func DefaultLimits() Limits {
	return Limits{
		MsgHeaderCountLimit:           2000,
		MaxRequestBlocksCount:         16,
		MsgMaxLocatorCount:            32,
		MaxMessageSize:                4 << 20,
		MaxPeerTxAnnouncements:        5000,
		MaxSingularUnconnectedHeaders: 10,
		SyncStallingTimeout:           10 * time.Second,
		AnnounceDebounce:              100 * time.Millisecond,
	}
}
