package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nspcc-dev/glasschain/pkg/chain"
	"github.com/nspcc-dev/glasschain/pkg/config"
	"github.com/nspcc-dev/glasschain/pkg/database"
	"github.com/nspcc-dev/glasschain/pkg/logging"
	"github.com/nspcc-dev/glasschain/pkg/mempool"
	"github.com/nspcc-dev/glasschain/pkg/metrics"
	"github.com/nspcc-dev/glasschain/pkg/peermgr"
	syncpkg "github.com/nspcc-dev/glasschain/pkg/sync"
	"github.com/nspcc-dev/glasschain/pkg/sync/inflight"
	"github.com/nspcc-dev/glasschain/pkg/sync/peerstate"
	"github.com/nspcc-dev/glasschain/pkg/sync/wire"
	"github.com/nspcc-dev/glasschain/pkg/transport"
)

// newGraceContext returns a context canceled on SIGINT/SIGTERM.
func newGraceContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		cancel()
	}()
	return ctx
}

func genesisHeader(cfg config.ProtocolConfiguration) *chain.Header {
	return &chain.Header{
		Timestamp: cfg.GenesisTimestamp,
	}
}

func runNode(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return cli.Exit(err, 1)
	}

	log, err := logging.New(cfg.ApplicationConfiguration.Logger)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer func() { _ = log.Sync() }()

	reg := prometheus.NewRegistry()
	m := metrics.NewSync()
	m.MustRegister(reg)
	metricsSrv := startMetricsServer(cfg.ApplicationConfiguration.MetricsAddress, reg, log)
	defer func() { _ = metricsSrv.Close() }()

	db := database.New(cfg.ApplicationConfiguration.DataDirectoryPath)
	defer func() { _ = db.Close() }()

	store := chain.New(db, genesisHeader(cfg.ProtocolConfiguration))
	pool := mempool.New(mempool.Config{
		MaxSize:    50000,
		MaxTxSize:  1 << 18,
		MaxOrphans: 5000,
	})
	peers := peermgr.New(peermgr.Config{
		BanThreshold: cfg.ApplicationConfiguration.BanThreshold,
		BanDuration:  cfg.ApplicationConfiguration.BanDuration,
	})

	manager := syncpkg.NewManager(log, cfg.ProtocolConfiguration.Limits(), store, pool, peers, m)

	grace, cancel := context.WithCancel(newGraceContext())
	defer cancel()

	group, gctx := errgroup.WithContext(grace)

	listener, err := listen(cfg.ApplicationConfiguration.P2P.Addresses)
	if err != nil {
		return cli.Exit(fmt.Errorf("failed to bind p2p listener: %w", err), 1)
	}
	defer func() { _ = listener.Close() }()

	group.Go(func() error {
		return acceptLoop(gctx, group, listener, manager, log)
	})
	group.Go(func() error {
		dialSeeds(gctx, group, cfg.ApplicationConfiguration.P2P, manager, log)
		return nil
	})

	log.Info("glasschaind started",
		zap.Stringer("magic", cfg.ProtocolConfiguration.Magic),
		zap.String("listen", listener.Addr().String()),
	)

	<-grace.Done()
	log.Info("shutting down")
	cancel()
	_ = listener.Close()
	return group.Wait()
}

func startMetricsServer(addr string, reg *prometheus.Registry, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	return srv
}

func listen(addresses []string) (net.Listener, error) {
	addr := ":30333"
	if len(addresses) > 0 {
		addr = addresses[0]
	}
	return net.Listen("tcp", addr)
}

// acceptLoop accepts inbound connections until ctx is canceled or the
// listener is closed by shutdown.
func acceptLoop(ctx context.Context, group *errgroup.Group, ln net.Listener, manager *syncpkg.Manager, log *zap.Logger) error {
	for {
		nc, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				log.Warn("accept failed", zap.Error(err))
				return nil
			}
		}
		servePeer(ctx, group, manager, nc, log)
	}
}

// dialSeeds connects outbound to every configured peer address beyond the
// first (which listen already bound as our own listen address).
func dialSeeds(ctx context.Context, group *errgroup.Group, p2p config.P2P, manager *syncpkg.Manager, log *zap.Logger) {
	for _, addr := range p2p.Addresses[min(1, len(p2p.Addresses)):] {
		addr := addr
		group.Go(func() error {
			dialer := net.Dialer{Timeout: p2p.DialTimeout}
			nc, err := dialer.DialContext(ctx, "tcp", addr)
			if err != nil {
				log.Warn("failed to dial seed", zap.String("addr", addr), zap.Error(err))
				return nil
			}
			servePeer(ctx, group, manager, nc, log)
			return nil
		})
	}
}

// servePeer registers nc with manager as a new peer, pairing a reader
// goroutine (decodes into the peer's inbound channel) and a writer
// goroutine (encodes from its outbound channel) around transport.Conn.
func servePeer(ctx context.Context, group *errgroup.Group, manager *syncpkg.Manager, nc net.Conn, log *zap.Logger) {
	id := newPeerID()
	tc := transport.NewConn(nc)

	inbound := make(chan wire.Message, 64)
	outbound := make(chan wire.Message, 64)

	manager.AddPeer(ctx, group, id, peerstate.V2, inbound, outbound)

	group.Go(func() error {
		defer close(inbound)
		for {
			msg, err := tc.Receive()
			if err != nil {
				return nil
			}
			select {
			case inbound <- msg:
			case <-ctx.Done():
				return nil
			}
		}
	})

	group.Go(func() error {
		defer func() { _ = tc.Close() }()
		for {
			select {
			case msg, ok := <-outbound:
				if !ok {
					return nil
				}
				if err := tc.Send(msg); err != nil {
					return nil
				}
			case <-ctx.Done():
				return nil
			}
		}
	})

	log.Info("peer connected", zap.Uint64("peer", uint64(id)), zap.Stringer("remote", tc.RemoteAddr()))
}

// newPeerID derives an inflight.PeerID from a fresh random UUID: the sync
// core treats ids as opaque, so collapsing 16 bytes to 8 loses nothing it
// relies on.
func newPeerID() inflight.PeerID {
	u := uuid.New()
	return inflight.PeerID(binary.LittleEndian.Uint64(u[:8]))
}
