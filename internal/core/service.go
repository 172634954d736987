// Package core runs the translation cache: it answers channel requests, owns the local store and drives the sync.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/at-ishikawa/wordsync/internal/channel"
	"github.com/at-ishikawa/wordsync/internal/config"
	"github.com/at-ishikawa/wordsync/internal/datasync"
	"github.com/at-ishikawa/wordsync/internal/localstore"
	"github.com/at-ishikawa/wordsync/internal/lookup"
	"github.com/at-ishikawa/wordsync/internal/remote"
	"github.com/at-ishikawa/wordsync/internal/translation"
)

//go:generate mockgen -source=service.go -destination=../mocks/core/mock_service.go -package=mock_core

type Resolver interface {
	Resolve(ctx context.Context, term string) (lookup.Result, error)
}

// RemoteStore is the part of the remote client the service talks to.
type RemoteStore interface {
	Upsert(ctx context.Context, word, text string) error
	Delete(ctx context.Context, id, word string) error
	List(ctx context.Context) ([]translation.Record, error)
	BatchUpsert(ctx context.Context, records []translation.Record) error
}

var _ RemoteStore = (*remote.Client)(nil)

type Options struct {
	// Remote is nil when the remote store is disabled.
	Remote RemoteStore
	Sync   config.SyncConfig
	// Listener serves the channel over HTTP. ListenAddress is used when it is nil, and an empty address disables it.
	Listener      net.Listener
	ListenAddress string
}

type Service struct {
	store     *localstore.Store
	resolver  Resolver
	hub       *channel.Hub
	remote    RemoteStore
	scheduler *datasync.Scheduler
	syncCfg   config.SyncConfig

	listener      net.Listener
	listenAddress string
}

func New(store *localstore.Store, resolver Resolver, hub *channel.Hub, opts Options) *Service {
	s := &Service{
		store:         store,
		resolver:      resolver,
		hub:           hub,
		remote:        opts.Remote,
		syncCfg:       opts.Sync,
		listener:      opts.Listener,
		listenAddress: opts.ListenAddress,
	}
	if s.remote != nil && opts.Sync.SchedulerEnabled() {
		s.scheduler = datasync.NewScheduler(store, s.remote, opts.Sync.Interval())
	}
	return s
}

// Start loads the local store and merges the remote snapshot into it.
// A failed pull is logged and the service starts with the local state only.
func (s *Service) Start(ctx context.Context) error {
	if err := s.store.Load(ctx); err != nil {
		return fmt.Errorf("load local store: %w", err)
	}
	slog.Default().Info("local store loaded", "translations", len(s.store.List()))

	if s.remote == nil || !s.syncCfg.Enabled {
		return nil
	}
	pulled, err := datasync.Pull(ctx, s.remote, s.store)
	if err != nil {
		slog.Default().Warn("initial pull failed", "error", err)
		return nil
	}
	slog.Default().Info("remote translations merged", "count", pulled)
	return nil
}

// Run answers channel requests until ctx is cancelled. Each request is handled in its own goroutine.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	if err := s.listen(ctx, g); err != nil {
		return err
	}

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case ch := <-s.hub.Requests():
				g.Go(func() error {
					s.serve(ctx, ch)
					return nil
				})
			}
		}
	})

	if s.scheduler != nil {
		g.Go(func() error {
			return s.scheduler.Run(ctx)
		})
	}

	return g.Wait()
}

func (s *Service) listen(ctx context.Context, g *errgroup.Group) error {
	ln := s.listener
	if ln == nil {
		if s.listenAddress == "" {
			return nil
		}
		var err error
		ln, err = net.Listen("tcp", s.listenAddress)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", s.listenAddress, err)
		}
	}

	srv := &http.Server{
		Handler:           channel.NewHTTPHandler(s.hub),
		ReadHeaderTimeout: 5 * time.Second,
	}
	g.Go(func() error {
		slog.Default().Info("channel listener started", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve channel: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return nil
}

// Close stops accepting channel requests.
func (s *Service) Close() error {
	s.hub.Close()
	return nil
}

func (s *Service) serve(ctx context.Context, ch *channel.Channel) {
	req := ch.Request()
	resp, followUp := s.dispatch(ctx, req)
	if err := ch.Reply(resp); err != nil {
		slog.Default().Debug("reply discarded", "id", req.ID, "type", req.Type, "error", err)
	}
	if followUp != nil {
		followUp(context.WithoutCancel(ctx))
	}
}
