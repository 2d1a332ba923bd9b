package ingestion

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mr1hm/go-quake-map/internal/config"
	"github.com/mr1hm/go-quake-map/internal/geo"
	"github.com/mr1hm/go-quake-map/internal/models"
	"github.com/mr1hm/go-quake-map/internal/repository"
	"github.com/mr1hm/go-quake-map/internal/stream"
	"github.com/mr1hm/go-quake-map/internal/worker"
)

type FetchFunc func(ctx context.Context, url string) ([]*models.Earthquake, error)

type Manager struct {
	cfg         *config.Config
	repo        repository.QuakeRepository
	broadcaster *stream.Broadcaster
	landmass    *geo.Landmass
	fetch       FetchFunc
	pool        *worker.WorkerPool[*models.Earthquake]
	wg          sync.WaitGroup
}

// NewManager wires the USGS poller to the repository. broadcaster and landmass may be nil.
func NewManager(cfg *config.Config, repo repository.QuakeRepository, broadcaster *stream.Broadcaster, landmass *geo.Landmass) *Manager {
	return &Manager{
		cfg:         cfg,
		repo:        repo,
		broadcaster: broadcaster,
		landmass:    landmass,
		fetch:       FetchUSGS,
	}
}

func (m *Manager) Start(ctx context.Context) {
	m.pool = worker.NewWorkerPool("ingestion", m.cfg.Worker.Count, m.cfg.Worker.BufferSize, m.process)
	m.pool.Start(ctx)

	if m.cfg.Sources.USGSEnabled {
		m.wg.Add(1)
		go m.runPoller(ctx, m.cfg.Sources.USGSURL, m.cfg.Sources.USGSPollInterval)
	}
}

func (m *Manager) process(ctx context.Context, quake *models.Earthquake) error {
	exists, err := m.repo.Exists(ctx, quake.ID)
	if err != nil {
		slog.Error("error checking existence", "id", quake.ID, "error", err)
		return err
	}
	if exists {
		return nil
	}

	if quake.Country == "" {
		if country, ok := m.landmass.Locate(quake.Location); ok {
			quake.Country = country
		}
	}

	if err := m.repo.Add(ctx, quake); err != nil {
		slog.Error("error adding quake", "id", quake.ID, "error", err)
		return err
	}

	if m.broadcaster != nil && quake.Magnitude >= m.cfg.Stream.MinMagnitude {
		m.broadcaster.Broadcast(quake)
	}

	slog.Info("added quake", "id", quake.ID, "magnitude", quake.Magnitude, "depth", quake.Depth, "class", quake.DepthClass())
	return nil
}

func (m *Manager) runPoller(ctx context.Context, url string, interval time.Duration) {
	defer m.wg.Done()
	slog.Info("starting poller", "source", "usgs", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial poll
	m.poll(ctx, url)

	for {
		select {
		case <-ctx.Done():
			slog.Info("poller shutting down", "source", "usgs")
			return
		case <-ticker.C:
			m.poll(ctx, url)
		}
	}
}

// poll queues every fetched quake. When the worker queue is full it waits for
// room until ctx is done. It returns how many quakes were queued and how many
// of those had to wait.
func (m *Manager) poll(ctx context.Context, url string) (queued, waited int) {
	slog.Debug("polling", "source", "usgs")

	quakes, err := m.fetch(ctx, url)
	if err != nil {
		slog.Error("poll failed", "source", "usgs", "error", err)
		return 0, 0
	}

	for _, q := range quakes {
		if m.pool.TrySubmit(q) {
			queued++
			continue
		}
		waited++
		if !m.pool.SubmitContext(ctx, q) {
			slog.Warn("poll interrupted with quakes still unqueued", "source", "usgs", "queued", queued, "remaining", len(quakes)-queued)
			return queued, waited
		}
		queued++
	}

	if waited > 0 {
		slog.Info("worker queue was full during poll", "source", "usgs", "waited", waited)
	}
	slog.Debug("poll complete", "source", "usgs", "count", queued)
	return queued, waited
}

func (m *Manager) Stop() {
	m.wg.Wait()
	m.pool.Stop()
	slog.Info("ingestion manager stopped")
}
