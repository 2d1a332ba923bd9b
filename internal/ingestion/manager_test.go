package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/mr1hm/go-quake-map/internal/config"
	"github.com/mr1hm/go-quake-map/internal/models"
	"github.com/mr1hm/go-quake-map/internal/repository"
	"github.com/mr1hm/go-quake-map/internal/stream"
	"github.com/mr1hm/go-quake-map/internal/worker"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockQuakeRepo implements repository.QuakeRepository for testing
type mockQuakeRepo struct {
	mu       sync.Mutex
	quakes   map[string]*models.Earthquake
	addCount atomic.Int64
}

func newMockRepo() *mockQuakeRepo {
	return &mockQuakeRepo{
		quakes: make(map[string]*models.Earthquake),
	}
}

func (m *mockQuakeRepo) Add(ctx context.Context, q *models.Earthquake) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quakes[q.ID] = q
	m.addCount.Add(1)
	return nil
}

func (m *mockQuakeRepo) GetByID(ctx context.Context, id string) (*models.Earthquake, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.quakes[id], nil
}

func (m *mockQuakeRepo) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.quakes[id]
	return exists, nil
}

func (m *mockQuakeRepo) ListQuakes(ctx context.Context, opts repository.Filter) ([]*models.Earthquake, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var results []*models.Earthquake
	for _, q := range m.quakes {
		results = append(results, q)
	}
	return results, nil
}

func testConfig(workers, buffer int) *config.Config {
	return &config.Config{
		Worker: config.WorkerConfig{
			Count:      workers,
			BufferSize: buffer,
		},
		Sources: config.SourcesConfig{
			USGSEnabled:      false,
			USGSPollInterval: time.Minute,
		},
		Stream: config.StreamConfig{
			MinMagnitude: 5.0,
		},
	}
}

func TestManager_StartStop(t *testing.T) {
	repo := newMockRepo()
	mgr := NewManager(testConfig(2, 10), repo, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())

	// Start should not block
	mgr.Start(ctx)

	time.Sleep(50 * time.Millisecond)

	cancel()
	mgr.Stop()
}

func TestManager_PollsAndStores(t *testing.T) {
	cfg := testConfig(2, 10)
	cfg.Sources.USGSEnabled = true
	cfg.Sources.USGSURL = "http://feed.test"

	repo := newMockRepo()
	mgr := NewManager(cfg, repo, nil, nil)

	var calls atomic.Int64
	mgr.fetch = func(ctx context.Context, url string) ([]*models.Earthquake, error) {
		calls.Add(1)
		if url != "http://feed.test" {
			t.Errorf("unexpected url %s", url)
		}
		return []*models.Earthquake{
			{ID: "a", Magnitude: 5.1},
			{ID: "b", Magnitude: 3.2},
			{ID: "a", Magnitude: 5.1},
		}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	mgr.Start(ctx)

	time.Sleep(100 * time.Millisecond)

	cancel()
	mgr.Stop()

	if calls.Load() != 1 {
		t.Errorf("expected 1 initial poll, got %d", calls.Load())
	}
	if len(repo.quakes) != 2 {
		t.Errorf("expected 2 unique quakes stored, got %d", len(repo.quakes))
	}
}

func TestManager_PollWaitsWhenQueueFull(t *testing.T) {
	mgr := NewManager(testConfig(1, 1), newMockRepo(), nil, nil)
	mgr.fetch = func(ctx context.Context, url string) ([]*models.Earthquake, error) {
		return []*models.Earthquake{{ID: "a"}, {ID: "b"}, {ID: "c"}}, nil
	}
	// no workers are started, so only one quake fits in the queue
	mgr.pool = worker.NewWorkerPool("ingestion", 1, 1, mgr.process)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	queued, waited := mgr.poll(ctx, "http://feed.test")

	if queued != 1 {
		t.Errorf("expected 1 quake queued, got %d", queued)
	}
	if waited != 1 {
		t.Errorf("expected 1 quake to wait for room, got %d", waited)
	}
}

func TestManager_PollQueuesWithoutWaiting(t *testing.T) {
	mgr := NewManager(testConfig(1, 10), newMockRepo(), nil, nil)
	mgr.fetch = func(ctx context.Context, url string) ([]*models.Earthquake, error) {
		return []*models.Earthquake{{ID: "a"}, {ID: "b"}}, nil
	}
	mgr.pool = worker.NewWorkerPool("ingestion", 1, 10, mgr.process)

	queued, waited := mgr.poll(context.Background(), "http://feed.test")

	if queued != 2 || waited != 0 {
		t.Errorf("expected 2 queued and 0 waited, got %d and %d", queued, waited)
	}
}

func TestManager_PollErrorIsLogged(t *testing.T) {
	cfg := testConfig(1, 10)
	cfg.Sources.USGSEnabled = true

	repo := newMockRepo()
	mgr := NewManager(cfg, repo, nil, nil)
	mgr.fetch = func(ctx context.Context, url string) ([]*models.Earthquake, error) {
		return nil, errors.New("feed down")
	}

	ctx, cancel := context.WithCancel(context.Background())
	mgr.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()
	mgr.Stop()

	if repo.addCount.Load() != 0 {
		t.Errorf("expected nothing stored, got %d", repo.addCount.Load())
	}
}

func TestManager_BroadcastsLargeQuakes(t *testing.T) {
	repo := newMockRepo()
	b := stream.NewBroadcaster()
	defer b.Close()

	id, ch := b.Subscribe(0)
	defer b.Unsubscribe(id)

	mgr := NewManager(testConfig(1, 10), repo, b, nil)

	ctx, cancel := context.WithCancel(context.Background())
	mgr.Start(ctx)

	mgr.pool.Submit(&models.Earthquake{ID: "small", Magnitude: 4.0})
	mgr.pool.Submit(&models.Earthquake{ID: "large", Magnitude: 6.2})

	select {
	case q := <-ch:
		if q.ID != "large" {
			t.Errorf("expected large quake broadcast, got %s", q.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for broadcast")
	}

	cancel()
	mgr.Stop()

	if repo.addCount.Load() != 2 {
		t.Errorf("expected both quakes stored, got %d", repo.addCount.Load())
	}
}

func TestManager_ConcurrentSubmit(t *testing.T) {
	repo := newMockRepo()
	mgr := NewManager(testConfig(4, 100), repo, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	mgr.Start(ctx)

	var wg sync.WaitGroup
	numGoroutines := 10
	numPerGoroutine := 50

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(goroutineID int) {
			defer wg.Done()
			for j := 0; j < numPerGoroutine; j++ {
				mgr.pool.Submit(&models.Earthquake{
					ID:        fmt.Sprintf("test_%d_%d", goroutineID, j),
					Magnitude: float64(j % 8),
					Timestamp: time.Now(),
				})
			}
		}(i)
	}

	wg.Wait()

	// Give workers time to process
	time.Sleep(200 * time.Millisecond)

	cancel()
	mgr.Stop()

	expected := numGoroutines * numPerGoroutine
	actual := int(repo.addCount.Load())
	if actual != expected {
		t.Errorf("expected %d quakes added, got %d", expected, actual)
	}
}

func TestManager_GracefulShutdown(t *testing.T) {
	repo := newMockRepo()
	mgr := NewManager(testConfig(2, 100), repo, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	mgr.Start(ctx)

	for i := 0; i < 50; i++ {
		mgr.pool.Submit(&models.Earthquake{ID: fmt.Sprintf("shutdown_test_%d", i)})
	}

	// Immediately cancel
	cancel()

	done := make(chan struct{})
	go func() {
		mgr.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("manager.Stop() timed out - possible goroutine leak")
	}
}
