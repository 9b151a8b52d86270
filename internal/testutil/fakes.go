// Package testutil provides in-memory implementations of the ports for tests.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/cartec/catalog/internal/core/domain"
)

var ErrUnavailable = errors.New("fake: service unavailable")

// MemoryCarRepository is a CarRepository backed by a map.
type MemoryCarRepository struct {
	mu      sync.Mutex
	cars    map[string]domain.Car
	nextID  int
	clock   time.Time
	Creates int

	ListErr   error
	GetErr    error
	CreateErr error
	DeleteErr error
}

func NewMemoryCarRepository(cars ...domain.Car) *MemoryCarRepository {
	r := &MemoryCarRepository{
		cars:  make(map[string]domain.Car),
		clock: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, c := range cars {
		if c.CreatedAt.IsZero() {
			c.CreatedAt = r.tick()
		}
		r.cars[c.ID] = c
	}
	return r
}

func (r *MemoryCarRepository) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *MemoryCarRepository) ListCars(ctx context.Context) ([]domain.Car, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ListErr != nil {
		return nil, r.ListErr
	}

	out := make([]domain.Car, 0, len(r.cars))
	for _, c := range r.cars {
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryCarRepository) GetCar(ctx context.Context, id string) (*domain.Car, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.GetErr != nil {
		return nil, r.GetErr
	}

	c, ok := r.cars[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *MemoryCarRepository) CreateCar(ctx context.Context, car domain.Car) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateErr != nil {
		return "", r.CreateErr
	}

	r.nextID++
	car.ID = fmt.Sprintf("mem-%d", r.nextID)
	car.CreatedAt = r.tick()
	r.cars[car.ID] = car
	r.Creates++
	return car.ID, nil
}

func (r *MemoryCarRepository) DeleteCar(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.DeleteErr != nil {
		return r.DeleteErr
	}

	if _, ok := r.cars[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.cars, id)
	return nil
}

// Upload is one call recorded by FakeBlobStorage.
type Upload struct {
	Key         string
	ContentType string
	Data        []byte
}

// FakeBlobStorage records uploads and serves them from a fixed base URL.
type FakeBlobStorage struct {
	mu      sync.Mutex
	Uploads []Upload
	Err     error
}

func (b *FakeBlobStorage) Upload(ctx context.Context, key, contentType string, body io.ReadSeeker) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return "", b.Err
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	b.Uploads = append(b.Uploads, Upload{Key: key, ContentType: contentType, Data: data})
	return "https://blobs.test/" + key, nil
}

// MemoryCache is a CacheRepository kept in maps. Session TTLs are ignored.
type MemoryCache struct {
	mu          sync.Mutex
	keys        map[string]bool
	sessions    map[string]string
	subscribers []chan struct{}
	Publishes   int

	Err error
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		keys:     make(map[string]bool),
		sessions: make(map[string]string),
	}
}

func (m *MemoryCache) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *MemoryCache) ReleaseIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.keys, key)
	return nil
}

func (m *MemoryCache) SaveSession(ctx context.Context, sessionID, uid string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sessions[sessionID] = uid
	return nil
}

func (m *MemoryCache) SessionActive(ctx context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	_, ok := m.sessions[sessionID]
	return ok, nil
}

func (m *MemoryCache) DeleteSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

func (m *MemoryCache) PublishCatalogChange(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Publishes++
	for _, ch := range m.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

func (m *MemoryCache) SubscribeCatalogChanges(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{}, 1)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, sub := range m.subscribers {
			if sub == ch {
				m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch
}

// StubIdentityProvider signs in whoever is registered under a code.
type StubIdentityProvider struct {
	Identities map[string]domain.Identity
}

func (p *StubIdentityProvider) AuthCodeURL(state string) string {
	return "https://accounts.test/auth?state=" + state
}

func (p *StubIdentityProvider) Exchange(ctx context.Context, code string) (domain.Identity, error) {
	id, ok := p.Identities[code]
	if !ok {
		return domain.Identity{}, errors.New("fake: unknown code")
	}
	return id, nil
}
