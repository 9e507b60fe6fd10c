package orders

import (
	"context"
	"sync"

	"github.com/rbc-easyrent/signiflow-order-service/internal/models"
)

// MemoryStore keeps orders in process. Used when no DATABASE_URL is set and
// by tests.
type MemoryStore struct {
	mu     sync.RWMutex
	orders map[int64]*models.Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orders: make(map[int64]*models.Order)}
}

// Put seeds or replaces an order snapshot.
func (m *MemoryStore) Put(order *models.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *order
	cp.Notes = append([]string(nil), order.Notes...)
	cp.Items = append([]models.LineItem(nil), order.Items...)
	m.orders[order.ID] = &cp
}

func (m *MemoryStore) Get(ctx context.Context, id int64) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot(id)
}

func (m *MemoryStore) FindByDocID(ctx context.Context, docID string) (*models.Order, error) {
	if docID == "" {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	// Lowest id wins, mirroring the legacy limit-1 lookup.
	var match *models.Order
	for _, o := range m.orders {
		if o.DocID != docID {
			continue
		}
		if match == nil || o.ID < match.ID {
			match = o
		}
	}
	if match == nil {
		return nil, nil
	}
	return m.snapshot(match.ID)
}

func (m *MemoryStore) SetSigningMeta(ctx context.Context, id int64, docID, workflowID string) error {
	return m.mutate(id, func(o *models.Order) {
		o.DocID = docID
		o.WorkflowID = workflowID
	})
}

func (m *MemoryStore) SetSigningStatus(ctx context.Context, id int64, status models.SigningStatus) error {
	return m.mutate(id, func(o *models.Order) {
		o.SigningStatus = status
	})
}

func (m *MemoryStore) SetLastError(ctx context.Context, id int64, detail string) error {
	return m.mutate(id, func(o *models.Order) {
		o.LastError = detail
	})
}

func (m *MemoryStore) UpdateStatus(ctx context.Context, id int64, status, note string) error {
	return m.mutate(id, func(o *models.Order) {
		o.Status = status
		if note != "" {
			o.Notes = append(o.Notes, note)
		}
	})
}

func (m *MemoryStore) AddNote(ctx context.Context, id int64, note string) error {
	return m.mutate(id, func(o *models.Order) {
		o.Notes = append(o.Notes, note)
	})
}

func (m *MemoryStore) mutate(id int64, fn func(*models.Order)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	fn(o)
	return nil
}

// snapshot copies under the caller's lock.
func (m *MemoryStore) snapshot(id int64) (*models.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	cp.Notes = append([]string(nil), o.Notes...)
	cp.Items = append([]models.LineItem(nil), o.Items...)
	return &cp, nil
}
