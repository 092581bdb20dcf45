package repository

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"inventory-api/internal/database"
	"inventory-api/internal/domain"
)

// MemoryStore is an in-process product table with the same semantics as the
// Postgres one: generated ids, unique names, and writes visible only after Commit.
// Writers are serialized from their first write until Commit or Close.
type MemoryStore struct {
	writeMu sync.Mutex

	mu     sync.RWMutex
	rows   map[int64]domain.Product
	nextID int64
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[int64]domain.Product), nextID: 1}
}

// OpenSession implements SessionFactory
func (m *MemoryStore) OpenSession(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &memorySession{store: m}, nil
}

type memoryTable struct {
	rows   map[int64]domain.Product
	nextID int64
}

type memorySession struct {
	store  *MemoryStore
	staged *memoryTable
	closed bool
}

func (s *memorySession) Products() ProductRepository {
	return &memoryProductRepository{session: s}
}

func (s *memorySession) Commit() error {
	if s.closed {
		return database.ErrSessionClosed
	}
	if s.staged == nil {
		return nil
	}

	s.store.mu.Lock()
	s.store.rows = s.staged.rows
	s.store.nextID = s.staged.nextID
	s.store.mu.Unlock()

	s.staged = nil
	s.store.writeMu.Unlock()
	return nil
}

func (s *memorySession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.staged != nil {
		s.staged = nil
		s.store.writeMu.Unlock()
	}
	return nil
}

// snapshot returns the table this session reads from
func (s *memorySession) snapshot() *memoryTable {
	if s.staged != nil {
		return s.staged
	}

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	rows := make(map[int64]domain.Product, len(s.store.rows))
	for id, p := range s.store.rows {
		rows[id] = p
	}
	return &memoryTable{rows: rows, nextID: s.store.nextID}
}

// begin stages a private copy of the table for writing
func (s *memorySession) begin() (*memoryTable, error) {
	if s.closed {
		return nil, database.ErrSessionClosed
	}
	if s.staged == nil {
		s.store.writeMu.Lock()
		s.staged = s.snapshot()
	}
	return s.staged, nil
}

type memoryProductRepository struct {
	session *memorySession
}

func (r *memoryProductRepository) Create(ctx context.Context, product *domain.Product) error {
	table, err := r.session.begin()
	if err != nil {
		return err
	}
	if nameTaken(table, product.Name, 0) {
		return ErrProductAlreadyExists
	}

	product.ID = table.nextID
	table.nextID++
	table.rows[product.ID] = cloneProduct(*product)
	return nil
}

func (r *memoryProductRepository) Update(ctx context.Context, product *domain.Product) error {
	table, err := r.session.begin()
	if err != nil {
		return err
	}
	if _, ok := table.rows[product.ID]; !ok {
		return ErrProductNotFound
	}
	if nameTaken(table, product.Name, product.ID) {
		return ErrProductAlreadyExists
	}

	table.rows[product.ID] = cloneProduct(*product)
	return nil
}

func (r *memoryProductRepository) Delete(ctx context.Context, id int64) (*domain.Product, error) {
	table, err := r.session.begin()
	if err != nil {
		return nil, err
	}
	product, ok := table.rows[id]
	if !ok {
		return nil, ErrProductNotFound
	}

	delete(table.rows, id)
	deleted := cloneProduct(product)
	return &deleted, nil
}

func (r *memoryProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	if r.session.closed {
		return nil, database.ErrSessionClosed
	}
	product, ok := r.session.snapshot().rows[id]
	if !ok {
		return nil, ErrProductNotFound
	}

	found := cloneProduct(product)
	return &found, nil
}

func (r *memoryProductRepository) List(ctx context.Context, params ListParams) ([]*domain.Product, error) {
	if r.session.closed {
		return nil, database.ErrSessionClosed
	}

	products := []*domain.Product{}
	if params.Limit <= 0 {
		return products, nil
	}

	table := r.session.snapshot()
	ids := make([]int64, 0, len(table.rows))
	for id := range table.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	search := strings.ToLower(params.Search)
	matched := []*domain.Product{}
	for _, id := range ids {
		product := cloneProduct(table.rows[id])
		if search == "" || strings.Contains(strings.ToLower(product.Name), search) {
			matched = append(matched, &product)
		}
	}

	start := params.Offset
	if start < 0 {
		start = 0
	}
	if start >= len(matched) {
		return products, nil
	}
	end := len(matched)
	if params.Limit < end-start {
		end = start + params.Limit
	}

	return append(products, matched[start:end]...), nil
}

func (r *memoryProductRepository) Count(ctx context.Context) (int, error) {
	if r.session.closed {
		return 0, database.ErrSessionClosed
	}
	return len(r.session.snapshot().rows), nil
}

func nameTaken(table *memoryTable, name string, exceptID int64) bool {
	for id, p := range table.rows {
		if id != exceptID && p.Name == name {
			return true
		}
	}
	return false
}

func cloneProduct(p domain.Product) domain.Product {
	if p.Description != nil {
		description := *p.Description
		p.Description = &description
	}
	return p
}

// Health reports the in-process store as always up
func (m *MemoryStore) Health(ctx context.Context) map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]string{
		"status":   "up",
		"driver":   "memory",
		"products": strconv.Itoa(len(m.rows)),
	}
}

// Close implements Store; there is nothing to release
func (m *MemoryStore) Close() error {
	return nil
}
