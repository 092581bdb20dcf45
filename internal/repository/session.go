package repository

import (
	"context"

	"inventory-api/internal/database"
)

// Session is a per-request unit of work over the product store
type Session interface {
	Products() ProductRepository
	Commit() error
	Close() error
}

// SessionFactory opens sessions; every opened session must be closed
type SessionFactory interface {
	OpenSession(ctx context.Context) (Session, error)
}

// Store is a SessionFactory that owns its backing resources
type Store interface {
	SessionFactory
	Health(ctx context.Context) map[string]string
	Close() error
}

type sqlSessionFactory struct {
	db database.Service
}

// NewSessionFactory creates a Store backed by the database pool
func NewSessionFactory(db database.Service) Store {
	return &sqlSessionFactory{db: db}
}

func (f *sqlSessionFactory) Health(ctx context.Context) map[string]string {
	return f.db.Health(ctx)
}

func (f *sqlSessionFactory) Close() error {
	return f.db.Close()
}

func (f *sqlSessionFactory) OpenSession(ctx context.Context) (Session, error) {
	session, err := f.db.OpenSession(ctx)
	if err != nil {
		return nil, err
	}
	return &sqlSession{
		Session:  session,
		products: NewProductRepository(session),
	}, nil
}

type sqlSession struct {
	*database.Session
	products ProductRepository
}

func (s *sqlSession) Products() ProductRepository {
	return s.products
}
