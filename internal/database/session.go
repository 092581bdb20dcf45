package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrSessionClosed is returned when a closed session is used
var ErrSessionClosed = errors.New("session is closed")

// Querier is the query surface shared by *sql.DB, *sql.Conn, *sql.Tx and *Session
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Session is a unit of work bound to one pooled connection.
// The transaction starts with the first write and ends with Commit or Close.
type Session struct {
	conn   *sql.Conn
	tx     *sql.Tx
	closed bool
}

var _ Querier = (*Session)(nil)

// ExecContext runs a write inside the session transaction, beginning it if needed
func (s *Session) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	return s.tx.ExecContext(ctx, query, args...)
}

// QueryContext runs a query inside the transaction when one is open
func (s *Session) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.tx != nil {
		return s.tx.QueryContext(ctx, query, args...)
	}
	return s.conn.QueryContext(ctx, query, args...)
}

// QueryRowContext runs a single-row query inside the transaction when one is open.
// Statements with RETURNING that modify rows must go through QueryRowWriteContext.
func (s *Session) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	if s.tx != nil {
		return s.tx.QueryRowContext(ctx, query, args...)
	}
	return s.conn.QueryRowContext(ctx, query, args...)
}

// QueryRowWriteContext runs a modifying statement that returns a row, beginning the transaction if needed
func (s *Session) QueryRowWriteContext(ctx context.Context, query string, args ...any) (*sql.Row, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	return s.tx.QueryRowContext(ctx, query, args...), nil
}

// Commit commits pending writes. It is a no-op when nothing was written.
func (s *Session) Commit() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.tx == nil {
		return nil
	}
	err := s.tx.Commit()
	s.tx = nil
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close rolls back uncommitted writes and returns the connection to the pool.
// It is safe to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var rollbackErr error
	if s.tx != nil {
		if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			rollbackErr = fmt.Errorf("failed to roll back transaction: %w", err)
		}
		s.tx = nil
	}

	if err := s.conn.Close(); err != nil {
		return errors.Join(rollbackErr, fmt.Errorf("failed to release connection: %w", err))
	}
	return rollbackErr
}

// InTransaction reports whether a write has opened a transaction that is not yet committed
func (s *Session) InTransaction() bool {
	return s.tx != nil
}

func (s *Session) begin(ctx context.Context) error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.tx != nil {
		return nil
	}
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	s.tx = tx
	return nil
}
