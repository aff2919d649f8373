package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"trustregistry/internal/domain"
)

// DefaultPostgresTable is the record table used when none is configured.
const DefaultPostgresTable = "trust_records"

// PostgresQueryStore serves the anonymous query path from a postgres table
// holding one JSONB record document per composite key. It implements only
// QueryRepository: the table is populated out of band (a read replica of
// whichever backend takes admin traffic), so this adapter never mutates it.
//
// Expected schema:
//
//	CREATE TABLE trust_records (
//	    record_key TEXT PRIMARY KEY,
//	    record     JSONB NOT NULL
//	);
type PostgresQueryStore struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresQueryStore verifies connectivity with a ping and returns the
// store. An empty table name selects DefaultPostgresTable. The pool's
// lifecycle is managed by the caller.
func NewPostgresQueryStore(ctx context.Context, pool *pgxpool.Pool, table string) (*PostgresQueryStore, error) {
	if table == "" {
		table = DefaultPostgresTable
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: postgres ping: %v", ErrConnectionFailed, err)
	}
	return &PostgresQueryStore{pool: pool, table: table}, nil
}

func (s *PostgresQueryStore) FindByQuery(ctx context.Context, query domain.TrustRecordQuery) (*domain.TrustRecord, error) {
	sql := fmt.Sprintf("SELECT record FROM %s WHERE record_key = $1", s.table)

	var raw []byte
	err := s.pool.QueryRow(ctx, sql, query.String()).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: select %s: %v", ErrQueryFailed, query, err)
	}

	record, err := decodeRecord(raw)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
