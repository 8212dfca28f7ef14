package session

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/otpnotes/internal/client/client"
	"github.com/dmitrijs2005/otpnotes/internal/client/models"
	"github.com/dmitrijs2005/otpnotes/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/otpnotes/internal/dbx"
	"github.com/dmitrijs2005/otpnotes/internal/filex"
)

// SQLiteStore keeps the session in the metadata table of a local SQLite
// file. The file and its directory are created and migrated on first use.
type SQLiteStore struct {
	dsn string

	mu sync.Mutex
	db *sql.DB
}

func NewSQLiteStore(dsn string) *SQLiteStore {
	return &SQLiteStore{dsn: dsn}
}

// open returns the database, initializing it on the first call. A failed
// initialization is retried on the next call.
func (s *SQLiteStore) open(ctx context.Context) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}
	if isFilePath(s.dsn) {
		if _, err := filex.EnsureParentDir(s.dsn); err != nil {
			return nil, fmt.Errorf("open session store %s: %w", s.dsn, err)
		}
	}
	db, err := client.InitDatabase(ctx, s.dsn)
	if err != nil {
		return nil, fmt.Errorf("open session store %s: %w", s.dsn, err)
	}
	s.db = db
	return db, nil
}

// isFilePath reports whether dsn names a plain file rather than a URI or an
// in-memory database.
func isFilePath(dsn string) bool {
	return dsn != "" && !strings.HasPrefix(dsn, ":memory:") && !strings.HasPrefix(dsn, "file:")
}

// Save writes both keys in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, sess models.Session) error {
	token, user, err := encode(sess)
	if err != nil {
		return err
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, KeyToken, token); err != nil {
			return err
		}
		return repo.Set(ctx, KeyUser, user)
	})
}

func (s *SQLiteStore) Load(ctx context.Context) (*models.Session, error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}

	var token, user []byte
	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		var err error
		if token, err = repo.Get(ctx, KeyToken); err != nil {
			return err
		}
		user, err = repo.Get(ctx, KeyUser)
		return err
	})
	if err != nil {
		return nil, err
	}
	return decode(token, user)
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	return metadata.NewSQLiteRepository(db).Delete(ctx, KeyToken, KeyUser)
}

// Close releases the database if it was ever opened.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
