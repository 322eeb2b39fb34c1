package leveldb

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/LeJamon/goVaultd/internal/storage/database"
)

// Manager opens leveldb databases under one directory. A manager created
// with NewMemManager keeps everything in memory.
type Manager struct {
	dbs    map[string]*leveldb.DB
	path   string
	memory bool
	mu     sync.Mutex
}

func NewManager(path string) *Manager {
	return &Manager{
		dbs:  make(map[string]*leveldb.DB),
		path: path,
	}
}

// NewMemManager returns a manager whose databases vanish on Close.
func NewMemManager() *Manager {
	return &Manager{
		dbs:    make(map[string]*leveldb.DB),
		memory: true,
	}
}

func (m *Manager) OpenDB(name string) (database.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if db, exists := m.dbs[name]; exists {
		return NewDB(db), nil
	}

	var (
		db  *leveldb.DB
		err error
	)
	if m.memory {
		db, err = leveldb.Open(storage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(filepath.Join(m.path, name+".ldb"), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", name, err)
	}

	m.dbs[name] = db
	return NewDB(db), nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for name, db := range m.dbs {
		if err := db.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close database %s: %w", name, err)
		}
		delete(m.dbs, name)
	}
	return lastErr
}

var _ database.Manager = (*Manager)(nil)
