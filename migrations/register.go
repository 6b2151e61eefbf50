package migrations

import (
	"io/fs"
	"sync"
)

var (
	mu          sync.RWMutex
	filesystems []fs.FS
)

// Dialect names handed to go-persistence-bun as validation targets. SQLite
// overrides live in the directory of the same name.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Register records a filesystem rooted at a migrations directory. Hosts feed
// the registered filesystems into go-persistence-bun via Filesystems().
func Register(fsys fs.FS) {
	if fsys == nil {
		return
	}
	mu.Lock()
	filesystems = append(filesystems, fsys)
	mu.Unlock()
}

// Filesystems returns a copy of all registered migration filesystems.
func Filesystems() []fs.FS {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]fs.FS, len(filesystems))
	copy(out, filesystems)
	return out
}
