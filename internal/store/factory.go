package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Open creates a Store from a DSN:
//
//	""                  default SQLite file under the user config dir
//	"memory:"           in-memory, nothing persisted
//	"redis://..."       Redis-backed
//	anything else       SQLite file at that path
func Open(dsn string) (Store, error) {
	switch {
	case dsn == "":
		path, err := defaultPath()
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(path)
	case dsn == "memory:":
		return NewMemoryStore(), nil
	case strings.HasPrefix(dsn, "redis://"), strings.HasPrefix(dsn, "rediss://"):
		return NewRedisStore(dsn)
	default:
		return NewSQLiteStore(dsn)
	}
}

func defaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, "chronocap", "session.db"), nil
}
