package inmemdb

import (
	"sync"

	"github.com/trezcool/gradebook/core/catalog"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/user"
)

type (
	// DB keeps every table behind a single lock so that joins see a consistent state.
	DB struct {
		mutex    sync.RWMutex
		users    map[int]*user.User
		classes  map[int]*catalog.Class
		subjects map[int]*catalog.Subject
		grades   map[int]*grade.Grade
		pkCounts map[string]int
	}
)

func Open() *DB {
	return &DB{
		users:    make(map[int]*user.User),
		classes:  make(map[int]*catalog.Class),
		subjects: make(map[int]*catalog.Subject),
		grades:   make(map[int]*grade.Grade),
		pkCounts: make(map[string]int),
	}
}

// nextID must be called with the write lock held.
func (db *DB) nextID(table string) int {
	db.pkCounts[table]++
	return db.pkCounts[table]
}
