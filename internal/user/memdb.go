package user

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/supplychain-resilience/scr/internal"
	"github.com/supplychain-resilience/scr/internal/resource"
)

// memdb is an in-memory user store, used when no database is configured.
type memdb struct {
	mu          sync.RWMutex
	departments map[resource.ID]*Department
	users       map[string]*User
}

func newMemDB() *memdb {
	return &memdb{
		departments: make(map[resource.ID]*Department),
		users:       make(map[string]*User),
	}
}

func (db *memdb) createDepartment(_ context.Context, dept *Department) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, existing := range db.departments {
		if existing.Name == dept.Name {
			return internal.ErrResourceAlreadyExists
		}
	}
	db.departments[dept.ID] = new(*dept)
	return nil
}

func (db *memdb) getDepartment(_ context.Context, id resource.ID) (*Department, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	dept, ok := db.departments[id]
	if !ok {
		return nil, internal.ErrResourceNotFound
	}
	return new(*dept), nil
}

func (db *memdb) getDepartmentByName(_ context.Context, name string) (*Department, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, dept := range db.departments {
		if dept.Name == name {
			return new(*dept), nil
		}
	}
	return nil, internal.ErrResourceNotFound
}

func (db *memdb) listDepartments(context.Context) ([]*Department, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	depts := make([]*Department, 0, len(db.departments))
	for _, dept := range db.departments {
		depts = append(depts, new(*dept))
	}
	slices.SortFunc(depts, func(a, b *Department) int { return strings.Compare(a.Name, b.Name) })
	return depts, nil
}

func (db *memdb) createUser(_ context.Context, user *User) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.users[user.Username]; ok {
		return internal.ErrResourceAlreadyExists
	}
	db.users[user.Username] = new(*user)
	return nil
}

func (db *memdb) getUser(_ context.Context, username string) (*User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	user, ok := db.users[username]
	if !ok {
		return nil, internal.ErrResourceNotFound
	}
	return new(*user), nil
}
