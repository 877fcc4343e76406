package user

import (
	"context"
	"fmt"

	"github.com/supplychain-resilience/scr/internal/authz"
	"github.com/supplychain-resilience/scr/internal/logr"
	"github.com/supplychain-resilience/scr/internal/resource"
	"github.com/supplychain-resilience/scr/internal/sql"
)

type (
	Service struct {
		logr.Logger

		db store
	}

	Options struct {
		logr.Logger

		// DB is the postgres database. When nil users are kept in memory.
		*sql.DB
	}
)

func NewService(opts Options) *Service {
	svc := Service{Logger: opts.Logger}
	if opts.DB != nil {
		svc.db = &pgdb{opts.DB}
	} else {
		svc.db = newMemDB()
	}
	return &svc
}

func (a *Service) CreateDepartment(ctx context.Context, name, emailDomain string) (*Department, error) {
	dept, err := NewDepartment(name, emailDomain)
	if err != nil {
		return nil, err
	}
	if err := a.db.createDepartment(ctx, dept); err != nil {
		a.Error(err, "creating department", "name", name)
		return nil, err
	}
	a.V(0).Info("created department", "name", dept.Name, "id", dept.ID)
	return dept, nil
}

func (a *Service) GetDepartment(ctx context.Context, id resource.ID) (*Department, error) {
	dept, err := a.db.getDepartment(ctx, id)
	if err != nil {
		a.Error(err, "retrieving department", "id", id)
		return nil, err
	}
	a.V(9).Info("retrieved department", "name", dept.Name)
	return dept, nil
}

func (a *Service) GetDepartmentByName(ctx context.Context, name string) (*Department, error) {
	dept, err := a.db.getDepartmentByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("retrieving department %q: %w", name, err)
	}
	return dept, nil
}

func (a *Service) ListDepartments(ctx context.Context) ([]*Department, error) {
	return a.db.listDepartments(ctx)
}

func (a *Service) CreateUser(ctx context.Context, opts CreateUserOptions) (*User, error) {
	dept, err := a.GetDepartmentByName(ctx, opts.Department)
	if err != nil {
		return nil, err
	}
	user, err := newUser(opts.Username, opts.Email, dept.ID)
	if err != nil {
		return nil, err
	}
	if err := a.db.createUser(ctx, user); err != nil {
		a.Error(err, "creating user", "username", opts.Username)
		return nil, err
	}
	a.V(0).Info("created user", "username", user.Username, "department", dept.Name)
	return user, nil
}

func (a *Service) GetUser(ctx context.Context, username string) (*User, error) {
	user, err := a.db.getUser(ctx, username)
	if err != nil {
		a.V(9).Info("retrieving user", "username", username, "error", err.Error())
		return nil, err
	}
	a.V(9).Info("retrieved user", "username", username)
	return user, nil
}

// GetSubject retrieves the user with the given username as an authorization
// subject, for use by the session middleware.
func (a *Service) GetSubject(ctx context.Context, username string) (authz.Subject, error) {
	user, err := a.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return user, nil
}
