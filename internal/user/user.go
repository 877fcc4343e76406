// Package user manages users and the government departments they belong to.
package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/supplychain-resilience/scr/internal"
	"github.com/supplychain-resilience/scr/internal/authz"
	"github.com/supplychain-resilience/scr/internal/resource"
)

var _ authz.Subject = (*User)(nil)

type (
	// Department is a government department owning supply chains.
	Department struct {
		ID          resource.ID `db:"department_id"`
		Name        string      `db:"name"`
		EmailDomain string      `db:"email_domain"`
		CreatedAt   time.Time   `db:"created_at"`
	}

	// User is a member of a department.
	User struct {
		ID           resource.ID `db:"user_id"`
		Username     string      `db:"username"`
		Email        string      `db:"email"`
		DepartmentID resource.ID `db:"department_id"`
		CreatedAt    time.Time   `db:"created_at"`
	}

	CreateUserOptions struct {
		Username   string
		Email      string
		Department string // department name
	}
)

func NewDepartment(name, emailDomain string) (*Department, error) {
	if err := resource.ValidateName(&name); err != nil {
		return nil, err
	}
	return &Department{
		ID:          resource.NewID(resource.DepartmentKind),
		Name:        strings.TrimSpace(name),
		EmailDomain: strings.ToLower(strings.TrimSpace(emailDomain)),
		CreatedAt:   internal.CurrentTimestamp(),
	}, nil
}

func newUser(username, email string, department resource.ID) (*User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, &internal.MissingParameterError{Parameter: "username"}
	}
	return &User{
		ID:           resource.NewID(resource.UserKind),
		Username:     username,
		Email:        email,
		DepartmentID: department,
		CreatedAt:    internal.CurrentTimestamp(),
	}, nil
}

func (u *User) String() string { return u.Username }

// CanAccess permits a user access to the supply chains of their own
// department only.
func (u *User) CanAccess(departmentID resource.ID) bool {
	return u.DepartmentID != resource.EmptyID && u.DepartmentID == departmentID
}

// UserFromContext retrieves a user from a context
func UserFromContext(ctx context.Context) (*User, error) {
	subj, err := authz.SubjectFromContext(ctx)
	if err != nil {
		return nil, err
	}
	user, ok := subj.(*User)
	if !ok {
		return nil, fmt.Errorf("subject found in context but it is not a user")
	}
	return user, nil
}
