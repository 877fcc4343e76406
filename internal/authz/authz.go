// Package authz handles all things authorization
package authz

import (
	"context"
	"fmt"

	"github.com/supplychain-resilience/scr/internal/resource"
)

// unexported key types prevents collisions
type subjectCtxKeyType string

const subjectCtxKey subjectCtxKeyType = "subject"

// Subject is an entity that carries out actions on resources.
type Subject interface {
	// CanAccess determines whether the subject may read and update the
	// supply chains of the given department.
	CanAccess(departmentID resource.ID) bool

	String() string
}

// AddSubjectToContext adds a subject to a context
func AddSubjectToContext(ctx context.Context, subj Subject) context.Context {
	return context.WithValue(ctx, subjectCtxKey, subj)
}

// SubjectFromContext retrieves a subject from a context
func SubjectFromContext(ctx context.Context) (Subject, error) {
	subj, ok := ctx.Value(subjectCtxKey).(Subject)
	if !ok {
		return nil, fmt.Errorf("no subject in context")
	}
	return subj, nil
}

// Superuser is a subject with access to every department. The admin CLI
// commands act as the superuser.
type Superuser struct {
	Username string
}

func (*Superuser) CanAccess(resource.ID) bool { return true }
func (s *Superuser) String() string           { return s.Username }
