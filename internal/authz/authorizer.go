package authz

import (
	"context"

	"github.com/supplychain-resilience/scr/internal"
	"github.com/supplychain-resilience/scr/internal/logr"
	"github.com/supplychain-resilience/scr/internal/resource"
)

// Authorizer intermediates authorization between subjects (users requesting
// access) and the departments owning the resources they request.
type Authorizer struct {
	logr.Logger
}

// Interface permits swapping out the authorizer in tests.
type Interface interface {
	Authorize(ctx context.Context, departmentID resource.ID) (Subject, error)
}

func NewAuthorizer(logger logr.Logger) *Authorizer {
	return &Authorizer{Logger: logger}
}

// Authorize determines whether the subject in the context belongs to the
// given department.
func (a *Authorizer) Authorize(ctx context.Context, departmentID resource.ID) (Subject, error) {
	subj, err := SubjectFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !subj.CanAccess(departmentID) {
		a.Error(internal.ErrAccessNotPermitted, "authorization failure",
			"department", departmentID,
			"subject", subj,
		)
		return nil, internal.ErrAccessNotPermitted
	}
	return subj, nil
}
