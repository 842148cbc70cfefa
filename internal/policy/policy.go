// Package policy centralizes authorization for every core operation.
//
// Services ask one question, whether this subject may perform this action
// against a resource with this owner, instead of repeating inline ownership
// checks.
// Identity itself (credentials, sessions) belongs to an external collaborator;
// this package only consumes the resulting principal.
package policy

import (
	"context"

	dErrors "lifelink/pkg/domain-errors"
	"lifelink/pkg/requestcontext"
)

// Role is the coarse access level of a principal.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Directory answers role membership questions for principals. The first
// principal registered becomes the administrator, mirroring the bootstrap
// behavior of the reference deployment.
type Directory interface {
	IsAdmin(ctx context.Context, p requestcontext.Principal) (bool, error)
	Bootstrap(ctx context.Context, p requestcontext.Principal) error
	Assign(ctx context.Context, p requestcontext.Principal, role Role) error
}

// Evaluator makes allow/deny decisions given a Directory.
type Evaluator struct {
	dir Directory
}

func NewEvaluator(dir Directory) *Evaluator {
	return &Evaluator{dir: dir}
}

// IsAdmin reports whether the principal holds the admin role. Directory
// failures deny by default.
func (e *Evaluator) IsAdmin(ctx context.Context, p requestcontext.Principal) bool {
	if p.IsAnonymous() {
		return false
	}
	admin, err := e.dir.IsAdmin(ctx, p)
	if err != nil {
		return false
	}
	return admin
}

// RequireUser denies anonymous callers. Any authenticated principal counts as
// a user; role records only distinguish administrators.
func (e *Evaluator) RequireUser(_ context.Context, p requestcontext.Principal) error {
	if p.IsAnonymous() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return nil
}

// RequireAdmin denies callers without the admin role.
func (e *Evaluator) RequireAdmin(ctx context.Context, p requestcontext.Principal) error {
	if err := e.RequireUser(ctx, p); err != nil {
		return err
	}
	if !e.IsAdmin(ctx, p) {
		return dErrors.New(dErrors.CodeUnauthorized, "admin role required")
	}
	return nil
}

// RequireOwnerOrAdmin allows the resource owner or an administrator.
func (e *Evaluator) RequireOwnerOrAdmin(ctx context.Context, p, owner requestcontext.Principal) error {
	if err := e.RequireUser(ctx, p); err != nil {
		return err
	}
	if p == owner || e.IsAdmin(ctx, p) {
		return nil
	}
	return dErrors.New(dErrors.CodeUnauthorized, "caller does not own this resource")
}

// RequireOwner allows only the exact resource owner, with no admin override.
// Contact disclosure uses this: revealing a donor's contact details on someone
// else's request is not an administrative concern.
func (e *Evaluator) RequireOwner(ctx context.Context, p, owner requestcontext.Principal) error {
	if err := e.RequireUser(ctx, p); err != nil {
		return err
	}
	if p != owner {
		return dErrors.New(dErrors.CodeUnauthorized, "only the resource owner may perform this operation")
	}
	return nil
}

// AssignRole grants a role to a principal. Only administrators may assign.
func (e *Evaluator) AssignRole(ctx context.Context, caller, subject requestcontext.Principal, role Role) error {
	if err := e.RequireAdmin(ctx, caller); err != nil {
		return err
	}
	if subject.IsAnonymous() {
		return dErrors.New(dErrors.CodeInvalidInput, "subject principal is required")
	}
	if role != RoleAdmin && role != RoleUser {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	return e.dir.Assign(ctx, subject, role)
}

// BootstrapCaller records the principal in the directory, promoting the very
// first caller to administrator.
func (e *Evaluator) BootstrapCaller(ctx context.Context, p requestcontext.Principal) error {
	if p.IsAnonymous() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return e.dir.Bootstrap(ctx, p)
}
