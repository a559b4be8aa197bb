package access

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Service fronts the policy store: input validation, the optional read
// cache, and the evaluator. All mutations invalidate the cached map for
// the touched principal.
type Service struct {
	store Store
	cache Cache
}

// ServiceOption configures Service.
type ServiceOption func(*Service)

// WithCache installs a read-through cache for access maps.
func WithCache(c Cache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

func NewService(store Store, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("access store is required")
	}
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AccessMap returns the module → level map for a principal, preferring the
// cache when one is installed.
func (s *Service) AccessMap(ctx context.Context, principalID string) (Map, error) {
	principalID = strings.TrimSpace(principalID)
	if principalID == "" {
		return nil, fmt.Errorf("%w: principal_id is required", ErrInvalidInput)
	}
	if s.cache != nil {
		if m, ok := s.cache.GetMap(ctx, principalID); ok {
			return m, nil
		}
	}
	m, err := s.store.Get(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetMap(ctx, principalID, m)
	}
	return m, nil
}

// EvaluateFor fetches the principal's map and evaluates one module.
// A super_admin never touches the store.
func (s *Service) EvaluateFor(ctx context.Context, p Principal, module string) (Decision, error) {
	module = strings.TrimSpace(module)
	if module == "" {
		return Decision{}, fmt.Errorf("%w: module is required", ErrInvalidInput)
	}
	if p.Role == RoleSuperAdmin {
		return Evaluate(p, module, nil), nil
	}
	m, err := s.AccessMap(ctx, p.ID)
	if err != nil {
		return Decision{}, err
	}
	return Evaluate(p, module, m), nil
}

// Upsert writes one grant row.
func (s *Service) Upsert(ctx context.Context, g Grant) error {
	g.PrincipalID = strings.TrimSpace(g.PrincipalID)
	g.Module = strings.TrimSpace(g.Module)
	g.SubDomain = strings.TrimSpace(g.SubDomain)
	if g.PrincipalID == "" || g.Module == "" {
		return fmt.Errorf("%w: principal_id and module are required", ErrInvalidInput)
	}
	if !g.Level.Valid() {
		return fmt.Errorf("%w: unknown access level %q", ErrInvalidInput, g.Level)
	}
	if err := s.store.Upsert(ctx, g); err != nil {
		return err
	}
	s.invalidate(ctx, g.PrincipalID)
	return nil
}

// Remove deletes one grant row.
func (s *Service) Remove(ctx context.Context, principalID, module string) error {
	principalID = strings.TrimSpace(principalID)
	module = strings.TrimSpace(module)
	if principalID == "" || module == "" {
		return fmt.Errorf("%w: principal_id and module are required", ErrInvalidInput)
	}
	if err := s.store.Remove(ctx, principalID, module); err != nil {
		return err
	}
	s.invalidate(ctx, principalID)
	return nil
}

// BulkReplace atomically swaps the full grant set of one principal.
func (s *Service) BulkReplace(ctx context.Context, principalID string, grants []Grant) error {
	principalID = strings.TrimSpace(principalID)
	if principalID == "" {
		return fmt.Errorf("%w: principal_id is required", ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(grants))
	cleaned := make([]Grant, 0, len(grants))
	for _, g := range grants {
		g.PrincipalID = principalID
		g.Module = strings.TrimSpace(g.Module)
		if g.Module == "" {
			return fmt.Errorf("%w: module is required", ErrInvalidInput)
		}
		if !g.Level.Valid() {
			return fmt.Errorf("%w: unknown access level %q", ErrInvalidInput, g.Level)
		}
		if _, dup := seen[g.Module]; dup {
			return fmt.Errorf("%w: duplicate module %q", ErrInvalidInput, g.Module)
		}
		seen[g.Module] = struct{}{}
		cleaned = append(cleaned, g)
	}
	if err := s.store.BulkReplace(ctx, principalID, cleaned); err != nil {
		return err
	}
	s.invalidate(ctx, principalID)
	return nil
}

// Provision expands the role defaults table for a freshly created principal
// into one bulk write. Roles with no table (super_admin included) are a
// no-op: nothing is written and no error is returned.
func (s *Service) Provision(ctx context.Context, principalID string, role Role) error {
	principalID = strings.TrimSpace(principalID)
	if principalID == "" {
		return fmt.Errorf("%w: principal_id is required", ErrInvalidInput)
	}
	if _, ok := knownRoles[role]; !ok {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	grants := DefaultGrants(principalID, role)
	if len(grants) == 0 {
		return nil
	}
	if err := s.store.BulkReplace(ctx, principalID, grants); err != nil {
		return err
	}
	s.invalidate(ctx, principalID)
	return nil
}

func (s *Service) invalidate(ctx context.Context, principalID string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, principalID)
	}
}
