package rbac

import (
	"sort"
	"sync"

	"go-hris-leave/internal/domain"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	LoadPolicy() error
	Enforce(req domain.EnforceRequest) (bool, error)
	ListRoles() ([]domain.RoleResponse, error)
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   *zap.Logger
}

func NewService(repo Repository, enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{
		repo:     repo,
		enforcer: enforcer,
		logger:   l,
	}
}

func (s *service) LoadPolicy() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enforcer.ClearPolicy()

	inheritance, err := s.repo.GetRoleInheritance()
	if err != nil {
		return err
	}
	for _, ri := range inheritance {
		if _, err := s.enforcer.AddGroupingPolicy(ri.Role, ri.Inherits); err != nil {
			return err
		}
	}

	rolePerms, err := s.repo.GetRolePermissions()
	if err != nil {
		return err
	}
	for _, rp := range rolePerms {
		if _, err := s.enforcer.AddPolicy(rp.Role, rp.Resource, rp.Action); err != nil {
			return err
		}
	}

	s.logger.Info("rbac policy loaded",
		zap.Int("role_links", len(inheritance)),
		zap.Int("role_permissions", len(rolePerms)),
	)
	return nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	allowed, err := s.enforcer.Enforce(req.Role, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", req.Role),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("role", req.Role),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

func (s *service) ListRoles() ([]domain.RoleResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subjects, err := s.enforcer.GetAllSubjects()
	if err != nil {
		return nil, err
	}
	inherited, err := s.enforcer.GetAllRoles()
	if err != nil {
		return nil, err
	}

	roles := map[string]struct{}{}
	for _, r := range append(subjects, inherited...) {
		roles[r] = struct{}{}
	}
	names := make([]string, 0, len(roles))
	for r := range roles {
		names = append(names, r)
	}
	sort.Strings(names)

	out := make([]domain.RoleResponse, 0, len(names))
	for _, name := range names {
		inherits, err := s.enforcer.GetRolesForUser(name)
		if err != nil {
			return nil, err
		}
		perms, err := s.enforcer.GetImplicitPermissionsForUser(name)
		if err != nil {
			return nil, err
		}
		resp := domain.RoleResponse{Name: name, Inherits: inherits}
		for _, p := range perms {
			if len(p) < 3 {
				continue
			}
			resp.Permissions = append(resp.Permissions, domain.PermissionResponse{Resource: p[1], Action: p[2]})
		}
		sort.Slice(resp.Permissions, func(i, j int) bool {
			a, b := resp.Permissions[i], resp.Permissions[j]
			if a.Resource != b.Resource {
				return a.Resource < b.Resource
			}
			return a.Action < b.Action
		})
		out = append(out, resp)
	}
	return out, nil
}
