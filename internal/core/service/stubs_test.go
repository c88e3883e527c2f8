package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/clinichub/accounts-api/internal/core/domain"
	"github.com/clinichub/accounts-api/internal/core/ports"
)

// stubRoleRepo is an in-memory role table.
type stubRoleRepo struct {
	mu     sync.Mutex
	nextID int64
	roles  map[int64]string
}

func newStubRoleRepo() *stubRoleRepo {
	r := &stubRoleRepo{roles: make(map[int64]string)}
	for _, role := range domain.DefaultRoles() {
		r.roles[role.ID] = role.Name
		if role.ID > r.nextID {
			r.nextID = role.ID
		}
	}
	return r
}

func (r *stubRoleRepo) FindByID(_ context.Context, id int64) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.roles[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	return &domain.Role{ID: id, Name: name}, nil
}

func (r *stubRoleRepo) List(_ context.Context) ([]domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Role, 0, len(r.roles))
	for id, name := range r.roles {
		out = append(out, domain.Role{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubRoleRepo) Exists(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.roles[id]
	return ok, nil
}

func (r *stubRoleRepo) Create(_ context.Context, name string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.roles {
		if existing == name {
			return nil, domain.ErrRoleExists
		}
	}
	r.nextID++
	r.roles[r.nextID] = name
	return &domain.Role{ID: r.nextID, Name: name}, nil
}

func (r *stubRoleRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roles[id]; !ok {
		return domain.ErrRoleNotFound
	}
	delete(r.roles, id)
	return nil
}

func (r *stubRoleRepo) CountUsers(_ context.Context, _ int64) (int64, error) {
	return 0, nil
}

func (r *stubRoleRepo) Seed(_ context.Context, roles []domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, role := range roles {
		r.roles[role.ID] = role.Name
		if role.ID > r.nextID {
			r.nextID = role.ID
		}
	}
	return nil
}

// stubUserRepo is an in-memory user store mirroring the Mongo repository's
// contract: atomic email uniqueness and role re-validation on mutation.
type stubUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
	roles  *stubRoleRepo
}

func newStubUserRepo(roles *stubRoleRepo) *stubUserRepo {
	return &stubUserRepo{users: make(map[int64]*domain.User), roles: roles}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) roleExistsLocked(roleID int64) bool {
	if r.roles == nil {
		return true
	}
	r.roles.mu.Lock()
	defer r.roles.mu.Unlock()
	_, ok := r.roles.roles[roleID]
	return ok
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrDuplicateEmail
		}
	}
	if !r.roleExistsLocked(user.RoleID) {
		return nil, domain.ErrInvalidReference
	}
	r.nextID++
	created := cloneUser(user)
	created.ID = r.nextID
	r.users[created.ID] = created
	return cloneUser(created), nil
}

func (r *stubUserRepo) Update(_ context.Context, id int64, patch ports.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if patch.Email != nil {
		for otherID, other := range r.users {
			if otherID != id && other.Email == *patch.Email {
				return nil, domain.ErrDuplicateEmail
			}
		}
	}
	if patch.RoleID != nil && !r.roleExistsLocked(*patch.RoleID) {
		return nil, domain.ErrInvalidReference
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.SecretHash != nil {
		u.SecretHash = *patch.SecretHash
	}
	if patch.RoleID != nil {
		u.RoleID = *patch.RoleID
	}
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// stubLimiter records throttle calls and can be primed to deny.
type stubLimiter struct {
	mu     sync.Mutex
	deny   bool
	allows int
	resets int
}

func (l *stubLimiter) Allow(_ context.Context, _ string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.allows++
	return !l.deny, nil
}

func (l *stubLimiter) Reset(_ context.Context, _ string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resets++
	return nil
}
