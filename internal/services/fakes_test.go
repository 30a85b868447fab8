package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"paper-system/internal/authz"
	"paper-system/internal/entities"
	"paper-system/internal/repositories"
	apperrors "paper-system/pkg/errors"
	"paper-system/pkg/eventbus"
	"paper-system/pkg/types"
	"paper-system/pkg/utils"
)

// fakeCache хранит сроки ключей; expireErr имитирует сбой Expire.
type fakeCache struct {
	mu        sync.Mutex
	data      map[string]string
	ttl       map[string]time.Duration
	expireErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string), ttl: make(map[string]time.Duration)}
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setTTL(key, expiration)
	switch v := value.(type) {
	case []byte:
		c.data[key] = string(v)
	default:
		c.data[key] = fmt.Sprint(v)
	}
	return nil
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", repositories.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		delete(c.ttl, k)
	}
	return nil
}

func (c *fakeCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, _ := strconv.ParseInt(c.data[key], 10, 64)
	n++
	c.data[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (c *fakeCache) Expire(_ context.Context, key string, expiration time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expireErr != nil {
		return false, c.expireErr
	}
	if _, ok := c.data[key]; !ok {
		return false, nil
	}
	c.ttl[key] = expiration
	return true, nil
}

// TTL повторяет ответы Redis: -2 для отсутствующего ключа, -1 для ключа без срока.
func (c *fakeCache) TTL(_ context.Context, key string) (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data[key]; !ok {
		return -2, nil
	}
	if ttl, ok := c.ttl[key]; ok {
		return ttl, nil
	}
	return -1, nil
}

func (c *fakeCache) setTTL(key string, expiration time.Duration) {
	if expiration > 0 {
		c.ttl[key] = expiration
	} else {
		delete(c.ttl, key)
	}
}

func (c *fakeCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

func (c *fakeCache) SetNX(_ context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data[key]; ok {
		return false, nil
	}
	c.data[key] = fmt.Sprint(value)
	c.setTTL(key, expiration)
	return true, nil
}

func (c *fakeCache) has(key string) bool {
	ok, _ := c.Exists(context.Background(), key)
	return ok
}

type fakeUserRepo struct {
	mu          sync.Mutex
	users       map[uint64]*entities.User
	lookups     int
	passwordSet map[uint64]string
}

func newFakeUserRepo(users ...*entities.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uint64]*entities.User), passwordSet: make(map[uint64]string)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) GetUsers(context.Context, authz.Scope, types.Filter) ([]entities.User, uint64, error) {
	return nil, 0, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uint64) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	return err == nil, nil
}

func (r *fakeUserRepo) Create(_ context.Context, u *entities.User) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = uint64(len(r.users) + 100)
	r.users[u.ID] = u
	return u, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, id uint64, cmd repositories.UserUpdate) (*entities.User, error) {
	r.mu.Lock()
	u, ok := r.users[id]
	if ok {
		if cmd.Name.Valid {
			u.Name = cmd.Name.String
		}
		if cmd.Phone.Valid {
			u.Phone = cmd.Phone.String
		}
		if cmd.Role.Valid {
			u.Role = cmd.Role.String
		}
	}
	r.mu.Unlock()
	return r.FindByID(ctx, id)
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uint64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.passwordSet[id] = hash
	return nil
}

func (r *fakeUserRepo) TouchLastLogin(context.Context, uint64, time.Time) error { return nil }

func (r *fakeUserRepo) Delete(context.Context, uint64) error { return nil }

func (r *fakeUserRepo) BatchUpdateStatus(_ context.Context, ids []uint64, _ string) (int64, error) {
	return int64(len(ids)), nil
}

func (r *fakeUserRepo) CountByStatus(context.Context) (map[string]uint64, error) {
	return map[string]uint64{entities.UserStatusActive: uint64(len(r.users))}, nil
}

func (r *fakeUserRepo) lookupCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookups
}

type fakePaperRepo struct {
	mu          sync.Mutex
	papers      map[uint64]*entities.Paper
	lastUpdate  repositories.PaperUpdate
	deleted     []uint64
	batchErr    error
	batchCalled bool
}

func newFakePaperRepo(papers ...*entities.Paper) *fakePaperRepo {
	r := &fakePaperRepo{papers: make(map[uint64]*entities.Paper)}
	for _, p := range papers {
		r.papers[p.ID] = p
	}
	return r
}

func (r *fakePaperRepo) GetPapers(context.Context, authz.Scope, types.Filter) ([]entities.Paper, uint64, error) {
	return nil, 0, nil
}

func (r *fakePaperRepo) CountPapers(context.Context, authz.Scope, types.Filter) (entities.PaperCounts, error) {
	return entities.NewPaperCounts(), nil
}

func (r *fakePaperRepo) FindByID(_ context.Context, id uint64) (*entities.Paper, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.papers[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePaperRepo) Create(_ context.Context, p *entities.Paper) (*entities.Paper, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uint64(len(r.papers) + 1)
	r.papers[p.ID] = p
	return p, nil
}

func (r *fakePaperRepo) Update(ctx context.Context, id uint64, cmd repositories.PaperUpdate) (*entities.Paper, error) {
	r.mu.Lock()
	r.lastUpdate = cmd
	r.mu.Unlock()
	return r.FindByID(ctx, id)
}

func (r *fakePaperRepo) Submit(ctx context.Context, id, ownerID uint64) (*entities.Paper, error) {
	r.mu.Lock()
	p, ok := r.papers[id]
	if ok && p.UserID == ownerID && p.Status == entities.PaperStatusDraft {
		p.Status = entities.PaperStatusPending
	}
	r.mu.Unlock()
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

// Audit повторяет условное обновление: только из pending.
func (r *fakePaperRepo) Audit(_ context.Context, id uint64, cmd repositories.AuditCommand) (*entities.Paper, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.papers[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if p.Status != entities.PaperStatusPending {
		return nil, apperrors.NewInvalidStateError("не pending")
	}
	p.Status = cmd.Status
	p.AuditorID = &cmd.AuditorID
	cp := *p
	return &cp, nil
}

func (r *fakePaperRepo) BatchAuditInTx(_ context.Context, _ pgx.Tx, ids []uint64, _ repositories.AuditCommand) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batchCalled = true
	if r.batchErr != nil {
		return 0, r.batchErr
	}
	return int64(len(ids)), nil
}

func (r *fakePaperRepo) AttachFile(context.Context, uint64, string, string, int64) (*string, error) {
	return nil, nil
}

func (r *fakePaperRepo) Delete(_ context.Context, id uint64) (*string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.papers[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if p.Status == entities.PaperStatusApproved {
		return nil, apperrors.NewInvalidStateError("approved")
	}
	delete(r.papers, id)
	r.deleted = append(r.deleted, id)
	return p.FilePath, nil
}

// fakeTxManager вызывает fn без реальной транзакции и считает откаты.
type fakeTxManager struct {
	rollbacks int
	commits   int
}

func (m *fakeTxManager) RunInTransaction(_ context.Context, fn func(tx pgx.Tx) error) error {
	if err := fn(nil); err != nil {
		m.rollbacks++
		return err
	}
	m.commits++
	return nil
}

func newBase(cache repositories.CacheRepositoryInterface) *BaseService {
	return NewBaseService(cache, eventbus.New(zap.NewNop()), zap.NewNop())
}

func ctxAs(p *authz.Principal) context.Context {
	return utils.ContextWithPrincipal(context.Background(), p)
}
