package tenantrepofakes

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-exchange/tenants"
)

var _ tenants.Repo = (*FakeTenantRepo)(nil)

type FakeTenantRepo struct {
	memberships []*tenants.UserTenant
	lock        sync.RWMutex
}

func NewFakeTenantRepo() *FakeTenantRepo {
	return &FakeTenantRepo{}
}

func (tr *FakeTenantRepo) Upsert(_ context.Context, ut *tenants.UserTenant) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	if ut.ID == "" {
		ut.ID = uuid.New().String()
	}
	c := *ut
	for i, m := range tr.memberships {
		if m.UserID == ut.UserID && m.TenantID == ut.TenantID {
			tr.memberships[i] = &c
			return nil
		}
	}
	tr.memberships = append(tr.memberships, &c)
	return nil
}

func (tr *FakeTenantRepo) GetByUser(_ context.Context, userID string) (*tenants.UserTenant, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	for _, m := range tr.memberships {
		if m.UserID == userID {
			c := *m
			return &c, nil
		}
	}
	return nil, tenants.ErrNotFound
}

func (tr *FakeTenantRepo) Get(_ context.Context, userID, tenantID string) (*tenants.UserTenant, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	m := tr.find(userID, tenantID)
	if m == nil {
		return nil, tenants.ErrNotFound
	}
	c := *m
	return &c, nil
}

func (tr *FakeTenantRepo) SetStatus(_ context.Context, userID, tenantID string, status tenants.UserStatus) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	m := tr.find(userID, tenantID)
	if m == nil {
		return tenants.ErrNotFound
	}
	m.Status = status
	return nil
}

func (tr *FakeTenantRepo) find(userID, tenantID string) *tenants.UserTenant {
	for _, m := range tr.memberships {
		if m.UserID == userID && m.TenantID == tenantID {
			return m
		}
	}
	return nil
}
