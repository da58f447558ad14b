package fakeuserrepo

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-exchange/internal/utils"
	"github.com/jrsteele09/go-auth-exchange/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users       map[string]*users.User
	emailIds    map[string]string // email to user id
	usernameIds map[string]string // username to user id
	lock        sync.RWMutex
	now         func() time.Time
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:       make(map[string]*users.User),
		emailIds:    make(map[string]string),
		usernameIds: make(map[string]string),
		now:         time.Now,
	}
}

func (ur *FakeUserRepo) Upsert(_ context.Context, user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	u := *user
	ur.users[u.ID] = &u
	if u.Email != "" {
		ur.emailIds[strings.ToLower(u.Email)] = u.ID
	}
	if u.Username != "" {
		ur.usernameIds[u.Username] = u.ID
	}
	return nil
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()
	return ur.get(id)
}

func (ur *FakeUserRepo) GetByUsername(_ context.Context, username string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()
	return ur.get(ur.usernameIds[username])
}

func (ur *FakeUserRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()
	return ur.get(ur.emailIds[strings.ToLower(email)])
}

func (ur *FakeUserRepo) FirstTimeUser(_ context.Context, id string) (bool, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()
	u, ok := ur.users[id]
	if !ok {
		return false, users.ErrNotFound
	}
	return u.LastLogin == nil, nil
}

func (ur *FakeUserRepo) UpdateLastLogin(_ context.Context, id string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()
	u, ok := ur.users[id]
	if !ok {
		return users.ErrNotFound
	}
	u.LastLogin = utils.Ptr(ur.now())
	return nil
}

func (ur *FakeUserRepo) UpdatePassword(_ context.Context, username, oldPassword, newPassword string) (*users.User, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()
	u, ok := ur.users[ur.usernameIds[username]]
	if !ok {
		return nil, nil
	}
	if !u.CheckPassword(oldPassword) {
		return nil, users.ErrPasswordMismatch
	}
	return ur.setPassword(u, newPassword)
}

func (ur *FakeUserRepo) ChangePassword(_ context.Context, username, newPassword string) (*users.User, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()
	u, ok := ur.users[ur.usernameIds[username]]
	if !ok {
		return nil, nil
	}
	return ur.setPassword(u, newPassword)
}

func (ur *FakeUserRepo) setPassword(u *users.User, password string) (*users.User, error) {
	hash, err := users.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash
	c := *u
	return &c, nil
}

func (ur *FakeUserRepo) get(id string) (*users.User, error) {
	u, ok := ur.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	c := *u
	return &c, nil
}
