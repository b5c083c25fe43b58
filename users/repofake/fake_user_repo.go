package fakeuserrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aibanker/go-aibanker/internal/errors"
	"github.com/aibanker/go-aibanker/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users     map[int64]*users.User
	emailIds  map[string]int64 // email to user id
	usernames map[string]int64 // username to user id
	nextID    int64
	lock      sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:     make(map[int64]*users.User),
		emailIds:  make(map[string]int64),
		usernames: make(map[string]int64),
		nextID:    1,
	}
}

func (ur *FakeUserRepo) Create(_ context.Context, user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if _, ok := ur.emailIds[user.Email]; ok {
		return errors.ErrEmailTaken
	}
	if _, ok := ur.usernames[user.Username]; ok {
		return errors.ErrUsernameTaken
	}

	user.ID = ur.nextID
	ur.nextID++
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	ur.users[user.ID] = user
	ur.emailIds[user.Email] = user.ID
	ur.usernames[user.Username] = user.ID
	return nil
}

func (ur *FakeUserRepo) Update(_ context.Context, user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	existing, ok := ur.users[user.ID]
	if !ok {
		return errors.ErrUserNotFound
	}
	delete(ur.emailIds, existing.Email)
	delete(ur.usernames, existing.Username)

	user.UpdatedAt = time.Now().UTC()
	ur.users[user.ID] = user
	ur.emailIds[user.Email] = user.ID
	ur.usernames[user.Username] = user.ID
	return nil
}

func (ur *FakeUserRepo) Delete(_ context.Context, id int64) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return errors.ErrUserNotFound
	}
	delete(ur.emailIds, user.Email)
	delete(ur.usernames, user.Username)
	delete(ur.users, id)
	return nil
}

func (ur *FakeUserRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIds[email]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	return ur.users[id], nil
}

func (ur *FakeUserRepo) GetByUsername(_ context.Context, username string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.usernames[username]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	return ur.users[id], nil
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id int64) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	if _, ok := ur.users[id]; !ok {
		return nil, errors.ErrUserNotFound
	}
	return ur.users[id], nil
}

func (ur *FakeUserRepo) List(_ context.Context, offset, limit int) ([]*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	userList := make([]*users.User, 0, len(ur.users))
	for _, v := range ur.users {
		userList = append(userList, v)
	}

	sort.Slice(userList, func(i, j int) bool {
		return userList[i].ID < userList[j].ID
	})

	return paginate(userList, offset, limit), nil
}

func (ur *FakeUserRepo) SetLastLogin(_ context.Context, id int64) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return errors.ErrUserNotFound
	}
	user.LastLogin = time.Now().UTC()
	return nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
