package store

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/JFR35/pdaw-client/internal/model"
	"github.com/JFR35/pdaw-client/internal/transport"
	"github.com/JFR35/pdaw-client/pkg/apierror"
)

// UserStore manages administrator-facing accounts. Unlike the document
// stores it works with flat user objects; role normalization happens in
// the model decoder so both wire shapes land as model.Role.
type UserStore struct {
	tracker

	gw  *transport.Gateway
	log zerolog.Logger

	cacheMu sync.RWMutex
	users   []model.User
}

func NewUserStore(gw *transport.Gateway, log zerolog.Logger) *UserStore {
	return &UserStore{
		gw:  gw,
		log: log.With().Str("store", "user").Logger(),
	}
}

// LoadMedics fetches all users and keeps only practitioner accounts,
// the set the admin area assigns clinical work to.
func (s *UserStore) LoadMedics(ctx context.Context) error {
	s.begin()
	defer s.end()

	var all []model.User
	if err := s.gw.Get(ctx, "/users", nil, &all, "failed to load users"); err != nil {
		s.fail(errMessage(err))
		return err
	}

	medics := make([]model.User, 0, len(all))
	for _, u := range all {
		if u.HasRole(model.RolePractitioner) {
			medics = append(medics, u)
		}
	}

	s.cacheMu.Lock()
	s.users = medics
	s.cacheMu.Unlock()
	return nil
}

// Create registers a new account. Failures propagate so the admin view
// can block on them.
func (s *UserStore) Create(ctx context.Context, user model.User) (*model.User, error) {
	s.begin()
	defer s.end()

	if fields := model.ValidateDocument(&user); len(fields) > 0 {
		err := apierror.Validation(fields)
		s.fail(err.Message)
		return nil, err
	}

	var created model.User
	if err := s.gw.Post(ctx, "/users", nil, user, &created, "failed to create user"); err != nil {
		s.fail(errMessage(err))
		return nil, err
	}

	s.cacheMu.Lock()
	s.users = append(s.users, created)
	s.cacheMu.Unlock()
	return &created, nil
}

func (s *UserStore) Update(ctx context.Context, user model.User) (*model.User, error) {
	s.begin()
	defer s.end()

	if user.UserID == 0 {
		err := apierror.Validation([]string{"user id is required for update"})
		s.fail(err.Message)
		return nil, err
	}
	if fields := model.ValidateDocument(&user); len(fields) > 0 {
		err := apierror.Validation(fields)
		s.fail(err.Message)
		return nil, err
	}

	key := strconv.FormatInt(user.UserID, 10)
	if !s.acquire(key) {
		err := apierror.Conflict(key)
		s.fail(err.Message)
		return nil, err
	}
	defer s.release(key)

	var updated model.User
	if err := s.gw.Put(ctx, "/users/"+key, user, &updated, "failed to update user"); err != nil {
		s.fail(errMessage(err))
		return nil, err
	}

	s.cacheMu.Lock()
	for i := range s.users {
		if s.users[i].UserID == user.UserID {
			s.users[i] = updated
			break
		}
	}
	s.cacheMu.Unlock()
	return &updated, nil
}

func (s *UserStore) Delete(ctx context.Context, userID int64) error {
	s.begin()
	defer s.end()

	key := strconv.FormatInt(userID, 10)
	if !s.acquire(key) {
		err := apierror.Conflict(key)
		s.fail(err.Message)
		return err
	}
	defer s.release(key)

	if err := s.gw.Delete(ctx, "/users/"+key,
		fmt.Sprintf("failed to delete user %d", userID)); err != nil {
		s.fail(errMessage(err))
		return err
	}

	s.cacheMu.Lock()
	kept := s.users[:0]
	for _, u := range s.users {
		if u.UserID != userID {
			kept = append(kept, u)
		}
	}
	s.users = kept
	s.cacheMu.Unlock()
	return nil
}

// Users returns a copy of the cached accounts.
func (s *UserStore) Users() []model.User {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	out := make([]model.User, len(s.users))
	copy(out, s.users)
	return out
}
