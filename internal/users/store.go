package users

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/alfagnish/simple-crud/internal/logging"
	"go.opentelemetry.io/otel/attribute"
)

// Store is the in-memory, ordered collection of users. All public methods
// are safe for concurrent use; each one runs atomically with respect to the
// others.
type Store struct {
	mu     sync.RWMutex
	users  []User
	nextID int
	seed   []User

	uniqueEmailOnUpdate bool

	logger *slog.Logger
	obs    observer
	pub    Publisher
}

// NewStore creates a Store holding a copy of seed. The id counter starts one
// above the highest seeded id.
func NewStore(seed []User, opts ...Option) (*Store, error) {
	if err := validateSeed(seed); err != nil {
		return nil, err
	}

	s := &Store{
		seed:   slices.Clone(seed),
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load()
	return s, nil
}

func validateSeed(seed []User) error {
	ids := make(map[int]bool, len(seed))
	emails := make(map[string]bool, len(seed))
	for i, u := range seed {
		if u.ID <= 0 {
			return fmt.Errorf("seed user at index %d: id must be positive, got %d", i, u.ID)
		}
		if u.Name == "" || u.Email == "" {
			return fmt.Errorf("seed user at index %d: name and email are required", i)
		}
		if ids[u.ID] {
			return fmt.Errorf("duplicate ID %d in seed data at index %d", u.ID, i)
		}
		if emails[u.Email] {
			return fmt.Errorf("duplicate email %q in seed data at index %d", u.Email, i)
		}
		ids[u.ID] = true
		emails[u.Email] = true
	}
	return nil
}

// load resets users and nextID from the seed. Caller must hold mu or own s.
func (s *Store) load() {
	s.users = slices.Clone(s.seed)
	if s.users == nil {
		s.users = make([]User, 0)
	}
	s.nextID = 1
	for _, u := range s.seed {
		if u.ID >= s.nextID {
			s.nextID = u.ID + 1
		}
	}
}

// List returns every user in insertion order.
func (s *Store) List(ctx context.Context) []User {
	_, done := s.obs.start(ctx, "list")
	s.mu.RLock()
	out := slices.Clone(s.users)
	s.mu.RUnlock()
	if out == nil {
		out = make([]User, 0)
	}

	s.logger.Debug("listed users", "count", len(out))
	done(nil)
	return out
}

// Get returns the user with the given id.
func (s *Store) Get(ctx context.Context, id int) (User, error) {
	_, done := s.obs.start(ctx, "get", attribute.Int("user.id", id))
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		done(ErrNotFound)
		return User{}, ErrNotFound
	}
	s.logger.Debug("fetched user", "id", id)
	done(nil)
	return s.users[i], nil
}

// Create validates in, allocates the next id and appends the new user.
func (s *Store) Create(ctx context.Context, in Input) (User, error) {
	_, done := s.obs.start(ctx, "create")
	s.mu.Lock()
	defer s.mu.Unlock()

	name, okName := in.name()
	email, okEmail := in.email()
	age, okAge := in.age()
	if !okName || !okEmail || !okAge {
		err := &ValidationError{Message: MsgRequired}
		done(err)
		return User{}, err
	}

	if s.emailTaken(email, 0) {
		done(ErrDuplicateEmail)
		return User{}, ErrDuplicateEmail
	}

	u := User{ID: s.nextID, Name: name, Email: email, Age: age}
	s.nextID++
	s.users = append(s.users, u)

	s.logger.Info("created user", "id", u.ID, "name", u.Name)
	s.publish(EventCreated, u)
	done(nil)
	return u, nil
}

// Update overwrites the provided fields of the user with the given id.
// Fields absent from in are left unchanged.
func (s *Store) Update(ctx context.Context, id int, in Input) (User, error) {
	_, done := s.obs.start(ctx, "update", attribute.Int("user.id", id))
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		done(ErrNotFound)
		return User{}, ErrNotFound
	}

	email, okEmail := in.email()
	if okEmail && s.uniqueEmailOnUpdate && s.emailTaken(email, id) {
		done(ErrDuplicateEmail)
		return User{}, ErrDuplicateEmail
	}

	u := &s.users[i]
	if name, ok := in.name(); ok {
		u.Name = name
	}
	if okEmail {
		u.Email = email
	}
	if age, ok := in.age(); ok {
		u.Age = age
	}

	s.logger.Info("updated user", "id", id)
	s.publish(EventUpdated, *u)
	done(nil)
	return *u, nil
}

// Delete removes the user with the given id and returns the removed record.
// The id is never handed out again.
func (s *Store) Delete(ctx context.Context, id int) (User, error) {
	_, done := s.obs.start(ctx, "delete", attribute.Int("user.id", id))
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		done(ErrNotFound)
		return User{}, ErrNotFound
	}
	removed := s.users[i]
	s.users = slices.Delete(s.users, i, i+1)

	s.logger.Info("deleted user", "id", id)
	s.publish(EventDeleted, removed)
	done(nil)
	return removed, nil
}

// Reset restores the seed data. The id counter keeps its current value so ids
// handed out before the reset are not reused. It returns the number of users
// after the reset.
func (s *Store) Reset(ctx context.Context) int {
	_, done := s.obs.start(ctx, "reset")
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.nextID
	s.load()
	s.nextID = max(s.nextID, next)
	n := len(s.users)

	s.logger.Info("store reset to seed data", "count", n)
	s.publish(EventReset, map[string]int{"count": n})
	done(nil)
	return n
}

// Count returns the number of users currently stored.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *Store) indexOf(id int) int {
	return slices.IndexFunc(s.users, func(u User) bool { return u.ID == id })
}

// emailTaken reports whether a user other than exceptID has email.
func (s *Store) emailTaken(email string, exceptID int) bool {
	return slices.ContainsFunc(s.users, func(u User) bool {
		return u.Email == email && u.ID != exceptID
	})
}

func (s *Store) publish(eventType string, data any) {
	if s.pub != nil {
		s.pub.Publish(eventType, data)
	}
}
