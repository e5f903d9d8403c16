package mockapi

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prohmpiriya/ecom-storefront/internal/domain"
)

type account struct {
	domain.User
	PasswordHash []byte
}

type otpEntry struct {
	code      string
	expiresAt time.Time
}

// memoryStore keeps every record of the mock API in process memory
type memoryStore struct {
	mu sync.RWMutex

	users      map[int64]*account
	products   map[int64]*domain.Product
	categories map[int64]*domain.Category
	otps       map[string]otpEntry

	nextUserID     int64
	nextProductID  int64
	nextCategoryID int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:      make(map[int64]*account),
		products:   make(map[int64]*domain.Product),
		categories: make(map[int64]*domain.Category),
		otps:       make(map[string]otpEntry),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// --- users ---

func (s *memoryStore) userByEmail(email string) (account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := emailKey(email)
	for _, a := range s.users {
		if emailKey(a.Email) == key {
			return *a, true
		}
	}
	return account{}, false
}

func (s *memoryStore) userByID(id int64) (account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.users[id]
	if !ok {
		return account{}, false
	}
	return *a, true
}

// insertUser fails with ErrEmailTaken when the email is already registered
func (s *memoryStore) insertUser(a account) (account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := emailKey(a.Email)
	for _, existing := range s.users {
		if emailKey(existing.Email) == key {
			return account{}, domain.ErrEmailTaken
		}
	}
	s.nextUserID++
	a.ID = s.nextUserID
	s.users[a.ID] = &a
	return a, nil
}

func (s *memoryStore) updateUser(id int64, fn func(a *account)) (account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.users[id]
	if !ok {
		return account{}, domain.ErrUserNotFound
	}
	fn(a)
	return *a, nil
}

func (s *memoryStore) listUsers() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.users))
	for _, a := range s.users {
		out = append(out, a.User)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// --- otps ---

func (s *memoryStore) putOTP(email, code string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.otps[emailKey(email)] = otpEntry{code: code, expiresAt: expiresAt}
}

// takeOTP consumes the otp of email when it matches and has not expired
func (s *memoryStore) takeOTP(email, code string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := emailKey(email)
	e, ok := s.otps[key]
	if !ok || e.code != code || now.After(e.expiresAt) {
		return false
	}
	delete(s.otps, key)
	return true
}

func (s *memoryStore) peekOTP(email string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.otps[emailKey(email)]
	return e.code, ok
}

// --- categories ---

func (s *memoryStore) insertCategory(c domain.Category) domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCategoryID++
	c.ID = s.nextCategoryID
	s.categories[c.ID] = &c
	return c
}

func (s *memoryStore) category(id int64) (domain.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return domain.Category{}, false
	}
	return *c, true
}

func (s *memoryStore) updateCategory(id int64, fn func(c *domain.Category)) (domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	fn(c)
	return *c, nil
}

func (s *memoryStore) listCategories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// --- products ---

func (s *memoryStore) insertProduct(build func(id int64) domain.Product) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextProductID++
	p := build(s.nextProductID)
	s.products[p.ID] = &p
	return p
}

func (s *memoryStore) product(id int64) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, false
	}
	return *p, true
}

// updateProduct applies fn under the write lock; fn may veto with an error
func (s *memoryStore) updateProduct(id int64, fn func(p *domain.Product) error) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	next := *p
	if err := fn(&next); err != nil {
		return domain.Product{}, err
	}
	*p = next
	return next, nil
}

func (s *memoryStore) listProducts(keep func(p *domain.Product) bool) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, 0)
	for _, p := range s.products {
		if keep(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}
