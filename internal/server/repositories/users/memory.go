package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/userbase/internal/common"
	"github.com/dmitrijs2005/userbase/internal/server/models"
)

// MemoryRepository keeps users in process memory. It enforces the same
// unique-email rule as the users table and is safe for concurrent use.
type MemoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]models.User
	byEmail map[string]int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[int64]models.User),
		byEmail: make(map[string]int64),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return nil, common.ErrDuplicateEmail
	}

	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID

	return user, nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	u := r.byID[id]
	return &u, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.User, 0, len(r.byID))
	for id := int64(1); id <= r.nextID; id++ {
		if u, ok := r.byID[id]; ok {
			u.PasswordHash = ""
			out = append(out, u)
		}
	}
	return out, nil
}

// Delete removes a user; it exists for tests of tokens outliving their user.
func (r *MemoryRepository) Delete(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.byID[id]; ok {
		delete(r.byEmail, u.Email)
		delete(r.byID, id)
	}
}
