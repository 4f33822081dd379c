// File: database/repository/user/user_memory.go
package userRepo

import (
	"strings"
	"sync"
	"time"

	"roombooking/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MemoryUserRepo implements UserRepository in process memory.
type MemoryUserRepo struct {
	mu     sync.RWMutex
	byID   map[string]*models.User
	byName map[string]string
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		byID:   make(map[string]*models.User),
		byName: make(map[string]string),
	}
}

func (r *MemoryUserRepo) GetByID(id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// GetByUsername matches case-insensitively.
func (r *MemoryUserRepo) GetByUsername(username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[strings.ToLower(username)]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *MemoryUserRepo) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(user.Username)
	if _, taken := r.byName[key]; taken {
		return ErrUserExists
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now()
	cp := *user
	r.byID[user.ID] = &cp
	r.byName[key] = user.ID
	return nil
}

// Seed registers username with a bcrypt hash of password.
func Seed(repo UserRepository, username, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{Username: username, PasswordHash: string(hash)}
	if err := repo.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}
