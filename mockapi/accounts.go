package mockapi

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jrsteele09/go-pos-client/shop"
	"golang.org/x/crypto/bcrypt"
)

var errAccountNotFound = errors.New("not found")

type storedAccount struct {
	user         shop.User
	passwordHash []byte
}

// accountRepo holds fixture users keyed by username with bcrypt hashed
// passwords.
type accountRepo struct {
	accounts map[string]*storedAccount
	lock     sync.RWMutex
}

func newAccountRepo(accounts []Account) (*accountRepo, error) {
	repo := &accountRepo{accounts: make(map[string]*storedAccount)}
	for _, a := range accounts {
		if err := repo.Upsert(a.User, a.Password); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

func (r *accountRepo) Upsert(user shop.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("[mockapi accounts] hash password: %w", err)
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	r.accounts[user.Username] = &storedAccount{user: user, passwordHash: hash}
	return nil
}

// Authenticate returns the user when username exists and password matches.
func (r *accountRepo) Authenticate(username, password string) (*shop.User, error) {
	r.lock.RLock()
	a, ok := r.accounts[username]
	r.lock.RUnlock()
	if !ok {
		return nil, errAccountNotFound
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return nil, err
	}
	user := a.user
	return &user, nil
}

func (r *accountRepo) GetByID(id int64) (*shop.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	for _, a := range r.accounts {
		if a.user.ID == id {
			user := a.user
			return &user, nil
		}
	}
	return nil, errAccountNotFound
}
