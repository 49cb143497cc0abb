package auth

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"slices"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleSeller   Role = "Seller"
	RoleCustomer Role = "Customer"
)

// Principal is the resolved caller. Services receive it as an explicit argument.
type Principal struct {
	UserID   string
	UserName string
	Roles    []Role
}

func (p Principal) Has(r Role) bool { return slices.Contains(p.Roles, r) }
func (p Principal) IsAdmin() bool   { return p.Has(RoleAdmin) }

type User struct {
	ID           string    `json:"id"`
	UserName     string    `json:"userName"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	PasswordHash string    `json:"-"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u User) Principal() Principal {
	return Principal{UserID: u.ID, UserName: u.UserName, Roles: u.Roles}
}

var (
	ErrDuplicateEmail = errors.New("email already registered")
	ErrNoSession      = errors.New("session not found")
)

type UserStore interface {
	CreateUser(ctx context.Context, u *User) error // ErrDuplicateEmail on unique violation
	UserByID(ctx context.Context, id string) (*User, error)
	UserByEmail(ctx context.Context, email string) (*User, error)
	AddRole(ctx context.Context, userID string, r Role) error
}

type SessionStore interface {
	Save(ctx context.Context, token, userID string, ttl time.Duration) error
	Lookup(ctx context.Context, token string) (string, error) // ErrNoSession when unknown
}

type RegisterInput struct {
	UserName  string `json:"userName" validate:"required,min=3,max=50"`
	Email     string `json:"email" validate:"required,email,max=100"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	FirstName string `json:"firstName" validate:"max=50"`
	LastName  string `json:"lastName" validate:"max=50"`
}

type Service struct {
	users      UserStore
	sessions   SessionStore
	sessionTTL time.Duration
	bcryptCost int
	now        func() time.Time
}

func NewService(users UserStore, sessions SessionStore, sessionTTL time.Duration) *Service {
	return &Service{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		bcryptCost: 12,
		now:        time.Now,
	}
}

// WithBcryptCost lowers the hashing cost; tests use bcrypt.MinCost.
func (s *Service) WithBcryptCost(cost int) *Service {
	s.bcryptCost = cost
	return s
}

func (s *Service) Register(ctx context.Context, in RegisterInput, roles ...Role) (*User, error) {
	if !passwordStrongEnough(in.Password) {
		return nil, apperr.Validation("invalid request",
			"password must contain an upper-case letter, a lower-case letter and a digit")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		roles = []Role{RoleCustomer}
	}
	u := &User{
		ID:           uuid.NewString(),
		UserName:     in.UserName,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hash),
		Roles:        roles,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, apperr.BusinessRule("email %s is already registered", u.Email)
		}
		return nil, err
	}
	return u, nil
}

// Login checks the password and opens a session. The returned token is opaque.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	u, err := s.users.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", nil, apperr.Unauthorized("invalid credentials")
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", nil, apperr.Unauthorized("invalid credentials")
		}
		return "", nil, err
	}
	token := uuid.NewString()
	if err := s.sessions.Save(ctx, token, u.ID, s.sessionTTL); err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// Resolve maps a session token to a principal. Roles are read fresh from the user store so
// a seller approval takes effect without a new login.
func (s *Service) Resolve(ctx context.Context, token string) (Principal, error) {
	userID, err := s.sessions.Lookup(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return Principal{}, apperr.Unauthorized("session expired or invalid")
		}
		return Principal{}, err
	}
	u, err := s.users.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Principal{}, apperr.Unauthorized("session expired or invalid")
		}
		return Principal{}, err
	}
	return u.Principal(), nil
}

// GrantRole is used by the seller approval workflow.
func (s *Service) GrantRole(ctx context.Context, userID string, r Role) error {
	return s.users.AddRole(ctx, userID, r)
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	if _, err := s.users.UserByEmail(ctx, strings.ToLower(email)); err == nil {
		return false, nil
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return false, err
	}
	_, err := s.Register(ctx, RegisterInput{UserName: "admin", Email: email, Password: password}, RoleAdmin)
	if err != nil {
		return false, err
	}
	return true, nil
}

func passwordStrongEnough(p string) bool {
	var upper, lower, digit bool
	for _, r := range p {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return upper && lower && digit
}
