package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/yukikurage/employee-management/internal/forms"
	"github.com/yukikurage/employee-management/internal/models"
	"github.com/yukikurage/employee-management/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAdminSignupDisabled  = errors.New("admin accounts cannot be self-registered")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToCreateUser   = errors.New("failed to create user")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo         repository.UserRepository
	allowAdminSignup bool

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService creates a new AuthService. allowAdminSignup decides whether
// the registration form may create admin accounts.
func NewAuthService(userRepo repository.UserRepository, allowAdminSignup bool) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		allowAdminSignup: allowAdminSignup,
	}
}

// AllowAdminSignup reports the self-service admin policy.
func (s *AuthService) AllowAdminSignup() bool {
	return s.allowAdminSignup
}

// Register creates a new account. The email is checked before any write; the
// unique index settles concurrent registrations of the same email.
func (s *AuthService) Register(input forms.Registration) (*models.User, error) {
	if input.IsAdmin && !s.allowAdminSignup {
		return nil, ErrAdminSignupDisabled
	}

	if _, err := s.userRepo.FindByEmail(input.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	user := &models.User{
		Name:    input.Name,
		Email:   input.Email,
		IsAdmin: input.IsAdmin,
	}
	if err := user.SetPassword(input.Password); err != nil {
		return nil, ErrFailedToHashPassword
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateUser, err)
	}

	return user, nil
}

// Login verifies credentials and returns the authenticated user. Unknown
// emails still pay for one bcrypt comparison so both failure paths take the
// same time and return the same error.
func (s *AuthService) Login(input forms.Login) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.compareDummy(input.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !user.CheckPassword(input.Password) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// CreateAdmin creates an admin account, or promotes the account that already
// uses the email. It is the operator path for bootstrapping admins when
// self-service admin registration is off. created is false on promotion.
func (s *AuthService) CreateAdmin(input forms.Registration) (user *models.User, created bool, err error) {
	existing, err := s.userRepo.FindByEmail(input.Email)
	switch {
	case err == nil:
		existing.IsAdmin = true
		if err := s.userRepo.Update(existing); err != nil {
			return nil, false, fmt.Errorf("failed to promote user: %w", err)
		}
		return existing, false, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, false, fmt.Errorf("failed to check email: %w", err)
	}

	user = &models.User{Name: input.Name, Email: input.Email, IsAdmin: true}
	if err := user.SetPassword(input.Password); err != nil {
		return nil, false, ErrFailedToHashPassword
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, false, ErrEmailTaken
		}
		return nil, false, fmt.Errorf("%w: %v", ErrFailedToCreateUser, err)
	}
	return user, true, nil
}

func (s *AuthService) compareDummy(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
}
