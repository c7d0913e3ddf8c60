package auth

import (
	"testing"

	"campuspay/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) IncrementTokenVersion(userID uint) error {
	args := m.Called(userID)
	return args.Error(0)
}

func testUser(t *testing.T, password string) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Email:        "staff@school.test",
		Password:     string(hashed),
		Name:         "Staff",
		Role:         "staff",
		TokenVersion: 1,
	}
	user.ID = 1
	return user
}

func TestAuthService_Login(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	t.Run("valid credentials", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := testUser(t, "correct-horse")
		repo.On("GetByEmail", user.Email).Return(user, nil)
		repo.On("Update", mock.Anything).Return(nil)

		svc := NewService(repo)
		got, access, refresh, err := svc.Login(user.Email, "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, user.Email, got.Email)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
		repo.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := testUser(t, "correct-horse")
		repo.On("GetByEmail", user.Email).Return(user, nil)

		svc := NewService(repo)
		_, _, _, err := svc.Login(user.Email, "battery-staple")
		assert.EqualError(t, err, "invalid credentials")
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByEmail", "nobody@school.test").Return(nil, assert.AnError)

		svc := NewService(repo)
		_, _, _, err := svc.Login("nobody@school.test", "whatever")
		assert.EqualError(t, err, "invalid credentials")
	})
}

func TestAuthService_RefreshTokens(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	t.Run("logout invalidates outstanding refresh tokens", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := testUser(t, "correct-horse")
		repo.On("GetByEmail", user.Email).Return(user, nil)
		repo.On("Update", mock.Anything).Return(nil)

		svc := NewService(repo)
		_, _, refresh, err := svc.Login(user.Email, "correct-horse")
		require.NoError(t, err)

		// Token version moved on after logout.
		bumped := *user
		bumped.TokenVersion = 2
		repo.On("GetByID", user.ID).Return(&bumped, nil)

		_, _, err = svc.RefreshTokens(refresh)
		assert.EqualError(t, err, "token version mismatch")
	})

	t.Run("garbage token", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewService(repo)
		_, _, err := svc.RefreshTokens("not-a-jwt")
		assert.EqualError(t, err, "invalid refresh token")
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	t.Run("rejects short passwords", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := testUser(t, "correct-horse")
		repo.On("GetByID", user.ID).Return(user, nil)

		svc := NewService(repo)
		err := svc.ChangePassword(user.ID, "correct-horse", "short")
		assert.EqualError(t, err, "password must be at least 8 characters")
	})

	t.Run("updates the stored hash", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := testUser(t, "correct-horse")
		repo.On("GetByID", user.ID).Return(user, nil)
		repo.On("Update", mock.MatchedBy(func(u *models.User) bool {
			return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("new-password-1")) == nil
		})).Return(nil)

		svc := NewService(repo)
		err := svc.ChangePassword(user.ID, "correct-horse", "new-password-1")
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}
