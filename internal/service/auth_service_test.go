package service

import (
	"context"
	"testing"
	"time"

	"fieldsync-server/internal/domain"
	"fieldsync-server/internal/repository"
	"fieldsync-server/pkg/hash"
	"fieldsync-server/pkg/jwt"
)

type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	return err == nil, nil
}

func (m *mockUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	for _, user := range m.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func TestAuthService_Register(t *testing.T) {
	repo := newMockUserRepository()
	service := NewAuthService(repo, "test-secret", 15*time.Minute, 7*24*time.Hour)

	tests := []struct {
		name    string
		req     *domain.RegisterRequest
		wantErr bool
		setup   func()
	}{
		{
			name: "successful registration",
			req: &domain.RegisterRequest{
				Username: "newuser",
				Email:    "new@example.com",
				Password: "Password123!",
			},
			wantErr: false,
			setup:   func() {},
		},
		{
			name: "duplicate email",
			req: &domain.RegisterRequest{
				Username: "anotheruser",
				Email:    "existing@example.com",
				Password: "Password123!",
			},
			wantErr: true,
			setup: func() {
				hashedPw, _ := hash.Hash("ExistingPass123!")
				repo.Create(context.Background(), &domain.User{
					ID:       "existing-id",
					Username: "existinguser",
					Email:    "existing@example.com",
					Password: hashedPw,
				})
			},
		},
		{
			name: "duplicate username",
			req: &domain.RegisterRequest{
				Username: "duplicateuser",
				Email:    "unique@example.com",
				Password: "Password123!",
			},
			wantErr: true,
			setup: func() {
				hashedPw, _ := hash.Hash("Pass123!")
				repo.Create(context.Background(), &domain.User{
					ID:       "dup-id",
					Username: "duplicateuser",
					Email:    "other@example.com",
					Password: hashedPw,
				})
			},
		},
		{
			name: "weak password",
			req: &domain.RegisterRequest{
				Username: "testuser",
				Email:    "test@example.com",
				Password: "weak",
			},
			wantErr: true,
			setup:   func() {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo.users = make(map[string]*domain.User)
			tt.setup()

			err := service.Register(context.Background(), tt.req)

			if tt.wantErr {
				if err == nil {
					t.Error("Register() expected error but got none")
				}
			} else {
				if err != nil {
					t.Errorf("Register() unexpected error = %v", err)
				}

				exists, _ := repo.EmailExists(context.Background(), tt.req.Email)
				if !exists {
					t.Error("Register() user not created in repository")
				}
			}
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	repo := newMockUserRepository()
	service := NewAuthService(repo, "test-secret-key", 15*time.Minute, 7*24*time.Hour)

	password := "UserPassword123!"
	hashedPassword, _ := hash.Hash(password)

	repo.Create(context.Background(), &domain.User{
		ID:       "test-user-id",
		Username: "testuser",
		Email:    "test@example.com",
		Password: hashedPassword,
	})

	tests := []struct {
		name    string
		req     *domain.LoginRequest
		wantErr bool
	}{
		{
			name: "successful login",
			req: &domain.LoginRequest{
				Email:    "test@example.com",
				Password: password,
			},
			wantErr: false,
		},
		{
			name: "wrong password",
			req: &domain.LoginRequest{
				Email:    "test@example.com",
				Password: "WrongPassword",
			},
			wantErr: true,
		},
		{
			name: "non-existent email",
			req: &domain.LoginRequest{
				Email:    "nonexistent@example.com",
				Password: password,
			},
			wantErr: true,
		},
		{
			name: "empty password",
			req: &domain.LoginRequest{
				Email:    "test@example.com",
				Password: "",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := service.Login(context.Background(), tt.req)

			if tt.wantErr {
				if err == nil {
					t.Error("Login() expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("Login() unexpected error = %v", err)
				return
			}

			if resp.AccessToken == "" {
				t.Error("Login() returned empty access token")
			}

			if resp.RefreshToken == "" {
				t.Error("Login() returned empty refresh token")
			}

			if resp.User == nil {
				t.Error("Login() returned nil user")
			}

			if resp.User.Password != "" {
				t.Error("Login() returned user with password (security issue)")
			}

			if resp.ExpiresIn != int64(15*time.Minute.Seconds()) {
				t.Errorf("Login() expiresIn = %v, want %v", resp.ExpiresIn, 15*60)
			}
		})
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	repo := newMockUserRepository()
	secret := "refresh-test-secret-key"
	service := NewAuthService(repo, secret, 15*time.Minute, 7*24*time.Hour)

	repo.Create(context.Background(), &domain.User{
		ID:       "refresh-user-id",
		Username: "refreshuser",
		Email:    "refresh@example.com",
		Password: "hashed",
	})

	validToken, _ := jwt.GenerateRefreshToken("refresh-user-id", 7*24*time.Hour, secret)
	expiredToken, _ := jwt.GenerateRefreshToken("refresh-user-id", -1*time.Hour, secret)

	tests := []struct {
		name    string
		req     *domain.RefreshTokenRequest
		wantErr bool
	}{
		{
			name: "valid refresh token",
			req: &domain.RefreshTokenRequest{
				RefreshToken: validToken,
			},
			wantErr: false,
		},
		{
			name: "expired refresh token",
			req: &domain.RefreshTokenRequest{
				RefreshToken: expiredToken,
			},
			wantErr: true,
		},
		{
			name: "invalid refresh token",
			req: &domain.RefreshTokenRequest{
				RefreshToken: "invalid.token.here",
			},
			wantErr: true,
		},
		{
			name: "empty refresh token",
			req: &domain.RefreshTokenRequest{
				RefreshToken: "",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := service.RefreshToken(context.Background(), tt.req)

			if tt.wantErr {
				if err == nil {
					t.Error("RefreshToken() expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("RefreshToken() unexpected error = %v", err)
				return
			}

			if resp.AccessToken == "" {
				t.Error("RefreshToken() returned empty access token")
			}

			if resp.ExpiresIn != int64(15*time.Minute.Seconds()) {
				t.Errorf("RefreshToken() expiresIn = %v, want %v", resp.ExpiresIn, 15*60)
			}
		})
	}
}
