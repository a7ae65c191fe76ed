package service

import (
	"context"
	"time"

	"poultryops/internal/apierror"
	"poultryops/internal/dto"
	"poultryops/internal/model"
	"poultryops/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, req dto.RefreshRequest) (*dto.TokenResponse, error)
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	ListUsers(ctx context.Context) ([]dto.UserResponse, error)
}

type authService struct {
	users         repository.UserRepository
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewAuthService(users repository.UserRepository, secret string, accessHours, refreshHours int) AuthService {
	return &authService{
		users:         users,
		secret:        []byte(secret),
		accessExpiry:  time.Duration(accessHours) * time.Hour,
		refreshExpiry: time.Duration(refreshHours) * time.Hour,
	}
}

// Claims carried by both access and refresh tokens. The kind claim keeps a
// refresh token from passing as an access token.
type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	Kind   string `json:"kind"` // access | refresh
	jwt.RegisteredClaims
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
	u, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, apierror.Validation("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, apierror.Validation("invalid credentials")
	}
	return s.issueTokens(u)
}

func (s *authService) Refresh(ctx context.Context, req dto.RefreshRequest) (*dto.TokenResponse, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(req.RefreshToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid || claims.Kind != "refresh" {
		return nil, apierror.Validation("invalid refresh token")
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apierror.Validation("invalid refresh token")
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil || !u.Active {
		return nil, apierror.Validation("invalid refresh token")
	}
	return s.issueTokens(u)
}

func (s *authService) issueTokens(u *model.User) (*dto.TokenResponse, error) {
	now := time.Now().UTC()
	access, err := s.sign(u, "access", now, s.accessExpiry)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(u, "refresh", now, s.refreshExpiry)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(s.accessExpiry.Seconds()),
		User:         userToResponse(u),
	}, nil
}

func (s *authService) sign(u *model.User, kind string, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: u.ID.String(),
		Role:   u.Role,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *authService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Email:        req.Email,
		FullName:     req.FullName,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         req.Role,
		Active:       true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, apierror.Conflict("user with email %s already exists", req.Email)
	}
	resp := userToResponse(u)
	return &resp, nil
}

func (s *authService) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, userToResponse(&users[i]))
	}
	return out, nil
}

func userToResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       u.ID.String(),
		Email:    u.Email,
		FullName: u.FullName,
		Phone:    u.Phone,
		Role:     u.Role,
		Active:   u.Active,
	}
}

// VerifyAccessToken parses and validates an access token, returning its
// claims. Used by the auth middleware.
func VerifyAccessToken(secret []byte, raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid || claims.Kind != "access" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
