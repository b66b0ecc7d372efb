package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"

	devlink "github.com/devlink-app/devlink"
	"github.com/devlink-app/devlink/internal/domain"
	"github.com/devlink-app/devlink/store"
)

var tracer = otel.Tracer("auth")

type AuthService struct {
	config *domain.Config
	store  store.Store
}

func NewAuthService(
	config *domain.Config,
	s store.Store,
) *AuthService {
	return &AuthService{
		config: config,
		store:  s,
	}
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type AuthResult struct {
	UserID   string
	Username string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.Register")
	defer span.End()

	username := strings.ToLower(strings.TrimSpace(input.Username))
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if username == "" || email == "" {
		return domain.User{}, domain.ValidationError{Reason: "username and email are required"}
	}
	if len(input.Password) < 8 {
		return domain.User{}, domain.ValidationError{Reason: "password must be at least 8 characters"}
	}

	taken, err := s.store.QueryByEquality(ctx, store.CollectionUsers, "username", username)
	if err != nil {
		span.RecordError(err)
		return domain.User{}, errors.Wrap(err, "AuthService.Register: username lookup failed")
	}
	if len(taken) > 0 {
		return domain.User{}, domain.ValidationError{Reason: "username already taken"}
	}

	taken, err = s.store.QueryByEquality(ctx, store.CollectionUsers, "email", email)
	if err != nil {
		span.RecordError(err)
		return domain.User{}, errors.Wrap(err, "AuthService.Register: email lookup failed")
	}
	if len(taken) > 0 {
		return domain.User{}, domain.ValidationError{Reason: "email already registered"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		return domain.User{}, errors.Wrap(err, "AuthService.Register: hash failed")
	}

	user := domain.User{
		ID:           devlink.NewID(),
		Username:     username,
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    devlink.InstantOf(time.Now()),
	}

	if err := s.store.Add(ctx, store.CollectionUsers, user.ID, user); err != nil {
		span.RecordError(err)
		return domain.User{}, errors.Wrap(err, "AuthService.Register: store add failed")
	}

	return user.Public(), nil
}

// Login verifies the credentials and issues an HS256 token carrying the
// user id as subject.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.Login")
	defer span.End()

	username = strings.ToLower(strings.TrimSpace(username))

	docs, err := s.store.QueryByEquality(ctx, store.CollectionUsers, "username", username)
	if err != nil {
		span.RecordError(err)
		return "", errors.Wrap(err, "AuthService.Login: user lookup failed")
	}
	if len(docs) == 0 {
		return "", domain.ForbiddenError{Reason: "invalid credentials"}
	}

	user, err := store.Decode[domain.User](docs[0])
	if err != nil {
		span.RecordError(err)
		return "", errors.Wrap(err, "AuthService.Login: decode failed")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.ForbiddenError{Reason: "invalid credentials"}
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    s.config.FQDN,
		Audience:  jwt.ClaimStrings{s.config.FQDN},
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenExpiry)),
	})

	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		span.RecordError(err)
		return "", errors.Wrap(err, "AuthService.Login: signing failed")
	}

	return signed, nil
}

// AuthToken validates a bearer token and resolves the requester.
func (s *AuthService) AuthToken(ctx context.Context, token string) (*AuthResult, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.AuthToken")
	defer span.End()

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil {
		span.RecordError(errors.Wrap(err, "jwt validation failed"))
		return nil, err
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		err := fmt.Errorf("invalid subject")
		span.RecordError(err)
		return nil, err
	}

	audienceOK := false
	for _, aud := range claims.Audience {
		if aud == s.config.FQDN {
			audienceOK = true
		}
	}
	if !audienceOK {
		err := fmt.Errorf("jwt audience mismatch: expected %s", s.config.FQDN)
		span.RecordError(err)
		return nil, err
	}

	doc, err := s.store.GetByID(ctx, store.CollectionUsers, claims.Subject)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "AuthService.AuthToken: user lookup failed")
	}

	user, err := store.Decode[domain.User](doc)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "AuthService.AuthToken: decode failed")
	}

	return &AuthResult{UserID: user.ID, Username: user.Username}, nil
}
