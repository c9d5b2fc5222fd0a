package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	types "github.com/planloop/planloop-backend/internal/domain"
	"github.com/planloop/planloop-backend/internal/data/repos"
	"github.com/planloop/planloop-backend/internal/pkg/ctxutil"
	"github.com/planloop/planloop-backend/internal/pkg/dbctx"
	pkgerrors "github.com/planloop/planloop-backend/internal/pkg/errors"
	"github.com/planloop/planloop-backend/internal/platform/logger"
)

type AuthService interface {
	RegisterUser(ctx context.Context, user *types.User) error
	LoginUser(ctx context.Context, email, password string) (string, string, error)
	RefreshUser(ctx context.Context, refreshToken string) (string, string, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (s *authService) GetAccessTTL() time.Duration { return s.accessTTL }

func (s *authService) RegisterUser(ctx context.Context, user *types.User) error {
	if user == nil {
		return fmt.Errorf("user is required: %w", pkgerrors.ErrInvalidArgument)
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.FirstName = strings.TrimSpace(user.FirstName)
	user.LastName = strings.TrimSpace(user.LastName)
	switch {
	case user.Email == "":
		return fmt.Errorf("email is required: %w", pkgerrors.ErrInvalidArgument)
	case user.Password == "":
		return fmt.Errorf("password is required: %w", pkgerrors.ErrInvalidArgument)
	case user.FirstName == "":
		return fmt.Errorf("first name is required: %w", pkgerrors.ErrInvalidArgument)
	}

	exists, err := s.userRepo.EmailExists(dbctx.New(ctx), user.Email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if exists {
		return fmt.Errorf("email already in use: %w", pkgerrors.ErrInvalidArgument)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hashed)
	user.ID = uuid.New()

	if _, err := s.userRepo.Create(dbctx.New(ctx), []*types.User{user}); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", "", fmt.Errorf("email and password are required: %w", pkgerrors.ErrInvalidArgument)
	}

	user, err := s.userRepo.GetByEmail(dbctx.New(ctx), email)
	if err != nil {
		return "", "", fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return "", "", fmt.Errorf("invalid credentials: %w", pkgerrors.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", fmt.Errorf("invalid credentials: %w", pkgerrors.ErrUnauthorized)
	}

	var accessToken, refreshToken string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)

		// Reap this user's expired sessions on the way in.
		existing, err := s.userTokenRepo.GetByUserIDs(dbc, []uuid.UUID{user.ID})
		if err != nil {
			return fmt.Errorf("load sessions: %w", err)
		}
		var stale []uuid.UUID
		for _, t := range existing {
			if t.ExpiresAt.Before(time.Now()) {
				stale = append(stale, t.ID)
			}
		}
		if err := s.userTokenRepo.FullDeleteByIDs(dbc, stale); err != nil {
			return fmt.Errorf("reap sessions: %w", err)
		}

		sessionID := uuid.New()
		accessToken, err = s.signAccessToken(user.ID, sessionID)
		if err != nil {
			return fmt.Errorf("sign access token: %w", err)
		}
		refreshToken = uuid.New().String()

		_, err = s.userTokenRepo.Create(dbc, []*types.UserToken{{
			ID:           sessionID,
			UserID:       user.ID,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    time.Now().Add(s.refreshTTL),
		}})
		return err
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (s *authService) RefreshUser(ctx context.Context, refreshToken string) (string, string, error) {
	if refreshToken == "" {
		return "", "", fmt.Errorf("refresh token is required: %w", pkgerrors.ErrInvalidArgument)
	}

	var accessToken, newRefresh string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		token, err := s.userTokenRepo.GetByRefreshToken(dbc, refreshToken)
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		if token == nil || token.ExpiresAt.Before(time.Now()) {
			return fmt.Errorf("session expired: %w", pkgerrors.ErrUnauthorized)
		}

		if err := s.userTokenRepo.FullDeleteByIDs(dbc, []uuid.UUID{token.ID}); err != nil {
			return fmt.Errorf("rotate session: %w", err)
		}

		sessionID := uuid.New()
		accessToken, err = s.signAccessToken(token.UserID, sessionID)
		if err != nil {
			return fmt.Errorf("sign access token: %w", err)
		}
		newRefresh = uuid.New().String()
		_, err = s.userTokenRepo.Create(dbc, []*types.UserToken{{
			ID:           sessionID,
			UserID:       token.UserID,
			AccessToken:  accessToken,
			RefreshToken: newRefresh,
			ExpiresAt:    time.Now().Add(s.refreshTTL),
		}})
		return err
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, newRefresh, nil
}

func (s *authService) LogoutUser(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.SessionID == uuid.Nil {
		return fmt.Errorf("no active session: %w", pkgerrors.ErrUnauthorized)
	}
	return s.userTokenRepo.FullDeleteByIDs(dbctx.New(ctx), []uuid.UUID{rd.SessionID})
}

func (s *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.jwtSecretKey), nil
	})
	if err != nil || !token.Valid {
		return ctx, fmt.Errorf("invalid token: %w", pkgerrors.ErrUnauthorized)
	}

	userID, err := claimUUID(claims, "user_id")
	if err != nil {
		return ctx, fmt.Errorf("invalid token claims: %w", pkgerrors.ErrUnauthorized)
	}
	sessionID, err := claimUUID(claims, "session_id")
	if err != nil {
		return ctx, fmt.Errorf("invalid token claims: %w", pkgerrors.ErrUnauthorized)
	}

	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		SessionID:   sessionID,
	}), nil
}

func (s *authService) signAccessToken(userID, sessionID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":    userID.String(),
		"session_id": sessionID.String(),
		"iat":        now.Unix(),
		"exp":        now.Add(s.accessTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecretKey))
}

func claimUUID(claims jwt.MapClaims, key string) (uuid.UUID, error) {
	raw, ok := claims[key].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("missing %s claim", key)
	}
	return uuid.Parse(raw)
}
