package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/Skedlyze/Skedlyze/internal/config"
	"github.com/Skedlyze/Skedlyze/internal/dto"
	"github.com/Skedlyze/Skedlyze/internal/model"
	"github.com/Skedlyze/Skedlyze/internal/repository"
	"github.com/Skedlyze/Skedlyze/pkg/apperror"
)

type AuthService interface {
	GoogleLoginURL(state string) string
	GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error)
	DevLogin(ctx context.Context, input dto.DevLoginInput) (*dto.AuthResponse, error)
	CurrentUser(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type authService struct {
	users        repository.UserRepository
	secret       string
	tokenTTL     time.Duration
	appEnv       string
	googleConfig *oauth2.Config
}

func NewAuthService(users repository.UserRepository, cfg *config.Config) AuthService {
	googleConfig := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
			"https://www.googleapis.com/auth/calendar",
		},
		Endpoint: google.Endpoint,
	}

	return &authService{
		users:        users,
		secret:       cfg.JWTSecret,
		tokenTTL:     cfg.JWTTTL,
		appEnv:       cfg.AppEnv,
		googleConfig: googleConfig,
	}
}

// GoogleLoginURL builds the consent URL. Offline access with forced consent
// is required so Google returns a refresh token for Calendar sync.
func (s *authService) GoogleLoginURL(state string) string {
	return s.googleConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (s *authService) GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error) {
	token, err := s.googleConfig.Exchange(ctx, code)
	if err != nil {
		return nil, errors.New("failed to exchange token: " + err.Error())
	}

	client := s.googleConfig.Client(ctx, token)
	userInfoResp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, errors.New("failed to get user info: " + err.Error())
	}
	defer userInfoResp.Body.Close()

	var googleUser struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(userInfoResp.Body).Decode(&googleUser); err != nil {
		return nil, errors.New("failed to decode user info: " + err.Error())
	}
	if googleUser.ID == "" || googleUser.Email == "" {
		return nil, errors.New("incomplete user info from google")
	}

	user, err := s.users.FindByGoogleID(ctx, googleUser.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		// Register new user. A random hash keeps dev-login unusable
		// for accounts that only ever signed in through Google.
		randomPassword := uuid.New().String()
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(randomPassword), bcrypt.DefaultCost)

		user = &model.User{
			GoogleID:     googleUser.ID,
			Email:        googleUser.Email,
			Name:         googleUser.Name,
			PasswordHash: string(hashedPassword),
			Preferences:  map[string]any{},
		}
		if googleUser.Picture != "" {
			user.Picture = &googleUser.Picture
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, errors.New("failed to create user: " + err.Error())
		}
	}

	s.applyOAuthToken(user, token, googleUser.Name, googleUser.Picture)
	if err := s.users.Update(ctx, user); err != nil {
		log.Printf("Failed to persist oauth tokens for user %s: %v", user.ID, err)
	}

	return s.buildAuthResponse(user)
}

func (s *authService) applyOAuthToken(user *model.User, token *oauth2.Token, name, picture string) {
	user.AccessToken = &token.AccessToken
	if token.RefreshToken != "" {
		user.RefreshToken = &token.RefreshToken
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		user.TokenExpiresAt = &expiry
	}
	if name != "" {
		user.Name = name
	}
	if picture != "" {
		user.Picture = &picture
	}
}

// DevLogin authenticates a password-seeded account. Only enabled outside
// production so local frontends can skip the OAuth dance.
func (s *authService) DevLogin(ctx context.Context, input dto.DevLoginInput) (*dto.AuthResponse, error) {
	if s.appEnv == "production" {
		return nil, apperror.ErrForbidden
	}

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusUnauthorized, "invalid credentials", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.New(http.StatusUnauthorized, "invalid credentials", apperror.ErrUnauthorized)
	}

	return s.buildAuthResponse(user)
}

func (s *authService) CurrentUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) buildAuthResponse(user *model.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt - time.Now().Unix(),
		User:        user,
	}, nil
}

func (s *authService) generateToken(user *model.User) (string, int64, error) {
	expiresAt := time.Now().Add(s.tokenTTL)

	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt.Unix(), nil
}
