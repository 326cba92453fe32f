package service

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"survey-grader/internal/config"
	"survey-grader/internal/domain"
	"survey-grader/internal/dto"
	"survey-grader/internal/logger"
	"survey-grader/internal/repository"
	"survey-grader/internal/repository/models"
	"survey-grader/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	tokenTypeAccess   = "access"
	tokenTypeRefresh  = "refresh"
)

var (
	ErrInvalidAuthState      = errors.New("oauth state mismatch")
	ErrFailedToExchangeToken = errors.New("oauth code exchange failed")
	ErrFailedToGetUserInfo   = errors.New("could not fetch google user info")
	ErrInvalidJWTToken       = errors.New("token is invalid or expired")
	ErrEncryptionFailed      = errors.New("token encryption failed")
	ErrDecryptionFailed      = errors.New("token decryption failed")
)

// AuthService issues and validates the JWTs that protect the API and
// drives the Google OAuth login flow behind them.
type AuthService interface {
	GetGoogleLoginURL(state string) string
	HandleGoogleCallback(ctx context.Context, code string, receivedState string, expectedState string) (accessToken string, refreshToken string, user *models.User, err error)
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
	CreateJWT(ctx context.Context, user *models.User, ttl time.Duration, tokenType string) (string, error)
	RefreshToken(ctx context.Context, refreshTokenString string) (newAccessToken string, newRefreshToken string, err error)
	EncryptToken(token string) (string, error)
	DecryptToken(encryptedToken string) (string, error)
}

type authServiceImpl struct {
	userRepo      repository.UserRepository
	oauth2Config  *oauth2.Config
	appConfig     *config.Config
	encryptionKey []byte
}

// NewAuthService wires the Google OAuth client and the JWT signer from
// configuration. The JWT secret must be at least 32 bytes: its first 32
// bytes also serve as the AES-256 key that seals provider tokens before
// they reach the database.
func NewAuthService(userRepo repository.UserRepository, appConfig *config.Config) (AuthService, error) {
	secret := appConfig.JWT.SecretKey
	if len(secret) < 32 {
		return nil, errors.New("jwt secret key must be at least 32 bytes long")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     appConfig.GoogleOAuth.ClientID,
		ClientSecret: appConfig.GoogleOAuth.ClientSecret,
		RedirectURL:  appConfig.GoogleOAuth.RedirectURL,
		Endpoint:     google.Endpoint,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
	}

	return &authServiceImpl{
		userRepo:      userRepo,
		oauth2Config:  oauthCfg,
		appConfig:     appConfig,
		encryptionKey: []byte(secret[:32]),
	}, nil
}

func (s *authServiceImpl) CreateJWT(ctx context.Context, user *models.User, ttl time.Duration, tokenType string) (string, error) {
	now := time.Now()
	claims := dto.AuthClaims{
		UserID:    user.ID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.appConfig.JWT.SecretKey))
}

func (s *authServiceImpl) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.appConfig.JWT.SecretKey), nil
	}

	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, keyFunc)
	if err != nil {
		logger.Get().Warn("Rejected JWT",
			zap.Bool("expired", errors.Is(err, jwt.ErrTokenExpired)),
			zap.String("token_snippet", tokenSnippet(tokenString)),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}

	claims, ok := token.Claims.(*dto.AuthClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidJWTToken
	}
	return claims, nil
}

// tokenSnippet trims a JWT for log output so signatures never land in logs.
func tokenSnippet(token string) string {
	const keep = 20
	return token[:min(len(token), keep)] + "..."
}

func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshTokenString string) (string, string, error) {
	appLogger := logger.Get()

	claims, err := s.ValidateJWT(ctx, refreshTokenString)
	if err != nil {
		return "", "", fmt.Errorf("invalid refresh token: %w", err)
	}
	if claims.TokenType != tokenTypeRefresh {
		return "", "", errors.New("not a refresh token")
	}

	user, err := s.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		appLogger.Error("Could not load user during token refresh", zap.String("userID", claims.UserID), zap.Error(err))
		return "", "", domain.NewInternalError("failed to load user for refresh token", err)
	}
	if user == nil {
		appLogger.Warn("Refresh token references a missing user", zap.String("userID", claims.UserID))
		return "", "", domain.NewNotFoundError(fmt.Sprintf("User %s not found for refresh token", claims.UserID))
	}

	access, refresh, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return "", "", err
	}
	appLogger.Info("Rotated token pair", zap.String("userID", user.ID))
	return access, refresh, nil
}

// issueTokenPair signs a fresh access and refresh token for the user.
func (s *authServiceImpl) issueTokenPair(ctx context.Context, user *models.User) (string, string, error) {
	access, err := s.CreateJWT(ctx, user, s.appConfig.JWT.AccessTokenTTL, tokenTypeAccess)
	if err != nil {
		return "", "", fmt.Errorf("failed to create access token: %w", err)
	}
	refresh, err := s.CreateJWT(ctx, user, s.appConfig.JWT.RefreshTokenTTL, tokenTypeRefresh)
	if err != nil {
		return "", "", fmt.Errorf("failed to create refresh token: %w", err)
	}
	return access, refresh, nil
}

func (s *authServiceImpl) GetGoogleLoginURL(state string) string {
	// AccessTypeOffline plus ApprovalForce makes Google hand back a refresh token.
	return s.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (s *authServiceImpl) HandleGoogleCallback(ctx context.Context, code string, receivedState string, expectedState string) (string, string, *models.User, error) {
	if receivedState != expectedState {
		return "", "", nil, ErrInvalidAuthState
	}

	googleToken, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return "", "", nil, fmt.Errorf("%w: %v", ErrFailedToExchangeToken, err)
	}

	info, err := s.fetchGoogleProfile(ctx, googleToken)
	if err != nil {
		return "", "", nil, err
	}

	user, err := s.upsertGoogleUser(ctx, info, googleToken)
	if err != nil {
		return "", "", nil, err
	}

	access, refresh, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return "", "", nil, err
	}
	return access, refresh, user, nil
}

// fetchGoogleProfile calls the userinfo endpoint with the freshly
// exchanged token and rejects profiles missing an ID or email.
func (s *authServiceImpl) fetchGoogleProfile(ctx context.Context, googleToken *oauth2.Token) (*dto.GoogleUserInfo, error) {
	resp, err := s.oauth2Config.Client(ctx, googleToken).Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToGetUserInfo, err)
	}
	defer resp.Body.Close()

	var info dto.GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	if info.ID == "" || info.Email == "" {
		return nil, errors.New("google user info is incomplete")
	}
	return &info, nil
}

// upsertGoogleUser stores the Google profile and sealed provider tokens,
// creating the user on first login and refreshing the stored fields on
// every later one. Google stays the source of truth for the email.
func (s *authServiceImpl) upsertGoogleUser(ctx context.Context, info *dto.GoogleUserInfo, googleToken *oauth2.Token) (*models.User, error) {
	appLogger := logger.Get()

	user, err := s.userRepo.GetUserByGoogleID(ctx, info.ID)
	if err != nil {
		return nil, fmt.Errorf("error fetching user by google_id: %w", err)
	}

	sealedAccess, err := s.EncryptToken(googleToken.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}
	sealedRefresh := ""
	if googleToken.RefreshToken != "" {
		if sealedRefresh, err = s.EncryptToken(googleToken.RefreshToken); err != nil {
			return nil, fmt.Errorf("failed to encrypt refresh token: %w", err)
		}
	}

	now := time.Now()
	if user == nil {
		user = &models.User{
			ID:                    util.NewULID(),
			GoogleID:              info.ID,
			Email:                 info.Email,
			Name:                  util.StringToNullString(info.Name),
			ProfilePictureURL:     util.StringToNullString(info.Picture),
			EncryptedAccessToken:  util.StringToNullString(sealedAccess),
			EncryptedRefreshToken: util.StringToNullString(sealedRefresh),
			TokenExpiresAt:        util.TimeToNullTime(googleToken.Expiry),
			CreatedAt:             now,
			UpdatedAt:             now,
		}
		if err := s.userRepo.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		appLogger.Info("Registered new user from Google profile", zap.String("userID", user.ID), zap.String("email", user.Email))
		return user, nil
	}

	user.Email = info.Email
	user.Name = util.StringToNullString(info.Name)
	user.ProfilePictureURL = util.StringToNullString(info.Picture)
	user.EncryptedAccessToken = util.StringToNullString(sealedAccess)
	if sealedRefresh != "" {
		// Google only returns a refresh token on consent; keep the old one otherwise.
		user.EncryptedRefreshToken = util.StringToNullString(sealedRefresh)
	}
	user.TokenExpiresAt = util.TimeToNullTime(googleToken.Expiry)
	user.UpdatedAt = now
	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	appLogger.Info("Returning user signed in with Google", zap.String("userID", user.ID), zap.String("email", user.Email))
	return user, nil
}

// aead builds the AES-256-GCM primitive shared by EncryptToken and DecryptToken.
func (s *authServiceImpl) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// EncryptToken seals a provider token with AES-GCM. The nonce is
// prepended to the ciphertext and the whole payload base64 encoded.
// Empty input passes through untouched.
func (s *authServiceImpl) EncryptToken(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	gcm, err := s.aead()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}
	sealed := gcm.Seal(nonce, nonce, []byte(token), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptToken reverses EncryptToken. Any malformed or tampered payload
// surfaces as ErrDecryptionFailed.
func (s *authServiceImpl) DecryptToken(encryptedToken string) (string, error) {
	if encryptedToken == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(encryptedToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	gcm, err := s.aead()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	if len(raw) < gcm.NonceSize() {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecryptionFailed)
	}
	nonce, sealed := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	return string(plain), nil
}
