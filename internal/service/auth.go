package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauthapi "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"muds-matching-backend/internal/config"
	"muds-matching-backend/internal/logger"
	"muds-matching-backend/internal/security"
)

var (
	ErrStateMismatch    = errors.New("oauth state mismatch")
	ErrDomainNotAllowed = errors.New("account domain is not allowed")
)

type authService struct {
	oauth         *oauth2.Config
	tokenManager  security.TokenManager
	allowedDomain string
}

func NewAuthService(cfg config.GoogleConfig, tokenManager security.TokenManager) AuthService {
	return &authService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{oauthapi.UserinfoEmailScope, oauthapi.UserinfoProfileScope},
			Endpoint:     google.Endpoint,
		},
		tokenManager:  tokenManager,
		allowedDomain: cfg.AllowedDomain,
	}
}

func (s *authService) LoginURL() (string, string) {
	state := uuid.NewString()
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline), state
}

// HandleCallback finishes the OAuth dance. The caller supplies the state
// it stashed at login time; a mismatch means the callback was forged or
// stale.
func (s *authService) HandleCallback(ctx context.Context, state, expectedState, code string) (string, string, error) {
	logger.EnterMethod("HandleCallback")

	if expectedState == "" || state != expectedState {
		return "", "", ErrStateMismatch
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return "", "", fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	svc, err := oauthapi.NewService(ctx, option.WithTokenSource(s.oauth.TokenSource(ctx, token)))
	if err != nil {
		return "", "", fmt.Errorf("failed to build userinfo client: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch userinfo: %w", err)
	}

	if s.allowedDomain != "" && !strings.HasSuffix(info.Email, "@"+s.allowedDomain) {
		logger.WarnContext(ctx, "login rejected for outside domain", "email", info.Email)
		return "", "", ErrDomainNotAllowed
	}

	access, err := s.tokenManager.GenerateAccessToken(info.Email, info.Name, security.RoleStaff)
	if err != nil {
		return "", "", err
	}

	logger.ExitMethod("HandleCallback", "email", info.Email)
	return access, info.Email, nil
}
