package services

import (
	"context"
	"crypto/subtle"
	"time"

	"heli-training/logbook/internal/auth"
	"heli-training/logbook/internal/config"
	"heli-training/logbook/internal/logging"
	"heli-training/logbook/internal/models/gorm"
	"heli-training/logbook/internal/providers"
)

// LoginRecorder keeps the local login history.
type LoginRecorder interface {
	Insert(ctx context.Context, event *gorm.LoginEvent) error
	ListRecent(ctx context.Context, limit int) ([]gorm.LoginEvent, error)
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      config.User `json:"user"`
}

// AuthService checks credentials against the roster and issues session tokens.
type AuthService struct {
	roster     config.Roster
	signer     *auth.TokenSigner
	history    LoginRecorder
	dispatcher PushDispatcher
	now        func() time.Time
}

func NewAuthService(roster config.Roster, signer *auth.TokenSigner, history LoginRecorder, dispatcher PushDispatcher) *AuthService {
	return &AuthService{
		roster:     roster,
		signer:     signer,
		history:    history,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// Login verifies the credentials, records the login locally and in the
// remote audit sheet, and returns a session token.
func (svc *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	user, found := svc.roster.FindUser(username)
	if !found || subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) != 1 {
		logging.Warn("Rejected login", "username", username)
		return LoginResult{}, ErrInvalidCredentials
	}

	token, expiresAt, err := svc.signer.Issue(user.Username, user.Name, user.Role)
	if err != nil {
		return LoginResult{}, err
	}

	now := svc.now().UTC()
	if svc.history != nil {
		event := &gorm.LoginEvent{
			Username:   user.Username,
			Name:       user.Name,
			Role:       user.Role.String(),
			LoggedInAt: now,
		}
		if err := svc.history.Insert(ctx, event); err != nil {
			logging.Warn("Failed to record login", "username", user.Username, "error", err)
		}
	}
	if svc.dispatcher != nil {
		svc.dispatcher.Dispatch(providers.LoginPush{
			Username:  user.Username,
			Name:      user.Name,
			Role:      user.Role,
			Timestamp: now,
		})
	}

	logging.Info("User logged in", "username", user.Username, "role", user.Role)

	user.Password = ""
	return LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Logout revokes the caller's token.
func (svc *AuthService) Logout(claims *auth.UserClaims) {
	svc.signer.Revoke(claims)
}

// Authenticate resolves a bearer token into claims.
func (svc *AuthService) Authenticate(ctx context.Context, token string) (*auth.UserClaims, error) {
	return svc.signer.Validate(ctx, token)
}

// RecentLogins lists the newest logins first.
func (svc *AuthService) RecentLogins(ctx context.Context, actor *auth.UserClaims, limit int) ([]gorm.LoginEvent, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if svc.history == nil {
		return []gorm.LoginEvent{}, nil
	}
	return svc.history.ListRecent(ctx, limit)
}
