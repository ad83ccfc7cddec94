package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"jeopardy-trainer-go/internal/models"
	"jeopardy-trainer-go/internal/notify"
	"jeopardy-trainer-go/internal/store"
)

const EventUserRegistered = "user.registered"

type AccountStore interface {
	// CreateUser reports store.ErrDuplicate when the email or username is taken.
	CreateUser(ctx context.Context, user models.User) error
	UserByID(ctx context.Context, id string) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error
	Users(ctx context.Context) ([]models.User, error)
	ApproveUser(ctx context.Context, userID string, at time.Time) (models.User, error)
	PromoteAdmin(ctx context.Context, email string, at time.Time) (bool, error)
	SetGameTypeFilters(ctx context.Context, userID string, filters json.RawMessage) error

	CreateSession(ctx context.Context, session models.AuthSession) error
	Session(ctx context.Context, token string) (models.AuthSession, error)
	// LatestSession returns the session of the user expiring last, if it expires after now.
	LatestSession(ctx context.Context, userID string, now time.Time) (models.AuthSession, error)
	ExtendSession(ctx context.Context, token string, expiresAt time.Time) error
	DeleteSession(ctx context.Context, token string) error
}

type AccountNotifier interface {
	Registered(acct notify.Account) bool
	Approved(acct notify.Account) bool
}

type EventPublisher interface {
	Publish(evt Event)
}

// Accounts owns registration, approval and the server-side sessions behind access tokens.
type Accounts struct {
	store         AccountStore
	tokens        TokenService
	refreshWindow time.Duration
	notifier      AccountNotifier
	events        EventPublisher
	logger        *slog.Logger
	now           func() time.Time
}

func NewAccounts(st AccountStore, tokens TokenService, refreshWindow time.Duration, notifier AccountNotifier, events EventPublisher, logger *slog.Logger) *Accounts {
	return &Accounts{
		store:         st,
		tokens:        tokens,
		refreshWindow: refreshWindow,
		notifier:      notifier,
		events:        events,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

func (a *Accounts) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return models.User{}, ErrBadRequest("Missing required fields")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return models.User{}, ErrBadRequest("Invalid email address")
	}
	hash, err := a.tokens.HashPassword(in.Password)
	if err != nil {
		return models.User{}, WrapError(err, "hash password")
	}
	now := a.now()
	user := models.User{
		ID:              uuid.NewString(),
		Username:        username,
		Email:           email,
		PasswordHash:    hash,
		Role:            models.RoleUser,
		GameTypeFilters: json.RawMessage(`[]`),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := a.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.User{}, ErrBadRequest("User with this email or username already exists")
		}
		return models.User{}, WrapError(err, "create user")
	}
	a.logger.Info("user registered", "user_id", user.ID)
	if a.notifier != nil {
		a.notifier.Registered(accountOf(user))
	}
	if a.events != nil {
		a.events.Publish(Event{Type: EventUserRegistered, At: now, Data: map[string]string{
			"userId":   user.ID,
			"username": user.Username,
		}})
	}
	return user, nil
}

// Login is the result of a successful sign-in or session restore.
type Login struct {
	AccessToken    string
	ExpiresAt      time.Time
	SessionToken   string
	SessionExpires time.Time
	User           models.User
}

func (a *Accounts) Login(ctx context.Context, email, password string) (Login, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Login{}, ErrBadRequest("Email and password are required")
	}
	user, err := a.store.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Login{}, ErrUnauthorized("Invalid email or password")
		}
		return Login{}, WrapError(err, "load user")
	}
	if !a.tokens.VerifyPassword(password, user.PasswordHash) {
		return Login{}, ErrUnauthorized("Invalid email or password")
	}
	if !user.Approved {
		return Login{}, ErrForbidden("Your account is pending approval. You'll receive an email once approved.")
	}

	now := a.now()
	session := models.AuthSession{
		SessionToken: uuid.NewString(),
		UserID:       user.ID,
		ExpiresAt:    now.Add(a.tokens.SessionTTL),
		CreatedAt:    now,
	}
	if err := a.store.CreateSession(ctx, session); err != nil {
		return Login{}, WrapError(err, "create session")
	}
	if err := a.store.TouchLastLogin(ctx, user.ID, now); err != nil {
		a.logger.Warn("last login not recorded", "user_id", user.ID, "error", err)
	}
	return a.issue(user, session)
}

// Authenticate verifies an access token and the session it names. Sessions
// nearing expiry are pushed out again.
func (a *Accounts) Authenticate(ctx context.Context, token string) (Claims, error) {
	claims, err := a.tokens.ParseAccessToken(token)
	if err != nil {
		return Claims{}, ErrUnauthorized("Unauthorized")
	}
	session, err := a.store.Session(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Claims{}, ErrUnauthorized("Session expired")
		}
		return Claims{}, WrapError(err, "load session")
	}
	now := a.now()
	if session.UserID != claims.UserID || !session.ExpiresAt.After(now) {
		return Claims{}, ErrUnauthorized("Session expired")
	}
	if session.ExpiresAt.Before(now.Add(a.tokens.SessionTTL - a.refreshWindow)) {
		if err := a.store.ExtendSession(ctx, session.SessionToken, now.Add(a.tokens.SessionTTL)); err != nil {
			a.logger.Warn("session not extended", "user_id", session.UserID, "error", err)
		}
	}
	return claims, nil
}

// PersistentToken hands out the user's longest-lived open session, creating one if needed.
func (a *Accounts) PersistentToken(ctx context.Context, userID string) (string, error) {
	now := a.now()
	session, err := a.store.LatestSession(ctx, userID, now)
	if err == nil {
		return session.SessionToken, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", WrapError(err, "load session")
	}
	session = models.AuthSession{
		SessionToken: uuid.NewString(),
		UserID:       userID,
		ExpiresAt:    now.Add(a.tokens.SessionTTL),
		CreatedAt:    now,
	}
	if err := a.store.CreateSession(ctx, session); err != nil {
		return "", WrapError(err, "create session")
	}
	return session.SessionToken, nil
}

// RestoreSession trades a persistent token for a fresh access token.
func (a *Accounts) RestoreSession(ctx context.Context, token string) (Login, error) {
	if token == "" {
		return Login{}, ErrBadRequest("Token required")
	}
	session, err := a.store.Session(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Login{}, ErrUnauthorized("Invalid token")
		}
		return Login{}, WrapError(err, "load session")
	}
	now := a.now()
	if !session.ExpiresAt.After(now) {
		if err := a.store.DeleteSession(ctx, token); err != nil {
			a.logger.Warn("expired session not removed", "error", err)
		}
		return Login{}, ErrUnauthorized("Token expired")
	}
	user, err := a.store.UserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Login{}, ErrUnauthorized("Invalid token")
		}
		return Login{}, WrapError(err, "load user")
	}
	if !user.Approved {
		return Login{}, ErrForbidden("Account not approved")
	}
	session.ExpiresAt = now.Add(a.tokens.SessionTTL)
	if err := a.store.ExtendSession(ctx, token, session.ExpiresAt); err != nil {
		return Login{}, WrapError(err, "extend session")
	}
	return a.issue(user, session)
}

func (a *Accounts) Logout(ctx context.Context, sessionID string) error {
	if err := a.store.DeleteSession(ctx, sessionID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return WrapError(err, "delete session")
	}
	return nil
}

func (a *Accounts) User(ctx context.Context, userID string) (models.User, error) {
	user, err := a.store.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.User{}, ErrNotFound("User not found")
		}
		return models.User{}, WrapError(err, "load user")
	}
	return user, nil
}

// Users lists accounts with pending approvals first.
func (a *Accounts) Users(ctx context.Context) ([]models.User, error) {
	return a.store.Users(ctx)
}

func (a *Accounts) Approve(ctx context.Context, userID string) (models.User, error) {
	if userID == "" {
		return models.User{}, ErrBadRequest("User ID is required")
	}
	if _, err := uuid.Parse(userID); err != nil {
		return models.User{}, ErrNotFound("User not found")
	}
	user, err := a.store.ApproveUser(ctx, userID, a.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.User{}, ErrNotFound("User not found")
		}
		return models.User{}, WrapError(err, "approve user")
	}
	a.logger.Info("user approved", "user_id", user.ID)
	if a.notifier != nil {
		a.notifier.Approved(accountOf(user))
	}
	return user, nil
}

// SetGameTypes stores the audience filter. Tags are expected to be validated already.
func (a *Accounts) SetGameTypes(ctx context.Context, userID string, tags []string) error {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	if err := a.store.SetGameTypeFilters(ctx, userID, raw); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound("User not found")
		}
		return WrapError(err, "save preferences")
	}
	return nil
}

// EnsureAdmin approves and promotes the bootstrap account if it exists.
func (a *Accounts) EnsureAdmin(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	found, err := a.store.PromoteAdmin(ctx, email, a.now())
	if err != nil {
		return WrapError(err, "promote admin")
	}
	if !found {
		a.logger.Warn("bootstrap admin not registered yet", "email", email)
		return nil
	}
	a.logger.Info("bootstrap admin ensured", "email", email)
	return nil
}

func (a *Accounts) issue(user models.User, session models.AuthSession) (Login, error) {
	token, exp, err := a.tokens.CreateAccessToken(user, session.SessionToken)
	if err != nil {
		return Login{}, WrapError(err, "sign token")
	}
	return Login{
		AccessToken:    token,
		ExpiresAt:      exp,
		SessionToken:   session.SessionToken,
		SessionExpires: session.ExpiresAt,
		User:           user,
	}, nil
}

func accountOf(user models.User) notify.Account {
	return notify.Account{UserID: user.ID, Username: user.Username, Email: user.Email}
}
