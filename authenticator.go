package calc

import (
	"context"
	"strings"

	"github.com/goliatone/go-errors"
)

// RegisterUserMessage carries a registration request
type RegisterUserMessage struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// Auther orchestrates the credential store, password hasher and token issuer
type Auther struct {
	provider IdentityProvider
	users    Users
	tokens   TokenService
	logger   Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(users Users, tokens TokenService) *Auther {
	return &Auther{
		provider: NewUserProvider(users),
		users:    users,
		tokens:   tokens,
		logger:   defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithIdentityProvider overrides the identity provider used for login.
func (s *Auther) WithIdentityProvider(provider IdentityProvider) *Auther {
	if provider != nil {
		s.provider = provider
	}
	return s
}

// Register creates a new user and returns a token for it. A taken username
// surfaces as ErrDuplicateUser, everything else is atomic from the caller's
// perspective: a token or an error, never a half-issued token.
func (s *Auther) Register(ctx context.Context, msg RegisterUserMessage) (string, error) {
	username := strings.TrimSpace(msg.Username)
	if username == "" {
		return "", errors.New("username must not be empty", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	hash, err := HashPassword(msg.Password)
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return "", richErr
		}
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		Username:     username,
		Email:        msg.Email,
		PasswordHash: hash,
	}

	if user, err = s.users.Register(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			s.logger.Info("Register rejected duplicate username", "username", username)
			return "", ErrDuplicateUser
		}
		return "", err
	}

	token, err := s.tokens.Generate(IdentityFromUser(user))
	if err != nil {
		s.logger.Error("Register token generation failed", "error", err)
		return "", err
	}

	return token, nil
}

// Login verifies the credential pair and issues a fresh token. Any
// verification failure collapses to ErrInvalidCredentials.
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			s.logger.Info("Login failed", "identifier", identifier)
			return "", ErrInvalidCredentials
		}
		s.logger.Error("Login verify identity error", "error", err)
		return "", err
	}

	token, err := s.tokens.Generate(identity)
	if err != nil {
		s.logger.Error("Login token generation failed", "error", err)
		return "", err
	}

	return token, nil
}

// IdentityFromSubject resolves a verified token subject back to the stored
// user. A missing user means the token no longer authorizes anyone.
func (s *Auther) IdentityFromSubject(ctx context.Context, subject string) (*User, error) {
	user, err := s.users.GetByIdentifier(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}
	return user, nil
}
