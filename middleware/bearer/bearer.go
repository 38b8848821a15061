package bearer

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ErrMissingToken is returned when the Authorization header is absent or
// does not carry the expected scheme.
var ErrMissingToken = errors.New("missing or malformed bearer token")

// AuthClaims interface for structured claims without import cycles.
// This mirrors the AuthClaims interface from the calc package.
type AuthClaims interface {
	Subject() string
	UserID() string
}

// TokenValidator interface for validating tokens without import cycles.
// This mirrors the TokenService.Validate method from the calc package.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

type Config struct {
	// Filter skips the middleware when it returns true
	Filter func(*fiber.Ctx) bool
	// Validator is required for token validation
	Validator TokenValidator
	// UserLookup resolves the verified subject to a stored identity. When
	// it errors the request is rejected, so a deleted user's still-valid
	// token stops authorizing anything.
	UserLookup func(c *fiber.Ctx, claims AuthClaims) (any, error)
	// ErrorHandler turns auth failures into responses
	ErrorHandler fiber.ErrorHandler
	// ContextKey is where the resolved identity is stored in locals
	ContextKey string
	// ClaimsContextKey is where the validated claims are stored in locals
	ClaimsContextKey string
	// AuthScheme expected in the Authorization header
	AuthScheme string
}

const (
	// DefaultContextKey is where the resolved identity lands in locals.
	DefaultContextKey = "user"
	// DefaultClaimsContextKey is where validated claims land in locals.
	DefaultClaimsContextKey = "claims"
)

// ConfigDefault holds the default middleware settings
var ConfigDefault = Config{
	ContextKey:       DefaultContextKey,
	ClaimsContextKey: DefaultClaimsContextKey,
	AuthScheme:       "Bearer",
	ErrorHandler: func(c *fiber.Ctx, err error) error {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"detail": "Not authenticated",
		})
	},
}

func configDefault(config ...Config) Config {
	if len(config) == 0 {
		return ConfigDefault
	}

	cfg := config[0]
	if cfg.ContextKey == "" {
		cfg.ContextKey = ConfigDefault.ContextKey
	}
	if cfg.ClaimsContextKey == "" {
		cfg.ClaimsContextKey = ConfigDefault.ClaimsContextKey
	}
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = ConfigDefault.AuthScheme
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = ConfigDefault.ErrorHandler
	}
	return cfg
}

// New returns a fiber handler that gates requests on a valid bearer token.
// Handlers behind it only ever see the resolved identity, never the raw
// token.
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)

	if cfg.Validator == nil {
		panic("bearer: Validator is required")
	}

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := TokenFromHeader(c, cfg.AuthScheme)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		claims, err := cfg.Validator.Validate(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ClaimsContextKey, claims)

		if cfg.UserLookup != nil {
			user, err := cfg.UserLookup(c, claims)
			if err != nil {
				return cfg.ErrorHandler(c, err)
			}
			c.Locals(cfg.ContextKey, user)
		}

		return c.Next()
	}
}

// TokenFromHeader extracts the raw token from the Authorization header.
func TokenFromHeader(c *fiber.Ctx, authScheme string) (string, error) {
	auth := c.Get(fiber.HeaderAuthorization)
	l := len(authScheme)

	if len(auth) <= l+1 || !strings.EqualFold(auth[:l], authScheme) || auth[l] != ' ' {
		return "", ErrMissingToken
	}

	token := strings.TrimSpace(auth[l+1:])
	if token == "" {
		return "", ErrMissingToken
	}

	return token, nil
}
