// Package server exposes the HTTP surface: registration, login, the
// protected arithmetic endpoints and the history listing. All rich errors
// are translated to transport status codes in one place.
package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"

	calc "github.com/goliatone/go-calc"
	"github.com/goliatone/go-calc/middleware/bearer"
)

// DefaultStoreTimeout bounds every store call made on behalf of a request.
const DefaultStoreTimeout = 5 * time.Second

type Server struct {
	app          *fiber.App
	auth         calc.Authenticator
	tokens       calc.TokenService
	ops          calc.Operations
	logger       calc.Logger
	storeTimeout time.Duration
}

type Config struct {
	Auth       calc.Authenticator
	Tokens     calc.TokenService
	Operations calc.Operations
	Logger     calc.Logger
	// StoreTimeout caps how long a single request may wait on the store.
	// Zero means DefaultStoreTimeout.
	StoreTimeout time.Duration
}

// New builds the fiber application with all routes registered.
func New(cfg Config) *Server {
	s := &Server{
		auth:         cfg.Auth,
		tokens:       cfg.Tokens,
		ops:          cfg.Operations,
		logger:       cfg.Logger,
		storeTimeout: cfg.StoreTimeout,
	}

	if s.logger == nil {
		s.logger = calc.DefaultLogger()
	}

	if s.storeTimeout <= 0 {
		s.storeTimeout = DefaultStoreTimeout
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "go-calc",
		ErrorHandler: s.errorHandler,
	})

	s.routes()

	return s
}

func (s *Server) routes() {
	s.app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"Hello": "World"})
	})

	s.app.Post("/register", s.handleRegister)
	s.app.Post("/token", s.handleToken)

	protected := bearer.New(bearer.Config{
		Validator:    validatorAdapter{tokens: s.tokens},
		UserLookup:   s.lookupUser,
		ErrorHandler: s.authErrorHandler,
	})

	s.app.Get("/add/:num1/:num2", protected, s.handleOperation("add"))
	s.app.Get("/subtract/:num1/:num2", protected, s.handleOperation("subtract"))
	s.app.Get("/multiply/:num1/:num2", protected, s.handleOperation("multiply"))
	s.app.Get("/history", protected, s.handleHistory)
}

// App exposes the underlying fiber app, mostly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// validatorAdapter lets the bearer middleware consume the calc token
// service without the middleware importing the calc package.
type validatorAdapter struct {
	tokens calc.TokenService
}

func (v validatorAdapter) Validate(tokenString string) (bearer.AuthClaims, error) {
	claims, err := v.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *Server) lookupUser(c *fiber.Ctx, claims bearer.AuthClaims) (any, error) {
	ctx, cancel := s.storeContext(c)
	defer cancel()
	return s.auth.IdentityFromSubject(ctx, claims.Subject())
}

// storeContext bounds store calls so a stalled database fails the request
// instead of hanging it.
func (s *Server) storeContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), s.storeTimeout)
}

// authErrorHandler rejects the request with a uniform 401. Which auth check
// failed is logged, never exposed.
func (s *Server) authErrorHandler(c *fiber.Ctx, err error) error {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		s.logger.Info("Request rejected",
			"path", c.Path(),
			"text_code", richErr.TextCode,
			"error", richErr.Message,
		)
	} else {
		s.logger.Info("Request rejected", "path", c.Path(), "error", err.Error())
	}

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"detail": "Not authenticated",
	})
}

// errorHandler is the single adapter from the rich error taxonomy to
// transport status codes.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"detail": fiberErr.Message})
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		switch richErr.Category {
		case errors.CategoryAuth, errors.CategoryAuthz:
			status = fiber.StatusUnauthorized
		case errors.CategoryValidation, errors.CategoryBadInput, errors.CategoryConflict:
			status = fiber.StatusBadRequest
		default:
			status = fiber.StatusInternalServerError
		}
	}

	if status >= fiber.StatusInternalServerError {
		s.logger.Error("Handler error",
			"path", c.Path(),
			"category", richErr.Category,
			"error", richErr.Message,
		)
		return c.Status(status).JSON(fiber.Map{"detail": "Internal server error"})
	}

	return c.Status(status).JSON(fiber.Map{"detail": richErr.Message})
}
