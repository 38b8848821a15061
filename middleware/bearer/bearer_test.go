package bearer_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-calc/middleware/bearer"
)

type stubClaims struct {
	subject string
}

func (c stubClaims) Subject() string { return c.subject }
func (c stubClaims) UserID() string  { return c.subject }

type stubValidator struct {
	claims bearer.AuthClaims
	err    error
}

func (v stubValidator) Validate(token string) (bearer.AuthClaims, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.claims, nil
}

func newApp(cfg bearer.Config) *fiber.App {
	app := fiber.New()
	app.Get("/protected", bearer.New(cfg), func(c *fiber.Ctx) error {
		claims, _ := c.Locals(bearer.DefaultClaimsContextKey).(bearer.AuthClaims)
		if claims == nil {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(fiber.Map{"subject": claims.Subject()})
	})
	return app
}

func TestMiddlewareRejectsMissingHeader(t *testing.T) {
	app := newApp(bearer.Config{Validator: stubValidator{claims: stubClaims{subject: "alice"}}})

	tests := []struct {
		name   string
		header string
	}{
		{name: "No header", header: ""},
		{name: "Wrong scheme", header: "Basic abc123"},
		{name: "Scheme without token", header: "Bearer "},
		{name: "Scheme without separator", header: "Bearerxabc123"},
		{name: "Bare token", header: "sometoken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}

			res, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
		})
	}
}

func TestMiddlewareRejectsInvalidToken(t *testing.T) {
	app := newApp(bearer.Config{Validator: stubValidator{err: bearer.ErrMissingToken}})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer bad-token")

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestMiddlewarePassesValidToken(t *testing.T) {
	app := newApp(bearer.Config{Validator: stubValidator{claims: stubClaims{subject: "alice"}}})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer good-token")

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}

func TestMiddlewareUserLookup(t *testing.T) {
	type account struct{ Name string }

	app := fiber.New()
	app.Get("/protected", bearer.New(bearer.Config{
		Validator: stubValidator{claims: stubClaims{subject: "alice"}},
		UserLookup: func(c *fiber.Ctx, claims bearer.AuthClaims) (any, error) {
			return &account{Name: claims.Subject()}, nil
		},
	}), func(c *fiber.Ctx) error {
		user, ok := c.Locals(bearer.DefaultContextKey).(*account)
		require.True(t, ok)
		return c.SendString(user.Name)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer good-token")

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}

func TestMiddlewareUserLookupFailure(t *testing.T) {
	app := fiber.New()
	app.Get("/protected", bearer.New(bearer.Config{
		Validator: stubValidator{claims: stubClaims{subject: "alice"}},
		UserLookup: func(c *fiber.Ctx, claims bearer.AuthClaims) (any, error) {
			return nil, bearer.ErrMissingToken
		},
	}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer good-token")

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestMiddlewareFilter(t *testing.T) {
	app := fiber.New()
	app.Get("/open", bearer.New(bearer.Config{
		Validator: stubValidator{err: bearer.ErrMissingToken},
		Filter: func(c *fiber.Ctx) bool {
			return true
		},
	}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/open", nil)

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}

func TestTokenFromHeader(t *testing.T) {
	app := fiber.New()

	var token string
	var extractErr error
	app.Get("/", func(c *fiber.Ctx) error {
		token, extractErr = bearer.TokenFromHeader(c, "Bearer")
		return c.SendStatus(fiber.StatusOK)
	})

	tests := []struct {
		name    string
		header  string
		token   string
		wantErr error
	}{
		// Scheme matching is case insensitive.
		{name: "Lowercase scheme", header: "bearer lower-scheme-token", token: "lower-scheme-token"},
		{name: "Exact scheme", header: "Bearer abc123", token: "abc123"},
		// Only a space separates scheme and token.
		{name: "No separator", header: "BearerXabc123", wantErr: bearer.ErrMissingToken},
		{name: "Tab separator", header: "Bearer\tabc123", wantErr: bearer.ErrMissingToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(fiber.HeaderAuthorization, tt.header)

			_, err := app.Test(req)
			require.NoError(t, err)

			if tt.wantErr != nil {
				assert.ErrorIs(t, extractErr, tt.wantErr)
				return
			}

			require.NoError(t, extractErr)
			assert.Equal(t, tt.token, token)
		})
	}
}
