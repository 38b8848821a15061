package server

import (
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"

	calc "github.com/goliatone/go-calc"
	"github.com/goliatone/go-calc/middleware/bearer"
)

// TokenResponse is the payload returned by /register and /token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type RegisterPayload struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 100)),
	)
}

type LoginPayload struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (s *Server) handleRegister(c *fiber.Ctx) error {
	var payload RegisterPayload
	if err := c.BodyParser(&payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "unable to parse registration payload").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, err.Error()).
			WithCode(errors.CodeBadRequest)
	}

	ctx, cancel := s.storeContext(c)
	defer cancel()

	token, err := s.auth.Register(ctx, calc.RegisterUserMessage{
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleToken(c *fiber.Ctx) error {
	var payload LoginPayload
	if err := c.BodyParser(&payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "unable to parse login payload").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		// A missing field is still just a failed login to the caller.
		return calc.ErrInvalidCredentials
	}

	ctx, cancel := s.storeContext(c)
	defer cancel()

	token, err := s.auth.Login(ctx, payload.Username, payload.Password)
	if err != nil {
		return err
	}

	return c.JSON(TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleOperation(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		num1, err := strconv.ParseFloat(c.Params("num1"), 64)
		if err != nil {
			return errors.New("num1 must be a number", errors.CategoryBadInput).
				WithCode(errors.CodeBadRequest)
		}

		num2, err := strconv.ParseFloat(c.Params("num2"), 64)
		if err != nil {
			return errors.New("num2 must be a number", errors.CategoryBadInput).
				WithCode(errors.CodeBadRequest)
		}

		var result float64
		switch name {
		case "add":
			result = num1 + num2
		case "subtract":
			result = num1 - num2
		case "multiply":
			result = num1 * num2
		default:
			return errors.New("unknown operation", errors.CategoryBadInput).
				WithCode(errors.CodeBadRequest)
		}

		user := userFromLocals(c)
		if user == nil {
			return calc.ErrIdentityNotFound
		}

		ctx, cancel := s.storeContext(c)
		defer cancel()

		if _, err := s.ops.Record(ctx, &calc.Operation{
			Name:   name,
			Num1:   num1,
			Num2:   num2,
			Result: result,
			UserID: user.ID,
		}); err != nil {
			return err
		}

		s.logger.Info("Operation performed",
			"operation", name,
			"username", user.Username,
			"num1", num1,
			"num2", num2,
			"result", result,
		)

		return c.JSON(fiber.Map{"result": result})
	}
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	ctx, cancel := s.storeContext(c)
	defer cancel()

	ops, err := s.ops.Latest(ctx, calc.DefaultHistoryLimit)
	if err != nil {
		return err
	}

	return c.JSON(ops)
}

func userFromLocals(c *fiber.Ctx) *calc.User {
	user, _ := c.Locals(bearer.DefaultContextKey).(*calc.User)
	return user
}
