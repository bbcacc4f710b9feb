// Package handler contains the HTTP handlers for the API.
package handler

import (
	"net/http"
	"time"

	"simpletrader/internal/delivery/api/response"
	"simpletrader/internal/domain/entity"
	domainerrors "simpletrader/internal/domain/errors"
	"simpletrader/internal/errors"
	"simpletrader/internal/usecase"

	"github.com/labstack/echo/v4"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the body of POST /auth/register.
// Password confirmation is compared by the use case, not by the validator.
type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email,max=255"`
	Username        string `json:"username" validate:"required,max=150"`
	Password        string `json:"password" validate:"required,bcryptmax"`
	ConfirmPassword string `json:"confirm_password"`
}

// AccountResponse is the public view of an account. The password hash is never exposed.
type AccountResponse struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	DateJoined time.Time `json:"date_joined"`
}

// RegisterResponse reports a successful registration.
type RegisterResponse struct {
	Result entity.RegistrationResult `json:"result"`
}

var errInvalidRequestBody = domainerrors.NewBaseError(
	http.StatusBadRequest,
	"VALIDATION_ERROR",
	"Invalid request body",
	"",
)

type registrationRejection struct {
	status  int
	code    string
	message string
}

var registrationRejections = map[entity.RegistrationResult]registrationRejection{
	entity.RegistrationPasswordsDoNotMatch: {
		status:  http.StatusBadRequest,
		code:    "PASSWORDS_DO_NOT_MATCH",
		message: "password and confirmation do not match",
	},
	entity.RegistrationEmailAlreadyExists: {
		status:  http.StatusConflict,
		code:    "EMAIL_ALREADY_EXISTS",
		message: "email is already registered",
	},
	entity.RegistrationUsernameAlreadyExists: {
		status:  http.StatusConflict,
		code:    "USERNAME_ALREADY_EXISTS",
		message: "username is already taken",
	},
}

// AuthHandler exposes the authentication use cases over HTTP.
type AuthHandler struct {
	uc usecase.AuthenticationUsecase
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthenticationUsecase) *AuthHandler {
	return &AuthHandler{
		uc: uc,
	}
}

// Login handles the login request.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.uc.Login(c.Request().Context(), &usecase.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toAccountResponse(account))
}

// Register handles the registration request. Rejected registrations are
// reported with their own error codes; only infrastructure failures reach the error handler.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.uc.Register(c.Request().Context(), &usecase.RegisterInput{
		Email:           req.Email,
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	if result.IsSuccess() {
		return response.Success(c, http.StatusCreated, RegisterResponse{Result: result})
	}

	rejection, ok := registrationRejections[result]
	if !ok {
		return errors.Errorf("unexpected registration result: %d", int(result))
	}

	return response.Error(c, rejection.status, rejection.code, rejection.message, map[string]string{
		"result": result.String(),
	})
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"})
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errInvalidRequestBody.WrapMessage(err.Error())
	}

	// Validation errors are rendered by the central error handler
	return errors.WithStack(c.Validate(req))
}

func toAccountResponse(account *entity.Account) *AccountResponse {
	resp := &AccountResponse{
		ID:       account.ID.String(),
		Username: account.Username(),
	}
	if holder := account.AccountHolder; holder != nil {
		resp.Email = holder.Email
		resp.DateJoined = holder.DateJoined
	}

	return resp
}
