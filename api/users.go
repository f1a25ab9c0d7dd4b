package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"todo-api/domain"
)

type authResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    domain.User `json:"user"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func registerUser(store Store, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var req registerRequest
		if err := decodeBody(c, &req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := domain.ValidateRegistration(req.Name, req.Email, req.Password); err != nil {
			return respondValidation(c, err)
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		existing, err := store.GetUserByEmail(ctx, email)
		if err != nil {
			return internalError(c, err)
		}
		if existing != nil {
			return badRequest(c, "User already exists with this email")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return internalError(c, err)
		}

		now := time.Now()
		user := domain.User{
			ID:           uuid.NewString(),
			Name:         strings.TrimSpace(req.Name),
			Email:        email,
			PasswordHash: string(hash),
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := store.InsertUser(ctx, user); err != nil {
			return internalError(c, err)
		}

		token, err := auth.GenerateToken(user.ID)
		if err != nil {
			return internalError(c, err)
		}
		return c.JSON(http.StatusCreated, authResponse{
			Message: "User registered successfully",
			Token:   token,
			User:    user,
		})
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func loginUser(store Store, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var req loginRequest
		if err := decodeBody(c, &req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if req.Email == "" || req.Password == "" {
			return badRequest(c, "Email and password are required")
		}

		user, err := store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
		if err != nil {
			return internalError(c, err)
		}
		// The same message covers unknown email and wrong password so the
		// response does not reveal which one failed.
		if user == nil {
			return badRequest(c, "Invalid email or password")
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			return badRequest(c, "Invalid email or password")
		}
		if !user.IsActive {
			return unauthorized(c, "Account is deactivated. Please contact support.")
		}

		token, err := auth.GenerateToken(user.ID)
		if err != nil {
			return internalError(c, err)
		}
		return c.JSON(http.StatusOK, authResponse{
			Message: "Login successful",
			Token:   token,
			User:    *user,
		})
	}
}

func currentUser(store Store, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		user, err := resolveAccount(ctx, store, auth, c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return respondAuthFailure(c, err)
		}
		return c.JSON(http.StatusOK, map[string]domain.User{"user": *user})
	}
}
