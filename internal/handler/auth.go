package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/contact-book/internal/response"
	"github.com/iliyamo/contact-book/internal/service"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	svc *service.AuthService
}

// NewAuthHandler constructs an AuthHandler around the auth service.
func NewAuthHandler(svc *service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

type credentialsReq struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Register creates an account and returns its first access token.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if err := bindBody(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.svc.Register(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	return response.Created(c, res, "User registered successfully")
}

// Login exchanges credentials for an access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := bindBody(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, res, "User logged in successfully")
}
