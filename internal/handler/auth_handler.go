package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Bhaskar-scientist/Valut-Craft/internal/cqrs"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/middleware"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/models"
)

// AuthCommander defines the write-side operations used by AuthHandler.
type AuthCommander interface {
	Register(context.Context, cqrs.RegisterCommand) (*models.User, *models.Organization, error)
}

// AuthQuerier defines the read-side operations used by AuthHandler.
type AuthQuerier interface {
	Login(context.Context, cqrs.LoginCommand) (string, error)
	RefreshToken(context.Context, cqrs.RefreshTokenCommand) (string, error)
	TokenTTL() time.Duration
	GetUser(context.Context, cqrs.GetUserQuery) (*models.UserView, *models.Organization, error)
}

type AuthHandler struct {
	commands AuthCommander
	queries  AuthQuerier
}

type SignupRequest struct {
	OrganizationName string `json:"organizationName" validate:"required,max=255"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type AuthResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int    `json:"expiresIn"`
}

type SignupResponse struct {
	AuthResponse
	User         *models.User         `json:"user"`
	Organization *models.Organization `json:"organization"`
}

func NewAuthHandler(commands AuthCommander, queries AuthQuerier) *AuthHandler {
	return &AuthHandler{commands: commands, queries: queries}
}

// Signup provisions a new organization together with its first user and
// logs that user in.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	user, org, err := h.commands.Register(c.Request.Context(), cqrs.RegisterCommand{
		OrganizationName: req.OrganizationName,
		Email:            req.Email,
		Password:         req.Password,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	token, err := h.queries.Login(c.Request.Context(), cqrs.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	c.JSON(http.StatusCreated, SignupResponse{
		AuthResponse: h.authResponse(token),
		User:         user,
		Organization: org,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	token, err := h.queries.Login(c.Request.Context(), cqrs.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	c.JSON(http.StatusOK, h.authResponse(token))
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	token, err := h.queries.RefreshToken(c.Request.Context(), cqrs.RefreshTokenCommand{
		Token: req.Token,
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	c.JSON(http.StatusOK, h.authResponse(token))
}

// Me returns the authenticated user's profile and organization.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	view, org, err := h.queries.GetUser(c.Request.Context(), cqrs.GetUserQuery{UserID: userID})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         view,
		"organization": org,
	})
}

func (h *AuthHandler) authResponse(token string) AuthResponse {
	return AuthResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(h.queries.TokenTTL().Minutes()),
	}
}
