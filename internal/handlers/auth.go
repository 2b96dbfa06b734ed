package handlers

import (
	"errors"
	"net/http"

	"github.com/Jairo-Bargas/Api-project/internal/auth"
	dom "github.com/Jairo-Bargas/Api-project/internal/domain"
	"github.com/Jairo-Bargas/Api-project/internal/dto"
	"github.com/Jairo-Bargas/Api-project/internal/service"
	"github.com/Jairo-Bargas/Api-project/internal/validation"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles registration, login and account deletion.
type AuthHandler struct {
	tokens  *auth.TokenIssuer
	userSvc *service.UserService
}

// NewAuthHandler returns a new AuthHandler.
func NewAuthHandler(tokens *auth.TokenIssuer, userSvc *service.UserService) *AuthHandler {
	return &AuthHandler{tokens: tokens, userSvc: userSvc}
}

// Register godoc
// @Summary      Register a user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  map[string]string  true  "username, email, password"
// @Success      201   {object}  map[string]any
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /registro [post]
func (h *AuthHandler) Register(c *gin.Context) {
	payload, ok := bindObject(c)
	if !ok {
		return
	}
	if err := validation.Usuario(payload); err != nil {
		respondValidation(c, err)
		return
	}
	username := payload["username"].(string)
	email := payload["email"].(string)
	password := payload["password"].(string)

	user, err := h.userSvc.Register(c.Request.Context(), username, email, password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			respondError(c, http.StatusBadRequest, KindDuplicado, "El username ya esta en uso")
		case errors.Is(err, service.ErrEmailTaken):
			respondError(c, http.StatusBadRequest, KindDuplicado, "El email ya esta en uso")
		default:
			respondInternal(c, err)
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"mensaje": "Usuario registrado exitosamente",
		"usuario": userToResponse(user),
	})
}

// Login godoc
// @Summary      Log in and get a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "Credentials"
// @Success      200   {object}  map[string]any
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, KindValidacion, "Username y password son obligatorios")
		return
	}
	user, err := h.userSvc.ValidateCredentials(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			// One message for both unknown user and wrong password.
			respondError(c, http.StatusUnauthorized, KindCredenciales, "Credenciales invalidas")
			return
		}
		respondInternal(c, err)
		return
	}
	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"usuario":      userToResponse(user),
	})
}

// DeleteAccount godoc
// @Summary      Delete the authenticated account and all its tareas
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /cuenta [delete]
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	if err := h.userSvc.DeleteAccount(c.Request.Context(), userID); err != nil {
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "Cuenta eliminada exitosamente"})
}

func userToResponse(u dom.User) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FechaCreacion: u.CreatedAt,
	}
}
