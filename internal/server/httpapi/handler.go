package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/userbase/internal/common"
	"github.com/dmitrijs2005/userbase/internal/logging"
	"github.com/dmitrijs2005/userbase/internal/server/auth"
	"github.com/dmitrijs2005/userbase/internal/server/models"
	"github.com/dmitrijs2005/userbase/internal/server/services"
	"github.com/gin-gonic/gin"
)

// loginFailedMessage is shared by unknown-email and wrong-password failures.
const loginFailedMessage = "invalid email or password"

// UserService is the business API the handlers depend on.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*models.PublicUser, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Identify(ctx context.Context, claims *auth.Claims) (*models.PublicUser, error)
	List(ctx context.Context) ([]models.PublicUser, error)
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type Handler struct {
	users   UserService
	logger  logging.Logger
	metrics *Metrics
}

func NewHandler(users UserService, logger logging.Logger, metrics *Metrics) *Handler {
	return &Handler{users: users, logger: logger, metrics: metrics}
}

func (h *Handler) Health(c *gin.Context) {
	respondSuccess(c, http.StatusOK, "ok", gin.H{"status": "ok"})
}

func (h *Handler) ListUsers(c *gin.Context) {
	list, err := h.users.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "users retrieved", list)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.registration(outcomeRejected)
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.metrics.registration(outcomeFor(err))
		h.fail(c, err)
		return
	}

	h.metrics.registration(outcomeSuccess)
	h.logger.Info(c.Request.Context(), "user registered", "user_id", user.ID)
	respondSuccess(c, http.StatusCreated, "user created", user)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.login(outcomeRejected)
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.login(outcomeFor(err))
		if errors.Is(err, common.ErrNotFound) || errors.Is(err, common.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, loginFailedMessage)
			return
		}
		h.fail(c, err)
		return
	}

	h.metrics.login(outcomeSuccess)
	respondSuccess(c, http.StatusOK, "login successful", res)
}

// Me answers with the caller's own record. It must run behind RequireIdentity.
func (h *Handler) Me(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(c, http.StatusUnauthorized, auth.RejectionReason(common.ErrInvalidToken))
		return
	}

	user, err := h.users.Identify(ctx, &id.Claims)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			respondError(c, http.StatusNotFound, "user not found")
			return
		}
		h.fail(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "current user", user)
}

// fail maps service errors onto status codes. Internal details never reach
// the client; 5xx causes are logged.
func (h *Handler) fail(c *gin.Context, err error) {
	ctx := c.Request.Context()

	switch {
	case errors.Is(err, common.ErrValidation):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrDuplicateEmail):
		respondError(c, http.StatusConflict, common.ErrDuplicateEmail.Error())
	case errors.Is(err, common.ErrNotFound):
		respondError(c, http.StatusNotFound, common.ErrNotFound.Error())
	case errors.Is(err, common.ErrStorageUnavailable):
		h.logger.Error(ctx, "storage failure", "path", c.FullPath(), "error", err)
		respondError(c, http.StatusServiceUnavailable, common.ErrStorageUnavailable.Error())
	default:
		h.logger.Error(ctx, "request failed", "path", c.FullPath(), "error", err)
		respondError(c, http.StatusInternalServerError, common.ErrInternal.Error())
	}
}
