package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/go-user-lifecycle/internal/application"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/repository"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/service"
	"github.com/oksasatya/go-user-lifecycle/internal/interface/middleware"
	"github.com/oksasatya/go-user-lifecycle/pkg/helpers"
	"github.com/oksasatya/go-user-lifecycle/pkg/response"
	"github.com/oksasatya/go-user-lifecycle/pkg/validation"
)

type UserHandler struct {
	Svc    *userapp.Service
	Views  repository.UserReadModelRepository
	Search repository.UserSearcher
	Logger *logrus.Logger
	// Tokens mints the user-role token returned on activation. Nil disables it.
	Tokens *helpers.JWTManager
}

func NewUserHandler(svc *userapp.Service, views repository.UserReadModelRepository, search repository.UserSearcher, logger *logrus.Logger) *UserHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &UserHandler{Svc: svc, Views: views, Search: search, Logger: logger}
}

func (h *UserHandler) WithTokens(m *helpers.JWTManager) *UserHandler {
	h.Tokens = m
	return h
}

type registerRequest struct {
	Login    string `json:"login" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type changePasswordRequest struct {
	Password string `json:"password" binding:"required,pwd"`
}

type userResponse struct {
	ID      int64  `json:"id"`
	Login   string `json:"login"`
	State   string `json:"state"`
	Active  bool   `json:"active"`
	Enabled bool   `json:"enabled"`
	Version int    `json:"version"`
}

type activationResponse struct {
	User      userResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

func toUserResponse(u *entity.User) userResponse {
	return userResponse{
		ID:      u.ID().Int64(),
		Login:   u.Login().String(),
		State:   u.State().String(),
		Active:  u.IsActive(),
		Enabled: u.IsEnabled(),
		Version: u.Version(),
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.JSON(c, response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err)))
		return
	}
	cmd, err := userapp.NewRegisterUserCommand(req.Login, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), cmd)
	h.done(c, http.StatusCreated, "user registered", u, err)
}

// Activate consumes the hash and, when a token issuer is set, hands back a
// user-role bearer token for the account's own routes.
func (h *UserHandler) Activate(c *gin.Context) {
	u, err := h.Svc.Activate(c.Request.Context(), userapp.ActivateUserCommand{ActivationHash: c.Param("hash")})
	if err != nil || h.Tokens == nil {
		h.done(c, http.StatusOK, "user activated", u, err)
		return
	}
	tok, exp, err := h.Tokens.GenerateToken(u.ID().String(), helpers.RoleUser)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", u.ID().Int64()).Warn("issue user token failed")
		h.done(c, http.StatusOK, "user activated", u, nil)
		return
	}
	out := activationResponse{User: toUserResponse(u), Token: tok, ExpiresAt: exp}
	response.JSON(c, response.Success(c, http.StatusOK, out, "user activated", nil))
}

func (h *UserHandler) Enable(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	u, err := h.Svc.Enable(c.Request.Context(), userapp.EnableUserCommand{UserID: id})
	h.done(c, http.StatusOK, "user enabled", u, err)
}

func (h *UserHandler) Disable(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	u, err := h.Svc.Disable(c.Request.Context(), userapp.DisableUserCommand{UserID: id})
	h.done(c, http.StatusOK, "user disabled", u, err)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	id, ok := h.selfOrOperator(c)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.JSON(c, response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err)))
		return
	}
	cmd, err := userapp.NewChangePasswordCommand(id, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	u, err := h.Svc.ChangePassword(c.Request.Context(), cmd)
	h.done(c, http.StatusOK, "password changed", u, err)
}

func (h *UserHandler) Unregister(c *gin.Context) {
	id, ok := h.selfOrOperator(c)
	if !ok {
		return
	}
	u, err := h.Svc.Unregister(c.Request.Context(), userapp.UnregisterUserCommand{UserID: id})
	h.done(c, http.StatusOK, "user unregistered", u, err)
}

// Get serves the projection when a read model is configured and falls back
// to replaying the stream otherwise.
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := h.selfOrOperator(c)
	if !ok {
		return
	}
	if h.Views != nil {
		v, err := h.Views.Get(c.Request.Context(), id.Int64())
		if err != nil {
			h.fail(c, err)
			return
		}
		response.JSON(c, response.Success(c, http.StatusOK, v, "user", nil))
		return
	}
	u, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.JSON(c, response.Success(c, http.StatusOK, toUserResponse(u), "user", nil))
}

func (h *UserHandler) SearchUsers(c *gin.Context) {
	if h.Search == nil {
		response.JSON(c, response.Success(c, http.StatusOK, []repository.UserView{}, "search unavailable", nil))
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	res, err := h.Search.Search(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		h.Logger.WithError(err).Warn("user search failed")
		h.fail(c, err)
		return
	}
	response.JSON(c, response.Success(c, http.StatusOK, res, "users", map[string]any{"count": len(res)}))
}

func (h *UserHandler) userID(c *gin.Context) (entity.UserID, bool) {
	id, err := entity.ParseUserID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return entity.UserID{}, false
	}
	return id, true
}

// selfOrOperator parses :id and lets through its owner or an operator.
func (h *UserHandler) selfOrOperator(c *gin.Context) (entity.UserID, bool) {
	id, ok := h.userID(c)
	if !ok {
		return id, false
	}
	if middleware.IsOperator(c) || c.GetString(middleware.CtxUserIDKey) == id.String() {
		return id, true
	}
	response.JSON(c, response.Error[any](c, http.StatusForbidden, "not allowed to act on this user", nil))
	return id, false
}

func (h *UserHandler) done(c *gin.Context, status int, msg string, u *entity.User, err error) {
	if errors.Is(err, userapp.ErrEventDispatch) {
		h.Logger.WithError(err).WithField("user_id", u.ID().Int64()).Warn("command committed, side effects failed")
		response.JSON(c, response.Success(c, http.StatusAccepted, toUserResponse(u), msg+"; follow-up processing failed", nil))
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	response.JSON(c, response.Success(c, status, toUserResponse(u), msg, nil))
}

func (h *UserHandler) fail(c *gin.Context, err error) {
	status, msg := StatusFor(err)
	var details any
	var rej *service.PasswordRejection
	switch {
	case errors.As(err, &rej):
		details = map[string]string{"password": rej.Reason, "rule": rej.Rule}
	case status < http.StatusInternalServerError:
		details = err.Error()
	default:
		h.Logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	response.JSON(c, response.Error[any](c, status, msg, details))
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, entity.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid argument"
	case errors.Is(err, entity.ErrUserAlreadyExists):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, entity.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, entity.ErrPasswordRejected):
		return http.StatusUnprocessableEntity, "password rejected"
	case errors.Is(err, entity.ErrInvalidStateTransition):
		return http.StatusConflict, "invalid state transition"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
