package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/magicauth/internal/middleware"
	"github.com/xxxsen/magicauth/internal/pkg/errcode"
	appErr "github.com/xxxsen/magicauth/internal/pkg/errors"
	"github.com/xxxsen/magicauth/internal/pkg/response"
	"github.com/xxxsen/magicauth/internal/service"
)

type AuthHandler struct {
	issuer   *service.TokenIssuer
	verifier *service.TokenVerifier
	revoker  *service.SessionRevoker
	users    *service.UserService
	devMode  bool
}

func NewAuthHandler(issuer *service.TokenIssuer, verifier *service.TokenVerifier, revoker *service.SessionRevoker, users *service.UserService, devMode bool) *AuthHandler {
	return &AuthHandler{
		issuer:   issuer,
		verifier: verifier,
		revoker:  revoker,
		users:    users,
		devMode:  devMode,
	}
}

type loginRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalidEmail, "email required")
		return
	}
	if err := h.issuer.Issue(c.Request.Context(), req.Email, requestOrigin(c)); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"success": true})
}

func (h *AuthHandler) Verify(c *gin.Context) {
	tok := c.Query("token")
	if tok == "" {
		response.Error(c, http.StatusBadRequest, errcode.ErrTokenInvalid, "missing token")
		return
	}
	result, err := h.verifier.Redeem(c.Request.Context(), tok)
	if err != nil {
		handleError(c, err)
		return
	}
	middleware.SetSessionCookie(c, result.Session.Token, result.Session.ExpiresAt, !h.devMode)
	c.Redirect(http.StatusFound, "/")
}

// Logout always clears the cookie. A store failure still answers 500 since
// the session would otherwise outlive the logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	tok, _ := c.Cookie(middleware.SessionCookie)
	middleware.ClearSessionCookie(c, !h.devMode)
	if err := h.revoker.Revoke(c.Request.Context(), tok); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"success": true})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID := getUserID(c)
	if userID == "" {
		response.Success(c, gin.H{"authenticated": false})
		return
	}
	user, err := h.users.GetUser(c.Request.Context(), userID)
	if errors.Is(err, appErr.ErrNotFound) {
		logutil.GetLogger(c.Request.Context()).Warn("session points at missing user", zap.String("user_id", userID))
		response.Success(c, gin.H{"authenticated": false})
		return
	}
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"authenticated": true, "user": user})
}
