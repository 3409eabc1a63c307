package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-auth-api/internal/service"
	"go-auth-api/internal/transport/http/middleware"
	resp "go-auth-api/internal/transport/http/response"
)

const refreshCookie = "refresh_token"

type AuthHandler struct {
	Auth       *service.AuthService
	Users      *service.UserService
	TwoFactor  *service.TwoFactorService
	RefreshTTL time.Duration
	CookieDom  string
	CookieSec  bool
}

type registerIn struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name" binding:"omitempty,max=64"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var in registerIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	u, err := h.Auth.Register(c.Request.Context(), in.Email, in.Password, in.Name)
	if err != nil {
		status, body := resp.FromErr(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusCreated, resp.OK(u))
}

type loginIn struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	TOTPCode string `json:"totpCode" binding:"omitempty,len=6"`
}

type loginOut struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
	User        any    `json:"user,omitempty"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var in loginIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	pair, u, err := h.Auth.Login(c.Request.Context(), in.Email, in.Password, in.TOTPCode)
	if err != nil {
		status, body := resp.FromErr(err)
		c.JSON(status, body)
		return
	}
	h.setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusOK, resp.OK(loginOut{
		AccessToken: pair.AccessToken,
		ExpiresIn:   pair.ExpiresIn,
		User:        u,
	}))
}

type refreshIn struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	raw := h.refreshTokenFrom(c)
	pair, err := h.Auth.Refresh(c.Request.Context(), raw)
	if err != nil {
		h.clearRefreshCookie(c)
		status, body := resp.FromErr(err)
		c.JSON(status, body)
		return
	}
	h.setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusOK, resp.OK(loginOut{
		AccessToken: pair.AccessToken,
		ExpiresIn:   pair.ExpiresIn,
	}))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	raw := h.refreshTokenFrom(c)
	if err := h.Auth.Logout(c.Request.Context(), raw); err != nil {
		status, body := resp.FromErr(err)
		c.JSON(status, body)
		return
	}
	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, resp.OK(nil))
}

type twoFactorCodeIn struct {
	Code string `json:"code" binding:"required,len=6"`
}

func (h *AuthHandler) TwoFactorSetup(c *gin.Context) {
	claims, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, ""))
		return
	}
	// label the otpauth entry with the user's email, not the opaque id
	account := claims.UID
	if u, err := h.Users.GetByID(c.Request.Context(), claims.UID); err == nil {
		account = u.Email
	}
	setup, err := h.TwoFactor.Setup(c.Request.Context(), claims.UID, account)
	if err != nil {
		status, body := resp.FromErr(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, resp.OK(setup))
}

func (h *AuthHandler) TwoFactorEnable(c *gin.Context) {
	claims, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, ""))
		return
	}
	var in twoFactorCodeIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	if err := h.TwoFactor.Enable(c.Request.Context(), claims.UID, in.Code); err != nil {
		status, body := resp.FromErr(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, resp.OK(nil))
}

func (h *AuthHandler) TwoFactorDisable(c *gin.Context) {
	claims, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, ""))
		return
	}
	if err := h.TwoFactor.Disable(c.Request.Context(), claims.UID); err != nil {
		status, body := resp.FromErr(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, resp.OK(nil))
}

// refreshTokenFrom prefers the httpOnly cookie; JSON body is the fallback
// for non-browser clients.
func (h *AuthHandler) refreshTokenFrom(c *gin.Context) string {
	if v, err := c.Cookie(refreshCookie); err == nil && v != "" {
		return v
	}
	var in refreshIn
	if err := c.ShouldBindJSON(&in); err == nil {
		return in.RefreshToken
	}
	return ""
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, raw string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookie, raw, int(h.RefreshTTL.Seconds()), "/api/v1/auth", h.CookieDom, h.CookieSec, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookie, "", -1, "/api/v1/auth", h.CookieDom, h.CookieSec, true)
}
