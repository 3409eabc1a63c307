package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-auth-api/internal/domain"
	"go-auth-api/internal/service"
	"go-auth-api/internal/transport/http/middleware"
	resp "go-auth-api/internal/transport/http/response"
)

type UserHandler struct {
	Users *service.UserService
}

func (h *UserHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	page, err := h.Users.List(c.Request.Context(), offset, limit)
	if err != nil {
		status, body := resp.FromErr(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, resp.OK(page))
}

func (h *UserHandler) Me(c *gin.Context) {
	claims, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, ""))
		return
	}
	u, err := h.Users.GetByID(c.Request.Context(), claims.UID)
	if err != nil {
		status, body := resp.FromErr(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, resp.OK(u))
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	claims, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, ""))
		return
	}
	var in service.UserUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	u, err := h.Users.UpdateMe(c.Request.Context(), claims.UID, in)
	if err != nil {
		status, body := resp.FromErr(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, resp.OK(u))
}

// DeleteMe deactivates, it does not destroy; the account can come back.
func (h *UserHandler) DeleteMe(c *gin.Context) {
	claims, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, ""))
		return
	}
	if err := h.Users.Deactivate(c.Request.Context(), claims.UID); err != nil {
		status, body := resp.FromErr(err)
		c.JSON(status, body)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) GetByID(c *gin.Context) {
	u, err := h.Users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		status, body := resp.FromErr(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, resp.OK(u))
}

func (h *UserHandler) GetByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, "email query param required"))
		return
	}
	u, err := h.Users.GetByEmail(c.Request.Context(), email)
	if err != nil {
		status, body := resp.FromErr(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, resp.OK(u))
}

func (h *UserHandler) AdminUpdate(c *gin.Context) {
	var in service.AdminUserUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	u, err := h.Users.AdminUpdate(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		status, body := resp.FromErr(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, resp.OK(u))
}

func (h *UserHandler) SoftDelete(c *gin.Context) {
	if err := h.Users.SoftDelete(c.Request.Context(), c.Param("id")); err != nil {
		status, body := resp.FromErr(err)
		c.JSON(status, body)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) HardDelete(c *gin.Context) {
	if err := h.Users.HardDelete(c.Request.Context(), c.Param("id")); err != nil {
		status, body := resp.FromErr(err)
		c.JSON(status, body)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Ban(c *gin.Context) {
	if err := h.Users.Ban(c.Request.Context(), c.Param("id")); err != nil {
		status, body := resp.FromErr(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, resp.OK(nil))
}

type assignRoleIn struct {
	Role domain.Role `json:"role" binding:"required"`
}

func (h *UserHandler) AssignRole(c *gin.Context) {
	var in assignRoleIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	u, err := h.Users.AssignRole(c.Request.Context(), c.Param("id"), in.Role)
	if err != nil {
		status, body := resp.FromErr(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, resp.OK(u))
}
