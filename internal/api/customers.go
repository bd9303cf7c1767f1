package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"timesheet-api/internal/usecase"
)

type Customers struct {
	log *logrus.Logger
	uc  *usecase.Customers
}

func NewCustomerHandler(uc *usecase.Customers, log *logrus.Logger) *Customers {
	return &Customers{log: log, uc: uc}
}

func (h *Customers) EnrichRoutes(public, authed, privileged *gin.RouterGroup) {
	public.POST("/customers", h.registerAction)
	public.GET("/customers/confirm", h.confirmAction)
	public.POST("/customers/resend-verification", h.resendVerificationAction)
	public.POST("/customers/login", h.loginAction)
	public.POST("/customers/reset", h.resetRequestAction)
	public.POST("/customers/reset-password", h.resetPasswordAction)

	authed.POST("/customers/logout", h.logoutAction)
	authed.GET("/customers/:id", h.getAction)
	authed.PATCH("/customers/:id", h.updateAction)
	authed.GET("/customers/:id/stats", h.statsAction)
	privileged.POST("/customers/:id/role", h.addRoleAction)
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Customers) registerAction(c *gin.Context) {
	const op = "api.Customers.registerAction"
	log := h.log.WithField("operation", op)

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, log, bindingError(err))
		return
	}
	cust, err := h.uc.Register(c.Request.Context(), usecase.RegisterInput{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		handleError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, cust)
}

func (h *Customers) confirmAction(c *gin.Context) {
	const op = "api.Customers.confirmAction"
	log := h.log.WithField("operation", op)

	uid, err := parseInt64(c.Query("uid"))
	if err != nil {
		handleError(c, log, err)
		return
	}
	if err := h.uc.Confirm(c.Request.Context(), uid, c.Query("token")); err != nil {
		handleError(c, log, err)
		return
	}
	if redirect := c.Query("redirect"); redirect != "" {
		c.Redirect(http.StatusFound, redirect)
		return
	}
	c.Status(http.StatusNoContent)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Customers) loginAction(c *gin.Context) {
	const op = "api.Customers.loginAction"
	log := h.log.WithField("operation", op)

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, log, bindingError(err))
		return
	}
	res, err := h.uc.Login(c.Request.Context(), usecase.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		handleError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Customers) logoutAction(c *gin.Context) {
	const op = "api.Customers.logoutAction"
	if err := h.uc.Logout(c.Request.Context(), tokenFrom(c)); err != nil {
		handleError(c, h.log.WithField("operation", op), err)
		return
	}
	c.Status(http.StatusNoContent)
}

// emailRequest carries a bare email for the reset and resend routes.
type emailRequest struct {
	Email string `json:"email" binding:"required"`
}

func (h *Customers) resetRequestAction(c *gin.Context) {
	const op = "api.Customers.resetRequestAction"
	log := h.log.WithField("operation", op)

	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, log, bindingError(err))
		return
	}
	if err := h.uc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		handleError(c, log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Customers) resendVerificationAction(c *gin.Context) {
	const op = "api.Customers.resendVerificationAction"
	log := h.log.WithField("operation", op)

	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, log, bindingError(err))
		return
	}
	if err := h.uc.ResendVerification(c.Request.Context(), req.Email); err != nil {
		handleError(c, log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword" binding:"required"`
}

func (h *Customers) resetPasswordAction(c *gin.Context) {
	const op = "api.Customers.resetPasswordAction"
	log := h.log.WithField("operation", op)

	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, log, bindingError(err))
		return
	}
	token := req.Token
	if token == "" {
		token = tokenFrom(c)
	}
	if err := h.uc.ResetPassword(c.Request.Context(), token, req.NewPassword); err != nil {
		handleError(c, log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Customers) getAction(c *gin.Context) {
	const op = "api.Customers.getAction"
	log := h.log.WithField("operation", op)

	id, err := pathID(c)
	if err != nil {
		handleError(c, log, err)
		return
	}
	cust, err := h.uc.Get(c.Request.Context(), principal(c), id)
	if err != nil {
		handleError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, cust)
}

type customerPatch struct {
	Name *string `json:"name"`
}

func (h *Customers) updateAction(c *gin.Context) {
	const op = "api.Customers.updateAction"
	log := h.log.WithField("operation", op)

	id, err := pathID(c)
	if err != nil {
		handleError(c, log, err)
		return
	}
	var req customerPatch
	keys, err := patchFields(c, &req)
	if err != nil {
		handleError(c, log, err)
		return
	}
	_, emailSet := keys["email"]
	cust, err := h.uc.Update(c.Request.Context(), principal(c), id, usecase.CustomerUpdate{Name: req.Name, EmailSet: emailSet})
	if err != nil {
		handleError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, cust)
}

type roleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *Customers) addRoleAction(c *gin.Context) {
	const op = "api.Customers.addRoleAction"
	log := h.log.WithField("operation", op)

	id, err := pathID(c)
	if err != nil {
		handleError(c, log, err)
		return
	}
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, log, bindingError(err))
		return
	}
	if err := h.uc.AddRole(c.Request.Context(), id, req.Role); err != nil {
		handleError(c, log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Customers) statsAction(c *gin.Context) {
	const op = "api.Customers.statsAction"
	log := h.log.WithField("operation", op)

	id, err := pathID(c)
	if err != nil {
		handleError(c, log, err)
		return
	}
	st, err := h.uc.Stats(c.Request.Context(), principal(c), id)
	if err != nil {
		handleError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
