package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/devfury/ezcaretech-auth/internal/core"
	"github.com/devfury/ezcaretech-auth/internal/flow"
	"github.com/devfury/ezcaretech-auth/internal/middleware"
	"github.com/devfury/ezcaretech-auth/internal/models"
)

type AuthHandler struct {
	runner     *flow.Runner
	providerID string
	realm      string
	logger     logrus.FieldLogger
}

func NewAuthHandler(
	runner *flow.Runner,
	providerID, realm string,
	logger logrus.FieldLogger,
) *AuthHandler {
	return &AuthHandler{
		runner:     runner,
		providerID: providerID,
		realm:      realm,
		logger:     logger,
	}
}

// Login runs the configured authentication step against the posted form.
// On success the user is stored in the session.
func (h *AuthHandler) Login(c *gin.Context) {
	realm := c.Param("realm")
	if realm != h.realm {
		c.JSON(http.StatusNotFound, gin.H{"error": "realm_not_found"})
		return
	}

	if err := c.Request.ParseForm(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	out, err := h.runner.Run(c.Request.Context(), h.providerID, realm, c.Request.PostForm)
	if err != nil {
		h.logger.WithError(err).WithField("realm", realm).Error("failed to run authentication flow")
		c.JSON(http.StatusInternalServerError, gin.H{"error": string(core.FlowErrorInternalError)})
		return
	}

	switch {
	case out.Succeeded():
		session := sessions.Default(c)
		session.Clear()
		session.Set(middleware.SessionUserID, out.User.ID)
		session.Set(middleware.SessionUsername, out.User.Username)
		session.Set(middleware.SessionRealm, realm)
		if err := session.Save(); err != nil {
			h.logger.WithError(err).Error("failed to save session")
			c.JSON(http.StatusInternalServerError, gin.H{"error": string(core.FlowErrorInternalError)})
			return
		}
		c.Request = c.Request.WithContext(models.SetUserContext(c.Request.Context(), out.User))
		c.JSON(http.StatusOK, newUserResponse(out.User))

	case out.Response != nil:
		c.Data(out.Response.Status, out.Response.ContentType, []byte(out.Response.Body))

	case out.Error == core.FlowErrorInvalidUser:
		c.JSON(http.StatusUnauthorized, gin.H{"error": string(out.Error)})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": string(core.FlowErrorInternalError)})
	}
}

// Logout clears the session
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		h.logger.WithError(err).Error("failed to clear session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": string(core.FlowErrorInternalError)})
		return
	}
	c.Status(http.StatusNoContent)
}
