package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/devfury/ezcaretech-auth/internal/core"
	"github.com/devfury/ezcaretech-auth/internal/models"
)

type userResponse struct {
	ID            string            `json:"id"`
	Username      string            `json:"username"`
	FirstName     *string           `json:"first_name"`
	LastName      *string           `json:"last_name"`
	Email         *string           `json:"email"`
	Enabled       bool              `json:"enabled"`
	EmailVerified bool              `json:"email_verified"`
	Attributes    map[string]string `json:"attributes"`
	Roles         []string          `json:"roles"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Username:      u.Username,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Email:         u.Email,
		Enabled:       u.Enabled,
		EmailVerified: u.EmailVerified,
		Attributes:    u.AttributeMap(),
		Roles:         u.RoleNames(),
	}
}

type UserHandler struct {
	dir    core.Directory
	logger logrus.FieldLogger
}

func NewUserHandler(dir core.Directory, logger logrus.FieldLogger) *UserHandler {
	return &UserHandler{dir: dir, logger: logger}
}

// GetUser returns a provisioned user with its attributes and roles
func (h *UserHandler) GetUser(c *gin.Context) {
	realm := c.Param("realm")
	username := c.Param("username")

	user, err := h.dir.GetUserByUsername(c.Request.Context(), realm, username)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"realm":    realm,
			"username": username,
		}).Error("failed to look up user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user_not_found"})
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}
