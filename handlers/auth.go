package handlers

import (
	"net/http"
	"time"

	userRepo "roombooking/database/repository/user"
	"roombooking/middleware"
	"roombooking/models"
	"roombooking/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SessionHandler issues the session and anti-forgery cookies.
type SessionHandler struct {
	Users userRepo.UserRepository
	TTL   time.Duration
}

// LoginHandler handles POST /api/session/.
func (h *SessionHandler) LoginHandler(c *gin.Context) {
	logger := getLogger(c)

	var req models.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Debug("Invalid login request", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "Username and password are required.")
		return
	}

	user, err := h.Users.GetByUsername(req.Username)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		utils.JSONError(c, http.StatusUnauthorized, "Invalid username or password.")
		return
	}

	ttl := h.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	token, err := utils.GenerateToken(user.ID, user.Username, ttl)
	if err != nil {
		logger.Error("Failed to sign session token", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Login failed.")
		return
	}

	maxAge := int(ttl / time.Second)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", false, true)
	c.SetCookie(middleware.CSRFCookie, uuid.New().String(), maxAge, "/", "", false, false)

	logger.Info("Session opened", zap.String("username", user.Username))
	c.JSON(http.StatusOK, gin.H{"id": user.ID, "username": user.Username})
}

// LogoutHandler handles DELETE /api/session/ by expiring both cookies.
func (h *SessionHandler) LogoutHandler(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.SetCookie(middleware.CSRFCookie, "", -1, "/", "", false, false)
	c.Status(http.StatusNoContent)
}
