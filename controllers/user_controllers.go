package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-dashboard/middlewares"
	"github.com/yeremiapane/restaurant-dashboard/repositories"
	"github.com/yeremiapane/restaurant-dashboard/utils"
)

// SessionFeeds closes the live connections a session opened.
type SessionFeeds interface {
	CloseSession(sessionID string) int
}

type UserController struct {
	Users    *repositories.UserRepository
	Sessions *repositories.SessionRepository
	Feeds    SessionFeeds
}

func NewUserController(users *repositories.UserRepository, sessions *repositories.SessionRepository, feeds SessionFeeds) *UserController {
	return &UserController{Users: users, Sessions: sessions, Feeds: feeds}
}

// Register membuat akun pemilik restoran baru
func (uc *UserController) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondAppError(c, utils.BindingError(err))
		return
	}

	user, err := uc.Users.Register(c.Request.Context(), repositories.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "User registered", user.Public())
}

// Login checks the credentials and opens a session. The JWT carries the
// session id so logout can revoke it.
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondAppError(c, utils.BindingError(err))
		return
	}

	ctx := c.Request.Context()
	user, err := uc.Users.Authenticate(ctx, input.Email, input.Password)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	session, err := uc.Sessions.Create(ctx, user)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	token, err := utils.GenerateToken(user.ID, user.Role, session.ID, session.CreatedAt)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.WithField("user_id", user.ID).Info("Login successful")
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":     token,
		"expiresAt": session.ExpiresAt.Format(time.RFC3339),
		"user":      user.Public(),
	})
}

func (uc *UserController) Logout(c *gin.Context) {
	session, ok := middlewares.CurrentSession(c)
	if !ok {
		utils.RespondAppError(c, utils.Unauthorized("not logged in"))
		return
	}
	if err := uc.Sessions.Delete(c.Request.Context(), session.ID); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if uc.Feeds != nil {
		uc.Feeds.CloseSession(session.ID)
	}
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

// GetProfile returns the logged-in owner.
func (uc *UserController) GetProfile(c *gin.Context) {
	user, err := uc.Users.Get(c.Request.Context(), middlewares.CurrentUserID(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User profile", user.Public())
}
