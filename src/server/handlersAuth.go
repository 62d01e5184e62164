package server

import (
	"net/http"
	"time"

	"gallery/src/auth"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the user service. Its routes are placeholders that only
// prove the authentication and group gates work.
type UserHandler struct {
	now func() time.Time
}

func NewUserHandler() *UserHandler {
	return &UserHandler{now: time.Now}
}

func (u *UserHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "user-service"})
}

func (u *UserHandler) stub(name string) gin.H {
	return gin.H{
		"status":    "ok",
		"message":   name + " endpoint accessible",
		"timestamp": u.now().UTC().Format(time.RFC3339Nano),
	}
}

func (u *UserHandler) Config(c *gin.Context) {
	c.JSON(http.StatusOK, u.stub("Config"))
}

func (u *UserHandler) Profile(c *gin.Context) {
	principal := auth.MustPrincipal(c)
	body := u.stub("Profile")
	body["user"] = gin.H{
		"sub":    principal.Subject(),
		"email":  principal.Email(),
		"groups": principal.Groups(),
	}
	c.JSON(http.StatusOK, body)
}

func (u *UserHandler) AdminPing(c *gin.Context) {
	c.JSON(http.StatusOK, u.stub("Admin"))
}
