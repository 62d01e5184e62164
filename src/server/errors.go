package server

import (
	"errors"
	"net/http"

	app "gallery/src/app"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var kindStatus = map[app.Kind]int{
	app.KindValidation:      http.StatusBadRequest,
	app.KindUnauthenticated: http.StatusUnauthorized,
	app.KindForbidden:       http.StatusForbidden,
	app.KindConfiguration:   http.StatusInternalServerError,
	app.KindUpstream:        http.StatusInternalServerError,
}

// ErrorResponder renders the last error a handler attached with c.Error as
// {"error": message}. Causes of server-side failures are logged, never sent.
func ErrorResponder(log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		kind := app.KindOf(err)
		message := "Internal server error"
		var appErr *app.Error
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
		status := kindStatus[kind]

		if status >= http.StatusInternalServerError {
			log.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
		}
		c.JSON(status, gin.H{"error": message})
	}
}

// abortWith attaches err for ErrorResponder and stops the chain.
func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
