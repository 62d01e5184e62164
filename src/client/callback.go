package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
)

// CallbackListener receives the single authorization redirect of a login on
// the loopback address named by the redirect URL.
type CallbackListener struct {
	server   *http.Server
	listener net.Listener
	result   chan url.Values
}

func NewCallbackListener(redirectURL string) (*CallbackListener, error) {
	redirect, err := url.Parse(redirectURL)
	if err != nil {
		return nil, fmt.Errorf("bad redirect url %q: %w", redirectURL, err)
	}
	if redirect.Scheme != "http" || redirect.Port() == "" {
		return nil, fmt.Errorf("redirect url %q must be http with an explicit port", redirectURL)
	}

	path := redirect.Path
	if path == "" {
		path = "/"
	}

	listener, err := net.Listen("tcp", net.JoinHostPort(redirect.Hostname(), redirect.Port()))
	if err != nil {
		return nil, fmt.Errorf("can not listen for callback: %w", err)
	}

	cb := &CallbackListener{listener: listener, result: make(chan url.Values, 1)}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET(path, func(c *gin.Context) {
		select {
		case cb.result <- c.Request.URL.Query():
			c.Data(http.StatusOK, "text/html; charset=utf-8", []byte("<html><body>Login complete. You can close this window.</body></html>"))
		default:
			c.String(http.StatusConflict, "login already completed")
		}
	})

	cb.server = &http.Server{Handler: router, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := cb.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			close(cb.result)
		}
	}()
	return cb, nil
}

// Addr is the address actually bound, useful when the redirect uses port 0.
func (cb *CallbackListener) Addr() string {
	return cb.listener.Addr().String()
}

// Wait blocks until the redirect arrives or ctx ends, then shuts down.
func (cb *CallbackListener) Wait(ctx context.Context) (url.Values, error) {
	defer cb.Close()
	select {
	case query, ok := <-cb.result:
		if !ok {
			return nil, errors.New("callback listener stopped")
		}
		return query, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (cb *CallbackListener) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return cb.server.Shutdown(ctx)
}
