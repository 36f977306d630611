package oauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// CallbackPath is where the backend sends the browser after login.
const CallbackPath = "/oauth/callback"

// CallbackServer receives the redirect on a local address and hands it to
// a Handler.
type CallbackServer struct {
	addr    string
	handler *Handler
	e       *echo.Echo
	srv     *http.Server
	ln      net.Listener
	done    chan Outcome
}

func NewCallbackServer(addr string, h *Handler) *CallbackServer {
	s := &CallbackServer{addr: addr, handler: h, done: make(chan Outcome, 1)}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomiddleware.Recover())
	e.GET(CallbackPath, s.callback)
	s.e = e
	return s
}

func (s *CallbackServer) callback(c echo.Context) error {
	req := c.Request()
	out, err := s.handler.Handle(context.WithoutCancel(req.Context()), req.URL)
	if errors.Is(err, ErrAlreadyHandled) {
		return c.String(http.StatusConflict, "This login link was already used. Return to the terminal.")
	}

	s.done <- out
	switch out.Phase {
	case Succeeded:
		return c.String(http.StatusOK, "Signed in. You can close this window.")
	case Failed:
		return c.String(http.StatusOK, "Login failed: "+out.Reason)
	default:
		return c.String(http.StatusOK, "No login information received. Return to the terminal.")
	}
}

// Start listens and serves in the background. It returns the callback URL.
func (s *CallbackServer) Start() (string, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return "", fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.ln = ln
	s.srv = &http.Server{Handler: s.e}

	go func() { _ = s.srv.Serve(ln) }()
	return "http://" + ln.Addr().String() + CallbackPath, nil
}

// Wait blocks until the redirect arrives or ctx ends.
func (s *CallbackServer) Wait(ctx context.Context) (Outcome, error) {
	select {
	case out := <-s.done:
		return out, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

func (s *CallbackServer) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
