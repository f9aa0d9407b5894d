package introspect

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-beans/framework/app"
	"github.com/km-arc/go-beans/framework/metrics"
)

// Server is the introspection HTTP server as a container component: it
// starts listening when initialized and shuts down with the singletons.
//
//	components:
//	  - name: introspectServer
//	    type: introspectServer
//	    properties:
//	      - name: Addr
//	        value: ${INTROSPECT_ADDR}
//
// An empty Addr disables it.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration

	Collector *metrics.Collector `inject:",optional"`

	app    *app.Application
	srv    *http.Server
	ln     net.Listener
	logger *zap.Logger
}

func (s *Server) SetApplication(a *app.Application) {
	s.app = a
	s.logger = a.Logger().Named("introspect")
}

// Initialize starts serving in the background.
func (s *Server) Initialize() error {
	if s.Addr == "" {
		return nil
	}
	if s.app == nil {
		return errors.New("introspect: server has no application")
	}

	var mh http.Handler
	if s.Collector != nil {
		mh = s.Collector.Handler()
	}

	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.srv = &http.Server{
		Handler:           NewHandler(s.app, mh, s.logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("introspection server stopped", zap.Error(err))
		}
	}()
	s.logger.Info("introspection server listening", zap.String("addr", ln.Addr().String()))
	return nil
}

// ListenAddr is the bound address, useful when Addr asked for port 0.
func (s *Server) ListenAddr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Destroy shuts the server down gracefully.
func (s *Server) Destroy() error {
	if s.srv == nil {
		return nil
	}
	timeout := s.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
