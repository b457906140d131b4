package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/charadev96/corkboard/internal/server/handler/admin"
	"github.com/charadev96/corkboard/internal/server/handler/web"
	"github.com/charadev96/corkboard/internal/server/service"
)

const shutdownTimeout = 5 * time.Second

type WebConfig struct {
	Addr    string
	BaseURL string
	Logger  *zerolog.Logger
}

type AdminConfig struct {
	Addr   string
	Logger *zerolog.Logger
}

type Server struct {
	Web   WebConfig
	Admin AdminConfig

	UserService   *service.UserService
	InviteService *service.InviteService
	PostService   *service.PostService
	VoteService   *service.VoteService
}

// ServeWeb runs the public board surface until ctx is canceled.
func (s *Server) ServeWeb(ctx context.Context) error {
	h := &web.Handler{
		Users:   s.UserService,
		Invites: s.InviteService,
		Posts:   s.PostService,
		Votes:   s.VoteService,
		BaseURL: s.Web.BaseURL,
		Logger:  s.Web.Logger,
	}
	return s.serve(ctx, s.Web.Addr, h.Routes(), s.Web.Logger)
}

// ServeAdmin runs the operator surface. Bind it to loopback.
func (s *Server) ServeAdmin(ctx context.Context) error {
	h := &admin.Handler{
		Users:   s.UserService,
		Invites: s.InviteService,
		Logger:  s.Admin.Logger,
	}
	return s.serve(ctx, s.Admin.Addr, h.Routes(), s.Admin.Logger)
}

func (s *Server) serve(ctx context.Context, addr string, handler http.Handler, logger *zerolog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to init server: %w", err)
	}
	logger.Info().
		Str("address", addr).
		Msg("started server")

	inst := &http.Server{Handler: handler}

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		inst.Shutdown(sctx)
	}()

	if err := inst.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
