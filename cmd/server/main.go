package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"golang.org/x/sync/errgroup"

	"github.com/charadev96/corkboard/internal/server"
	"github.com/charadev96/corkboard/internal/server/config"
	"github.com/charadev96/corkboard/internal/server/repository"
	"github.com/charadev96/corkboard/internal/server/service"
	"github.com/charadev96/corkboard/internal/server/token"
	"github.com/charadev96/corkboard/internal/shared/infra"
	"github.com/charadev96/corkboard/internal/shared/log"
)

func main() {
	godotenv.Load()
	logger := log.New("server")

	configPath := flag.String("config", "", "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	key, err := cfg.Key()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load secret key")
	}
	codec, err := token.NewCodec(key)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init token codec")
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer sqldb.Close()
	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users, err := repository.NewBunUserRepository(ctx, db)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init user repository")
	}
	posts, err := repository.NewBunPostRepository(ctx, db)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init post repository")
	}
	votes, err := repository.NewBunVoteRepository(ctx, db)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init vote repository")
	}
	sessions, err := repository.NewBunUserSessionRepository(ctx, db)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init session repository")
	}
	nonces, err := repository.NewBunNonceLedger(ctx, db)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init nonce ledger")
	}

	inviteService := &service.InviteService{
		Codec:  codec,
		Users:  users,
		Nonces: nonces,
	}
	userService := &service.UserService{
		Users:    users,
		Sessions: sessions,
		Invites:  inviteService,
		TXRunner: infra.NewBunTransactionRunner(db),
	}
	postService := &service.PostService{
		Posts: posts,
		Votes: votes,
	}
	voteService := &service.VoteService{
		Votes: votes,
		Posts: posts,
	}

	webLogger := log.New("web")
	adminLogger := log.New("admin")
	srv := &server.Server{
		Web: server.WebConfig{
			Addr:    cfg.WebAddr,
			BaseURL: cfg.BaseURL,
			Logger:  &webLogger,
		},
		Admin: server.AdminConfig{
			Addr:   cfg.AdminAddr,
			Logger: &adminLogger,
		},
		UserService:   userService,
		InviteService: inviteService,
		PostService:   postService,
		VoteService:   voteService,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ServeWeb(ctx)
	})
	g.Go(func() error {
		return srv.ServeAdmin(ctx)
	})
	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}
