package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"zet/internal/bot"
	"zet/internal/config"
	"zet/internal/console"
	"zet/internal/forum"
	"zet/internal/game"
	"zet/internal/moderation"
	"zet/internal/render"
	"zet/internal/server"
	"zet/pkg/maps"
)

func runCmd(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "zet.yaml", "config file")
	name, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if name == "" {
		return errors.New("missing save name")
	}

	logger := log.New(os.Stdout, "[zet] ", log.LstdFlags)

	cfg, db, err := openDB(*cfgPath)
	if err != nil {
		return err
	}
	defer db.Close()

	state, err := db.LoadSave(name)
	if err != nil {
		return err
	}

	catalog, err := maps.Load(cfg.TilesPath)
	if err != nil {
		return err
	}
	renderer, err := render.New(catalog, cfg.MapImage, cfg.FontPath)
	if err != nil {
		return err
	}
	opPost, err := cfg.OpPost()
	if err != nil {
		return err
	}

	term := console.New(os.Stdin, os.Stdout)
	moderator, err := newModerator(cfg, term)
	if err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	client, err := forum.NewClient(forum.Config{
		BaseURL:      cfg.BaseURL,
		Usercode:     cfg.Env.Usercode,
		UsercodeAuth: cfg.Env.UsercodeAuth,
		PasscodeAuth: cfg.Env.PasscodeAuth,
		UseProxy:     cfg.Env.UseProxy,
		Proxy:        cfg.Env.Proxy,
		Location:     loc,
	}, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	deps := bot.Deps{
		Engine:   game.NewEngine(catalog, moderator),
		Forum:    client,
		Store:    db,
		Renderer: renderer,
		History:  db,
		Operator: term,
	}
	if cfg.ObserverAddr != "" {
		srv := server.New(server.Config{Addr: cfg.ObserverAddr, Save: name}, db, logger)
		deps.Publisher = srv
		g.Go(func() error {
			return srv.Run(ctx)
		})
	}

	b := bot.New(bot.Config{
		Save:          name,
		OpPost:        opPost,
		MakeRethreads: cfg.MakeRethreads,
	}, state, deps, logger)

	if state.Thread != 0 {
		logger.Printf("Playing %s in %s", name, client.ThreadURL(state.Board, state.Thread))
	}
	g.Go(func() error {
		return b.Run(ctx)
	})

	err = g.Wait()
	logger.Printf("Stopped")
	if errors.Is(err, bot.ErrThreadNotSet) {
		return fmt.Errorf("%s has no thread; use zet set %s -t <url>", name, name)
	}
	return err
}

func newModerator(cfg config.Config, term *console.Console) (game.Moderator, error) {
	lists, err := moderation.LoadLists(cfg.WhiteList, cfg.BlackList)
	if err != nil {
		return nil, err
	}
	switch cfg.Moderation {
	case config.ModerationAllow:
		return moderation.NewListModerator(lists, true), nil
	case config.ModerationDeny:
		return moderation.NewListModerator(lists, false), nil
	default:
		return moderation.NewConsoleModerator(lists, term), nil
	}
}
