package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/auth"
	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/catalog"
	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/config"
	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/gemini"
	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/logging"
	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/mood"
	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/pipeline"
	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/playlist"
	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/spotify"
	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/web"
)

// app holds the wired components shared by every command.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	service  *pipeline.Service
	handlers *web.Handlers
}

func newApp(ctx context.Context, cmd *cli.Command) (*app, error) {
	var envFiles []string
	if f := cmd.String("env-file"); f != "" {
		envFiles = append(envFiles, f)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		return nil, err
	}

	base := &http.Client{Timeout: cfg.RequestTimeout}
	// One limiter for app and user clients: both draw from the same quota.
	limiter := rate.NewLimiter(rate.Limit(cfg.SpotifyRateLimit), max(1, int(cfg.SpotifyRateLimit)))

	tokens := auth.NewTokenCache(cfg.SpotifyClientID, cfg.SpotifyClientSecret,
		auth.WithHTTPClient(base),
		auth.WithCacheLogger(log.Named("token")),
	)
	catalogClient := spotify.NewWithHTTP(auth.AppClient(ctx, tokens, base), "",
		spotify.WithLimiter(limiter),
		spotify.WithLogger(log.Named("spotify")),
	)
	orch := catalog.New(catalogClient,
		catalog.WithLimit(cfg.SearchLimit),
		catalog.WithMarket(cfg.SpotifyMarket),
		catalog.WithLogger(log.Named("catalog")),
	)

	var ai mood.AI
	if cfg.HasGemini() {
		ai = gemini.NewClient(cfg.GeminiAPIKey,
			gemini.WithModel(cfg.GeminiModel),
			gemini.WithBaseURL(cfg.GeminiBaseURL),
			gemini.WithTimeout(cfg.AITimeout),
			gemini.WithLogger(log.Named("gemini")),
		)
	}
	interp := mood.NewInterpreter(ai,
		mood.WithMode(mood.Mode(cfg.AIMode)),
		mood.WithLogger(log.Named("mood")),
	)

	assembler := playlist.NewAssembler(
		playlist.WithLookup(orch),
		playlist.WithUserCatalog(func(accessToken string) playlist.UserCatalog {
			return spotify.NewWithHTTP(auth.Client(accessToken, base), "",
				spotify.WithLimiter(limiter),
				spotify.WithLogger(log.Named("spotify")),
			)
		}),
		playlist.WithLogger(log.Named("playlist")),
	)

	var tokenSource pipeline.TokenSource
	var probe web.TokenProbe
	if cfg.HasSpotify() {
		tokenSource = tokens
		probe = tokens
	}
	svc := pipeline.NewService(interp, orch, tokenSource, assembler,
		pipeline.WithLogger(log.Named("pipeline")),
	)

	oauth := auth.NewAuthenticator(cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.SpotifyRedirectURI)
	handlers := web.NewHandlers(svc, oauth, web.Diagnostics{
		SpotifyConfigured: cfg.HasSpotify(),
		GeminiConfigured:  cfg.HasGemini(),
		GeminiModel:       cfg.GeminiModel,
		AIMode:            cfg.AIMode,
		Tokens:            probe,
	}, log.Named("web"))

	log.Info("configuration loaded",
		zap.Bool("spotify", cfg.HasSpotify()),
		zap.Bool("gemini", cfg.HasGemini()),
		zap.String("ai_mode", cfg.AIMode),
	)

	return &app{
		cfg:      cfg,
		log:      log,
		service:  svc,
		handlers: handlers,
	}, nil
}

// close flushes the logger. Sync on a terminal stderr reports EINVAL,
// which is not a failure worth surfacing.
func (a *app) close(err error) error {
	if syncErr := a.log.Sync(); syncErr != nil && !errors.Is(syncErr, syscall.EINVAL) {
		err = multierr.Append(err, fmt.Errorf("syncing logger: %w", syncErr))
	}
	return err
}

func runServe(ctx context.Context, cmd *cli.Command) (err error) {
	a, err := newApp(ctx, cmd.Root())
	if err != nil {
		return err
	}
	defer func() { err = a.close(err) }()

	addr := cmd.String("addr")
	if addr == "" {
		addr = a.cfg.Addr()
	}

	server := web.NewServer(web.ServerConfig{
		Addr:   addr,
		Logger: a.log.Named("http"),
	}, a.handlers)

	return server.Run(ctx)
}

func runGenerate(ctx context.Context, cmd *cli.Command) (err error) {
	text := cmd.StringArg("mood")
	if text == "" {
		return errors.New("usage: vibetunes generate <mood>")
	}

	a, err := newApp(ctx, cmd.Root())
	if err != nil {
		return err
	}
	defer func() { err = a.close(err) }()

	res := a.service.Generate(ctx, text)
	if res.IsErr() {
		return res.Cause()
	}
	if res.IsDegraded() {
		a.log.Warn("playlist degraded", zap.String("reason", res.Reason()), zap.Error(res.Cause()))
	}

	gen := res.Value()
	token := cmd.String("access-token")
	if token == "" || gen.Demo {
		return printJSON(gen)
	}

	d := gen.Playlist.Draft()
	created := a.service.CreatePlaylist(ctx, pipeline.CreateRequest{
		Name:        d.Name,
		Description: d.Description,
		TrackIDs:    d.TrackIDs,
		AccessToken: token,
	})
	if created.IsErr() {
		return created.Cause()
	}
	if created.IsDegraded() {
		a.log.Warn("playlist not created", zap.String("reason", created.Reason()), zap.Error(created.Cause()))
	}
	return printJSON(created.Value())
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("writing playlist: %w", err)
	}
	return nil
}
