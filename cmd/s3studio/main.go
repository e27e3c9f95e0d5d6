package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/koustreak/s3studio/internal/client"
	"github.com/koustreak/s3studio/internal/config"
	"github.com/koustreak/s3studio/internal/errs"
	"github.com/koustreak/s3studio/internal/logger"
	"github.com/koustreak/s3studio/internal/profile"
	"github.com/koustreak/s3studio/internal/server"
	"github.com/urfave/cli/v2"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "s3studio",
		Usage: "Browse and edit an S3-compatible bucket",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "YAML config file", Value: "s3studio.yaml", EnvVars: []string{"S3STUDIO_CONFIG"}},
			&cli.StringFlag{Name: "profile", Usage: "saved profile ID or name", EnvVars: []string{"S3STUDIO_PROFILE"}},
			&cli.StringFlag{Name: "endpoint", Usage: "S3-compatible endpoint", EnvVars: []string{"S3STUDIO_ENDPOINT"}},
			&cli.StringFlag{Name: "access-key-id", EnvVars: []string{"S3STUDIO_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID"}},
			&cli.StringFlag{Name: "secret-access-key", EnvVars: []string{"S3STUDIO_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY"}},
			&cli.StringFlag{Name: "session-token", EnvVars: []string{"S3STUDIO_SESSION_TOKEN", "AWS_SESSION_TOKEN"}},
			&cli.StringFlag{Name: "region", EnvVars: []string{"S3STUDIO_REGION", "AWS_REGION"}},
			&cli.StringFlag{Name: "bucket", EnvVars: []string{"S3STUDIO_BUCKET"}},
			&cli.StringFlag{Name: "log-level", EnvVars: []string{"S3STUDIO_LOG_LEVEL"}},
		},
		Before: setup,
		Commands: []*cli.Command{
			serveCommand(),
			testConnectionCommand(),
			listCommand(),
			statCommand(),
			profilesCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type appKey struct{}

// app carries what every command needs.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	profiles *profile.Store
}

func setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	applyFlags(c, cfg)

	log := logger.New(&cfg.Log)
	logger.SetGlobal(log)

	store, err := profile.Open(cfg.ProfilesFile)
	if err != nil {
		return err
	}

	c.Context = context.WithValue(log.WithContext(c.Context), appKey{}, &app{cfg: cfg, log: log, profiles: store})
	return nil
}

func fromContext(c *cli.Context) *app {
	return c.Context.Value(appKey{}).(*app)
}

func applyFlags(c *cli.Context, cfg *config.Config) {
	set := func(flag string, dst *string) {
		if c.IsSet(flag) {
			*dst = c.String(flag)
		}
	}
	set("profile", &cfg.Profile)
	set("endpoint", &cfg.Storage.Endpoint)
	set("access-key-id", &cfg.Storage.AccessKey)
	set("secret-access-key", &cfg.Storage.SecretKey)
	set("session-token", &cfg.Storage.SessionToken)
	set("region", &cfg.Storage.Region)
	set("bucket", &cfg.Storage.Bucket)
	set("log-level", &cfg.Log.Level)
	cfg.Storage.Normalize()
}

// credentials picks, in order: the named profile, the storage section of
// the config, the active profile.
func (a *app) credentials() (client.Credentials, error) {
	if a.cfg.Profile != "" {
		for _, p := range a.profiles.List() {
			if p.ID == a.cfg.Profile || strings.EqualFold(p.Name, a.cfg.Profile) {
				return p.Credentials(), nil
			}
		}
		return client.Credentials{}, errs.New(errs.ErrKindNotFound, "profile "+a.cfg.Profile+" not found")
	}
	if a.cfg.Storage.Bucket != "" {
		return client.CredentialsFrom(a.cfg.Storage), nil
	}
	if p, ok := a.profiles.Active(); ok {
		return p.Credentials(), nil
	}
	return client.Credentials{}, errs.New(errs.ErrKindInvalidInput, "no bucket configured: set --bucket or select a profile")
}

func (a *app) client(ctx context.Context) (*client.Client, error) {
	creds, err := a.credentials()
	if err != nil {
		return nil, err
	}
	return client.New(ctx, creds, client.WithLogger(a.log))
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the bucket over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "listen", Usage: "listen address", EnvVars: []string{"S3STUDIO_LISTEN"}},
		},
		Action: func(c *cli.Context) error {
			a := fromContext(c)
			if c.IsSet("listen") {
				a.cfg.Listen = c.String("listen")
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			cl, err := a.client(ctx)
			if err != nil {
				return err
			}
			defer cl.Close()

			srv := &http.Server{
				Addr:              a.cfg.Listen,
				Handler:           server.New(cl, a.log, a.cfg.MaxUploadBytes).Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.log.With().Str("addr", srv.Addr).Str("bucket", cl.Bucket()).Logger().Info("listening")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			a.log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func testConnectionCommand() *cli.Command {
	return &cli.Command{
		Name:  "test-connection",
		Usage: "Check that the bucket can be listed",
		Action: func(c *cli.Context) error {
			a := fromContext(c)
			creds, err := a.credentials()
			if err != nil {
				return err
			}

			res := client.TestConnection(c.Context, creds, client.WithLogger(a.log))
			if err := printJSON(c, res); err != nil {
				return err
			}
			if res.Status != client.StatusSuccess {
				return cli.Exit("", 2)
			}
			return nil
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "List the direct children of a directory",
		ArgsUsage: "[path]",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				path = "/"
			}
			cl, err := fromContext(c).client(c.Context)
			if err != nil {
				return err
			}
			defer cl.Close()

			entries, err := cl.List(c.Context, path)
			if err != nil {
				return err
			}
			return printJSON(c, entries)
		},
	}
}

func statCommand() *cli.Command {
	return &cli.Command{
		Name:      "stat",
		Usage:     "Show metadata for a path",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("stat needs exactly one path", 1)
			}
			cl, err := fromContext(c).client(c.Context)
			if err != nil {
				return err
			}
			defer cl.Close()

			entry, err := cl.Stat(c.Context, c.Args().First())
			if err != nil {
				return err
			}
			return printJSON(c, entry)
		},
	}
}
