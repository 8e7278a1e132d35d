package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"weddingsite/internal/config"
	"weddingsite/internal/gateway"
	"weddingsite/internal/http/handlers"
	applog "weddingsite/internal/log"
	"weddingsite/internal/notify"
	"weddingsite/internal/repos"
	"weddingsite/internal/services"
	"weddingsite/internal/storage"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg, db, err := open()
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.JWTSecret == "" {
		return errors.New("jwt_secret (JWT_SECRET) is required to serve")
	}

	if cfg.LogFile != "" {
		f, err := applog.TeeFile(cfg.LogFile)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
		}
	}
	cfg.LogSummary()

	store, err := newStorage(ctx, cfg)
	if err != nil {
		return err
	}
	gw, err := newGateway(cfg, services.NewSiteConfigService(repos.NewConfigRepo(db)))
	if err != nil {
		return err
	}
	var notifier notify.Notifier = notify.Noop{}
	if cfg.SMTPHost != "" {
		notifier = notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom, cfg.NotifyTo, "Wedding site")
	}

	deps, err := handlers.NewDeps(db, cfg, handlers.Options{Gateway: gw, Store: store, Notifier: notifier})
	if err != nil {
		return err
	}
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if _, err := deps.Auth.EnsureAdmin(ctx, cfg.AdminEmail, "", cfg.AdminPassword); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		log.Printf("[auth] admin account %s ensured", cfg.AdminEmail)
	}

	app := handlers.NewApp(deps, cfg)

	errc := make(chan error, 1)
	go func() { errc <- app.Listen(":" + cfg.Port) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		log.Printf("[serve] shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	}
}

func newStorage(ctx context.Context, cfg config.Config) (storage.Storage, error) {
	switch cfg.StorageDriver {
	case "s3":
		s, err := storage.NewS3(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Prefix, cfg.S3PublicURL)
		if err != nil {
			return nil, fmt.Errorf("s3 storage: %w", err)
		}
		log.Printf("[storage] s3 bucket=%s prefix=%s url=%s", cfg.S3Bucket, cfg.S3Prefix, s.BaseURL())
		return s, nil
	default:
		l, err := storage.NewLocal(cfg.MediaDir, "/media")
		if err != nil {
			return nil, err
		}
		log.Printf("[storage] /media -> %s", l.Dir)
		return l, nil
	}
}

func newGateway(cfg config.Config, site *services.SiteConfigService) (gateway.Gateway, error) {
	switch cfg.PaymentProvider {
	case "stripe":
		if cfg.StripeKey == "" || cfg.StripeWebhookSecret == "" {
			return nil, errors.New("stripe_key and stripe_webhook_secret are required for the stripe provider")
		}
		return gateway.NewStripe(cfg.StripeKey, cfg.StripeWebhookSecret, cfg.Currency), nil
	default:
		token := func(ctx context.Context) string { return site.MercadoPagoToken(ctx, cfg.MPAccessToken) }
		if cfg.MPWebhookSecret == "" {
			log.Printf("[warn] MP_WEBHOOK_SECRET not set; webhook signatures are not verified")
		}
		return gateway.NewMercadoPago(cfg.MPBaseURL, token, cfg.MPWebhookSecret, cfg.Currency), nil
	}
}
