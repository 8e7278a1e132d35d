package handlers

import (
	"weddingsite/internal/config"
	"weddingsite/internal/gateway"
	"weddingsite/internal/notify"
	"weddingsite/internal/repos"
	"weddingsite/internal/services"
	"weddingsite/internal/storage"

	"github.com/jmoiron/sqlx"
)

// Options carries the pluggable collaborators chosen at startup.
type Options struct {
	Gateway  gateway.Gateway
	Store    storage.Storage
	Notifier notify.Notifier
}

type Deps struct {
	Auth *services.AuthService

	AuthHandler    *AuthHandler
	GiftHandler    *GiftHandler
	RSVPHandler    *RSVPHandler
	AlbumHandler   *AlbumHandler
	StoryHandler   *StoryHandler
	ContentHandler *ContentHandler
	ConfigHandler  *ConfigHandler
	PaymentHandler *PaymentHandler
	AdminHandler   *AdminHandler
	// MediaHandler is nil when uploads live in S3.
	MediaHandler *MediaHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, opts Options) (*Deps, error) {
	giftRepo := repos.NewGiftRepo(db)
	rsvpRepo := repos.NewRSVPRepo(db)
	storyRepo := repos.NewStoryRepo(db)
	contentRepo := repos.NewContentRepo(db)
	configRepo := repos.NewConfigRepo(db)
	userRepo := repos.NewUserRepo(db)

	var media *MediaHandler
	if opts.Store == nil {
		local, err := storage.NewLocal(cfg.MediaDir, "/media")
		if err != nil {
			return nil, err
		}
		opts.Store = local
	}
	if local, ok := opts.Store.(*storage.Local); ok {
		media = &MediaHandler{Files: local}
	}

	authSvc := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL)
	mediaSvc := services.NewMediaService(opts.Store, cfg.ImageMaxWidth)
	giftSvc := services.NewGiftService(giftRepo)
	rsvpSvc := services.NewRSVPService(rsvpRepo, opts.Notifier)
	albumSvc := services.NewAlbumService(db)
	storySvc := services.NewStoryService(storyRepo)
	contentSvc := services.NewContentService(contentRepo)
	configSvc := services.NewSiteConfigService(configRepo)
	paySvc := services.NewPaymentService(db, opts.Gateway, opts.Notifier, cfg.PublicURL, cfg.APIURL)

	return &Deps{
		Auth:           authSvc,
		AuthHandler:    &AuthHandler{Auth: authSvc},
		GiftHandler:    &GiftHandler{Gifts: giftSvc, Media: mediaSvc},
		RSVPHandler:    &RSVPHandler{RSVPs: rsvpSvc},
		AlbumHandler:   &AlbumHandler{Album: albumSvc, Media: mediaSvc},
		StoryHandler:   &StoryHandler{Story: storySvc, Media: mediaSvc},
		ContentHandler: &ContentHandler{Content: contentSvc},
		ConfigHandler:  &ConfigHandler{Config: configSvc, Media: mediaSvc},
		PaymentHandler: &PaymentHandler{Payments: paySvc},
		AdminHandler:   &AdminHandler{Payments: paySvc},
		MediaHandler:   media,
	}, nil
}
