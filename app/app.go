package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/subgate/subgatebot/core/bootstrap"
	corecmd "github.com/subgate/subgatebot/core/cmd"
	coretelegram "github.com/subgate/subgatebot/core/telegram"
	"github.com/subgate/subgatebot/dialog"
	"github.com/subgate/subgatebot/service"
	"github.com/subgate/subgatebot/storage"
	"github.com/subgate/subgatebot/tgui"
)

// Services groups the application services built during bootstrap.
type Services struct {
	Channels  *service.Channels
	Posts     *service.Posts
	Verifier  *service.Verifier
	Publisher *service.Publisher
	Engine    *dialog.Engine

	Directory *tgui.BotDirectory
	Sender    *tgui.BotSender
}

// serviceProvider builds the service graph on top of the connected store.
var serviceProvider = bootstrap.TypedServiceProviderFunc[*Services](
	func(_ context.Context, _ interface{}, st bootstrap.Storage) (*Services, error) {
		store, ok := st.(*storage.Store)
		if !ok {
			return nil, fmt.Errorf("app: unexpected storage type %T", st)
		}

		directory := tgui.NewBotDirectory()
		sender := tgui.NewBotSender()

		channels := service.NewChannels(store, directory)
		posts := service.NewPosts(store)
		engine := dialog.NewEngine(dialog.NewMemoryStore(), channels, posts)

		return &Services{
			Channels:  channels,
			Posts:     posts,
			Verifier:  service.NewVerifier(store, directory),
			Publisher: service.NewPublisher(posts, channels, sender),
			Engine:    engine,
			Directory: directory,
			Sender:    sender,
		}, nil
	},
)

// App is the assembled bot, ready to produce Telegram run options.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	services *Services
	ui       *tgui.UI
}

// Bootstrap initializes logging, database and services for the bot.
func Bootstrap(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	store := storage.New(res.DB)
	services, err := serviceProvider.ProvideTyped(context.Background(), cfg, store)
	if err != nil {
		_ = res.DB.Close()
		return nil, err
	}

	ui := tgui.New(tgui.Deps{
		Engine:    services.Engine,
		Channels:  services.Channels,
		Posts:     services.Posts,
		Verifier:  services.Verifier,
		Publisher: services.Publisher,
	})

	return &App{cfg: cfg, db: res.DB, services: services, ui: ui}, nil
}

// TelegramRunOptions assembles the registry, routes and lifecycle hooks.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.ui.Register(reg)

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil),
		Routes:      a.ui.Routes(reg),
		OnStart: func(_ context.Context, rt coretelegram.Runtime) error {
			a.services.Directory.Bind(rt.Bot)
			a.services.Sender.Bind(rt.Bot)
			return nil
		},
		OnStop: func(_ context.Context, _ coretelegram.Runtime) error {
			return a.db.Close()
		},
	}, nil
}
