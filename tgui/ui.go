// Package tgui is the Telegram surface of the bot: commands, callbacks,
// the dialog bridge and post previews. It translates updates into dialog
// events and service calls, and renders their outcomes back to the user.
package tgui

import (
	tg "github.com/subgate/subgatebot/core/telegram"
	"github.com/subgate/subgatebot/core/telegram/commands"
	"github.com/subgate/subgatebot/core/telegram/router"
	"github.com/subgate/subgatebot/dialog"
	"github.com/subgate/subgatebot/service"

	tele "gopkg.in/telebot.v4"
)

// UI owns the handlers and the dialog bridge.
type UI struct {
	engine    *dialog.Engine
	channels  *service.Channels
	posts     *service.Posts
	verifier  *service.Verifier
	publisher *service.Publisher
}

// Deps collects everything the UI needs.
type Deps struct {
	Engine    *dialog.Engine
	Channels  *service.Channels
	Posts     *service.Posts
	Verifier  *service.Verifier
	Publisher *service.Publisher
}

// New builds the UI.
func New(d Deps) *UI {
	return &UI{
		engine:    d.Engine,
		channels:  d.Channels,
		posts:     d.Posts,
		verifier:  d.Verifier,
		publisher: d.Publisher,
	}
}

// Register wires all commands and callbacks into the registry.
func (u *UI) Register(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     u.handleStart,
		Description: "Начать работу с ботом",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     u.handleHelp,
		Description: "Как пользоваться ботом",
	})
	reg.RegisterCommand("/menu", commands.Command{
		Handler:     u.handleMenu,
		Description: "Главное меню",
	})
	reg.RegisterCommand("/mychannels", commands.Command{
		Handler:     u.handleMyChannels,
		Description: "Мои каналы",
	})
	reg.RegisterCommand("/addchannel", commands.Command{
		Handler:     u.handleAddChannel,
		Description: "Добавить канал",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     u.handleCancel,
		Description: "Отменить текущее действие",
		Hidden:      true,
	})

	u.registerCallbacks(reg)
	reg.SetCallbackNotFound(u.UnknownCallback())
	reg.SetTextFallback(u.UnknownText())
}

// Routes assembles the update routes: dialog-aware text/photo routing,
// callback dispatch and the registered commands.
func (u *UI) Routes(reg *tg.Registry) []tg.Route {
	routes := router.TextRoutes(u, reg, router.TextOptions{
		UnknownText:     u.UnknownText(),
		UnknownPhoto:    u.unknownPhoto,
		UnknownDocument: u.UnknownDocument(),
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{
		NotFound: u.UnknownCallback(),
	}))
	routes = append(routes, router.CommandRoutes(reg, router.CommandRouteOptions{})...)
	return routes
}

func (u *UI) unknownPhoto(c tele.Context) error {
	return c.Send(textNotAvailable)
}
