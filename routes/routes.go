package routes

import (
	"ringwin/controllers/admin"
	"ringwin/controllers/payment"
	"ringwin/controllers/user"
	"ringwin/middlewares"
	"ringwin/services"

	"github.com/gofiber/fiber/v2"
)

func Setup(app *fiber.App, svc *services.Service) {
	userHandler := user.NewHandler(svc)
	paymentHandler := payment.NewHandler(svc)
	adminHandler := admin.NewHandler(svc)

	app.Post("/auth/register", userHandler.Register)
	app.Post("/auth/login", userHandler.Login)
	app.Get("/competitions", adminHandler.ListCompetitions)

	// asynchronous provider notification, no user session
	app.Post("/gateway/callback", paymentHandler.Callback)

	authed := app.Group("", middlewares.SessionAuth(svc))
	authed.Post("/purchase", userHandler.Purchase)
	authed.Post("/payment-session", paymentHandler.CreateSession)
	authed.Post("/payment-confirm", paymentHandler.Confirm)
	authed.Post("/payment-fail", paymentHandler.Fail)
	authed.Post("/play-spin", userHandler.PlaySpin)
	authed.Post("/play-scratch", userHandler.PlayScratch)
	authed.Post("/points-convert", userHandler.ConvertPoints)
	authed.Post("/balance", userHandler.Balance)
	authed.Post("/wallet/deposit", userHandler.Deposit)
	authed.Post("/transactions", userHandler.Transactions)
	authed.Post("/winners", userHandler.Winners)

	adminroutes := app.Group("/admin", middlewares.AdminAuth())
	adminroutes.Post("/competitions", adminHandler.CreateCompetition)
}
