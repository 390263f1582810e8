package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/seu-usuario/pdv-fiscal/internal/application/auth"
	appfiscal "github.com/seu-usuario/pdv-fiscal/internal/application/fiscal"
	"github.com/seu-usuario/pdv-fiscal/pkg/logger"
)

// RouterDeps dependências injetadas nas rotas.
type RouterDeps struct {
	EmitUC    *appfiscal.EmitInvoiceUseCase
	CancelUC  *appfiscal.CancelInvoiceUseCase
	AuthUC    *auth.AuthUseCase
	JWTSecret string
	Log       *logger.Logger
}

// Router registra todas as rotas da API.
func Router(app *fiber.App, deps RouterDeps) {
	authHandler := NewAuthHandler(deps.AuthUC)
	fiscalHandler := NewFiscalHandler(deps.EmitUC, deps.CancelUC, deps.Log)

	api := app.Group("/api")

	api.Post("/auth/login", authHandler.Login)

	protected := api.Group("", AuthMiddleware(deps.JWTSecret))
	protected.Post("/fiscal/nfce", fiscalHandler.Process)
	protected.Get("/fiscal/nfce/:saleID", fiscalHandler.Status)
}
