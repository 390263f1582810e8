package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/seu-usuario/pdv-fiscal/internal/application/auth"
	appfiscal "github.com/seu-usuario/pdv-fiscal/internal/application/fiscal"
	"github.com/seu-usuario/pdv-fiscal/internal/infrastructure/nfce"
	"github.com/seu-usuario/pdv-fiscal/internal/infrastructure/postgres"
	"github.com/seu-usuario/pdv-fiscal/internal/infrastructure/storage"
	httpRouter "github.com/seu-usuario/pdv-fiscal/internal/interfaces/http"
	"github.com/seu-usuario/pdv-fiscal/pkg/config"
	"github.com/seu-usuario/pdv-fiscal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicação")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexão ao PostgreSQL")
	}
	defer pool.Close()

	saleRepo := postgres.NewSaleRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	issuerRepo := postgres.NewIssuerRepository(pool)
	invoiceLogRepo := postgres.NewInvoiceLogRepository(pool)
	userRepo := postgres.NewUserRepository(pool)

	// Um único http.Client compartilhado entre autenticação, gateway e storage.
	httpClient := &http.Client{Timeout: 30 * time.Second}

	authenticator := nfce.NewAuthenticator(
		cfg.Fiscal.AuthURL,
		cfg.Fiscal.ClientID,
		cfg.Fiscal.ClientSecret,
		cfg.Fiscal.Scope,
		time.Duration(cfg.Fiscal.TokenTTLMin)*time.Minute,
		httpClient,
		log,
	)
	gateway := nfce.NewClient(cfg.Fiscal.APIURLProd, cfg.Fiscal.APIURLSandbox, httpClient, log)
	bucket := storage.NewBucketClient(cfg.Storage.URL, cfg.Storage.Bucket, cfg.Storage.ServiceKey, httpClient, log)

	fetcher := appfiscal.NewRecordFetcher(saleRepo, customerRepo, issuerRepo)
	emitUC := appfiscal.NewEmitInvoiceUseCase(fetcher, authenticator, gateway, invoiceLogRepo, bucket, log)
	cancelUC := appfiscal.NewCancelInvoiceUseCase(authenticator, gateway, invoiceLogRepo, issuerRepo, log)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI em local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "PDV Fiscal API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		EmitUC:    emitUC,
		CancelUC:  cancelUC,
		AuthUC:    authUC,
		JWTSecret: cfg.JWT.Secret,
		Log:       log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("sinal de desligamento recebido, encerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("desligamento do servidor")
	}

	log.Info().Msg("aplicação encerrada")
}
