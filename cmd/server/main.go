package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/factorhub/factorhub.go/controllers"
	"github.com/factorhub/factorhub.go/db"
	"github.com/factorhub/factorhub.go/db/migrations"
	"github.com/factorhub/factorhub.go/lib/logging"
	"github.com/factorhub/factorhub.go/lib/service"
	"github.com/factorhub/factorhub.go/lib/tokens"
	"github.com/factorhub/factorhub.go/lib/transport"
	"github.com/factorhub/factorhub.go/rabbitmq"
	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/uptrace/bun/migrate"
)

// @title        FactorHub
// @version      1.0.0
// @description  Invoice factoring ledger exchanging tokenized claims between SMEs, investors and clients.

// @BasePath  /

// @securitydefinitions.oauth2.password  OAuth2Password
// @tokenUrl                             /auth
// @schemes                              https http
func main() {

	c := &service.Config{}

	// Load configuration from environment variables
	err := godotenv.Load(".env")
	if err != nil {
		fmt.Println("Failed to load .env file")
	}
	err = envconfig.Process("", c)
	if err != nil {
		log.Fatalf("Error loading environment variables: %v", err)
	}

	// Setup logging to STDOUT or a configured log file
	logger := logging.Logger(c.LogFilePath)

	// Open a DB connection based on the configured DATABASE_URI
	dbConn, err := db.Open(c)
	if err != nil {
		logger.Fatalf("Error initializing db connection: %v", err)
	}

	// Migrate the DB
	startupCtx := context.Background()
	migrator := migrate.NewMigrator(dbConn, migrations.Migrations)
	err = migrator.Init(startupCtx)
	if err != nil {
		logger.Fatalf("Error initializing db migrator: %v", err)
	}
	_, err = migrator.Migrate(startupCtx)
	if err != nil {
		logger.Fatalf("Error migrating database: %v", err)
	}

	// Setup exception tracking with Sentry if configured
	// sentry init needs to happen before the echo middlewares are added
	if c.SentryDSN != "" {
		if err = sentry.Init(sentry.ClientOptions{
			Dsn:              c.SentryDSN,
			IgnoreErrors:     []string{"401"},
			EnableTracing:    c.SentryTracesSampleRate > 0,
			TracesSampleRate: c.SentryTracesSampleRate,
		}); err != nil {
			logger.Errorf("sentry init error: %v", err)
		}
	}

	// If no RABBITMQ_URI was provided we will not attempt to create a client
	// No rabbitmq features will be available in this case.
	var rabbitmqClient rabbitmq.Client
	if c.RabbitMQUri != "" {
		rabbitmqClient, err = rabbitmq.Dial(c.RabbitMQUri,
			rabbitmq.WithLogger(logger),
			rabbitmq.WithInvoiceExchange(c.RabbitMQInvoiceExchange),
		)
		if err != nil {
			logger.Fatal(err)
		}
		// close the connection gently at the end of the runtime
		defer rabbitmqClient.Close()
	}

	svc := &service.FactorhubService{
		Config:         c,
		DB:             dbConn,
		Logger:         logger,
		InvoicePubSub:  service.NewPubsub(),
		RabbitMQClient: rabbitmqClient,
	}

	// the platform wallet principal receives the fee share of every purchase
	if err := svc.EnsurePlatformUser(startupCtx); err != nil {
		logger.Fatalf("Error resolving platform user: %v", err)
	}

	// init echo server
	e := transport.InitEcho(c, logger)

	logMw := transport.CreateLoggingMiddleware(logger)
	// strict rate limit for requests that move funds
	strictRateLimitMiddleware := transport.CreateRateLimitMiddleware(c.StrictRateLimit, c.BurstRateLimit)

	secured := e.Group("", tokens.Middleware(c.JWTSecret), logMw)
	securedWithStrictRateLimit := e.Group("", tokens.Middleware(c.JWTSecret), strictRateLimitMiddleware, logMw)
	admin := e.Group("/admin", tokens.AdminTokenMiddleware(c.AdminToken), logMw)

	// public endpoints
	e.POST("/auth", controllers.NewAuthController(svc).Auth)
	e.GET("/info", controllers.NewGetInfoController(svc).GetInfo)
	e.GET("/healthz", controllers.NewGetInfoController(svc).Health)

	// registry owner endpoints
	admin.POST("/users", controllers.NewCreateUserController(svc).CreateUser)
	admin.POST("/topup", controllers.NewTopUpController(svc).TopUp)
	admin.PUT("/roles/:role", controllers.NewRolesController(svc).SetRole)
	admin.GET("/roles", controllers.NewRolesController(svc).GetRoles)

	// account endpoints
	secured.GET("/balance", controllers.NewBalanceController(svc).Balance)
	secured.GET("/transactions", controllers.NewGetTXSController(svc).GetTXS)

	// invoice queries; the open market listing is cacheable
	invoiceCtrl := controllers.NewInvoiceController(svc)
	cacheClient := transport.CreateCacheClient()
	secured.GET("/invoices", invoiceCtrl.GetInvoices, cacheClient.Middleware())
	secured.GET("/invoices/:id", invoiceCtrl.GetInvoice)
	secured.GET("/invoices/sme/:id", invoiceCtrl.GetInvoicesBySme)
	secured.GET("/invoices/client/:id", invoiceCtrl.GetInvoicesByClient)
	secured.GET("/invoices/owner/:id", invoiceCtrl.GetInvoicesByOwner)

	// gated mutations
	securedWithStrictRateLimit.POST("/invoices", controllers.NewMintController(svc).Mint)
	securedWithStrictRateLimit.POST("/invoices/:id/purchase", controllers.NewPurchaseController(svc).Purchase)
	securedWithStrictRateLimit.POST("/invoices/:id/settle", controllers.NewSettleController(svc).Settle)
	securedWithStrictRateLimit.POST("/invoices/:id/default", controllers.NewSettleController(svc).MarkDefaulted)

	backGroundCtx, _ := signal.NotifyContext(context.Background(), os.Interrupt)

	// Forward invoice lifecycle events to the webhook url in the background
	if c.WebhookUrl != "" {
		go svc.StartWebhookSubscription(backGroundCtx)
	}

	//Start Prometheus server if necessary
	if c.EnablePrometheus {
		go transport.StartPrometheusEcho(logger, svc, e)
	}

	// Start server
	go func() {
		if err := e.Start(fmt.Sprintf(":%v", c.Port)); err != nil {
			e.Logger.Info("shutting down the server")
		}
	}()

	<-backGroundCtx.Done()
	if err := e.Shutdown(context.Background()); err != nil {
		e.Logger.Fatal(err)
	}
}
