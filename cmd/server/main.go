package main

import (
	"context"
	"net/http"
	"time"

	"github.com/brokerdesk/brokerdesk/internal/api"
	v1 "github.com/brokerdesk/brokerdesk/internal/api/v1"
	"github.com/brokerdesk/brokerdesk/internal/auth"
	"github.com/brokerdesk/brokerdesk/internal/cache"
	"github.com/brokerdesk/brokerdesk/internal/config"
	"github.com/brokerdesk/brokerdesk/internal/domain/agreement"
	domainAuth "github.com/brokerdesk/brokerdesk/internal/domain/auth"
	"github.com/brokerdesk/brokerdesk/internal/domain/brokeraccount"
	"github.com/brokerdesk/brokerdesk/internal/domain/catalog"
	"github.com/brokerdesk/brokerdesk/internal/domain/notification"
	"github.com/brokerdesk/brokerdesk/internal/domain/ticket"
	"github.com/brokerdesk/brokerdesk/internal/domain/user"
	"github.com/brokerdesk/brokerdesk/internal/email"
	"github.com/brokerdesk/brokerdesk/internal/integration/stripe"
	"github.com/brokerdesk/brokerdesk/internal/logger"
	"github.com/brokerdesk/brokerdesk/internal/postgres"
	repo "github.com/brokerdesk/brokerdesk/internal/repository/postgres"
	"github.com/brokerdesk/brokerdesk/internal/security"
	"github.com/brokerdesk/brokerdesk/internal/service"
	sentrysdk "github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			newPostgresClient,
			cache.Initialize,
			auth.NewProvider,
			security.NewEncryptionService,
			stripe.NewClient,
			email.NewEmailClient,
			newEmailService,

			repo.NewCatalogRepository,
			repo.NewAgreementRepository,
			repo.NewBrokerAccountRepository,
			repo.NewUserRepository,
			repo.NewTicketRepository,
			repo.NewNotificationRepository,
			repo.NewAuthRepository,

			newServiceParams,
			service.NewAuthContextService,
			service.NewUserService,
			service.NewCatalogService,
			service.NewEntitlementService,
			service.NewEnrollmentService,
			service.NewLifecycleService,
			service.NewStepUpService,
			service.NewTicketService,
			service.NewNotificationService,
			service.NewBillingService,

			newHandlers,
			api.NewRouter,
		),
		fx.Invoke(initSentry, startServer),
	)

	app.Run()
}

func newPostgresClient(cfg *config.Configuration, log *logger.Logger) (postgres.IClient, error) {
	return postgres.NewClient(cfg, log)
}

func newEmailService(client *email.EmailClient, log *logger.Logger) *email.Email {
	return email.NewEmail(client, log.Desugar())
}

func newServiceParams(
	cfg *config.Configuration,
	log *logger.Logger,
	db postgres.IClient,
	c cache.Cache,
	catalogRepo catalog.Repository,
	agreementRepo agreement.Repository,
	brokerAccountRepo brokeraccount.Repository,
	userRepo user.Repository,
	ticketRepo ticket.Repository,
	notificationRepo notification.Repository,
	authRepo domainAuth.Repository,
	authProvider auth.Provider,
	encryption security.EncryptionService,
	stripeClient *stripe.Client,
	emailService *email.Email,
) service.ServiceParams {
	return service.ServiceParams{
		Logger:            log,
		Config:            cfg,
		DB:                db,
		Cache:             c,
		CatalogRepo:       catalogRepo,
		AgreementRepo:     agreementRepo,
		BrokerAccountRepo: brokerAccountRepo,
		UserRepo:          userRepo,
		TicketRepo:        ticketRepo,
		NotificationRepo:  notificationRepo,
		AuthRepo:          authRepo,
		AuthProvider:      authProvider,
		Encryption:        encryption,
		Stripe:            stripeClient,
		Email:             emailService,
	}
}

func newHandlers(
	userService service.UserService,
	catalogService service.CatalogService,
	entitlementService service.EntitlementService,
	enrollmentService service.EnrollmentService,
	lifecycleService service.LifecycleService,
	stepUpService service.StepUpService,
	ticketService service.TicketService,
	notificationService service.NotificationService,
	billingService service.BillingService,
	log *logger.Logger,
) api.Handlers {
	return api.Handlers{
		Auth:          v1.NewAuthHandler(userService, log),
		User:          v1.NewUserHandler(userService, log),
		Catalog:       v1.NewCatalogHandler(catalogService, log),
		Entitlement:   v1.NewEntitlementHandler(entitlementService, log),
		Enrollment:    v1.NewEnrollmentHandler(enrollmentService, log),
		Agreement:     v1.NewAgreementHandler(lifecycleService, log),
		BrokerAccount: v1.NewBrokerAccountHandler(stepUpService, log),
		Ticket:        v1.NewTicketHandler(ticketService, log),
		Notification:  v1.NewNotificationHandler(notificationService, log),
		Billing:       v1.NewBillingHandler(billingService, log),
	}
}

func initSentry(cfg *config.Configuration, log *logger.Logger) {
	if !cfg.Sentry.Enabled {
		return
	}
	err := sentrysdk.Init(sentrysdk.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		TracesSampleRate: cfg.Sentry.SampleRate,
		EnableTracing:    true,
	})
	if err != nil {
		log.Errorw("failed to initialize sentry", "error", err)
	}
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	router *gin.Engine,
	db postgres.IClient,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting server", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorw("server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("shutting down server")
			if err := srv.Shutdown(ctx); err != nil {
				return err
			}
			sentrysdk.Flush(2 * time.Second)
			return db.Close()
		},
	})
}
