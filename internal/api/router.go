package api

import (
	v1 "github.com/brokerdesk/brokerdesk/internal/api/v1"
	"github.com/brokerdesk/brokerdesk/internal/config"
	"github.com/brokerdesk/brokerdesk/internal/logger"
	"github.com/brokerdesk/brokerdesk/internal/rest/middleware"
	"github.com/brokerdesk/brokerdesk/internal/service"
	"github.com/gin-gonic/gin"
)

// Handlers bundles every v1 handler for router wiring.
type Handlers struct {
	Auth          *v1.AuthHandler
	User          *v1.UserHandler
	Catalog       *v1.CatalogHandler
	Entitlement   *v1.EntitlementHandler
	Enrollment    *v1.EnrollmentHandler
	Agreement     *v1.AgreementHandler
	BrokerAccount *v1.BrokerAccountHandler
	Ticket        *v1.TicketHandler
	Notification  *v1.NotificationHandler
	Billing       *v1.BillingHandler
}

// NewRouter builds the gin engine with the standard middleware chain
// and the public, private and staff route groups.
func NewRouter(handlers Handlers, cfg *config.Configuration, authService service.AuthContextService, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.ErrorHandler(log))
	router.Use(middleware.SentryMiddleware(cfg))
	router.Use(middleware.LoggingMiddleware(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := router.Group("/v1")
	{
		public.POST("/auth/signup", handlers.Auth.SignUp)
		public.POST("/auth/login", handlers.Auth.Login)
		public.POST("/auth/recovery", handlers.Auth.RequestPasswordRecovery)
	}

	private := router.Group("/v1")
	private.Use(middleware.AuthenticateMiddleware(authService, log))
	private.Use(middleware.SentryUserContextMiddleware)
	{
		private.GET("/me", handlers.User.GetMe)
		private.PUT("/me", handlers.User.UpdateMe)

		// Catalog reads are open to every signed-in user; the service
		// layer hides disabled entries from customers.
		private.GET("/services", handlers.Catalog.ListServiceDefinitions)
		private.GET("/services/:id", handlers.Catalog.GetServiceDefinition)

		private.GET("/entitlements", handlers.Entitlement.ListEntitlements)
		private.GET("/entitlements/:service_name", handlers.Entitlement.GetEntitlement)

		private.POST("/enrollments", handlers.Enrollment.StartEnrollment)
		private.GET("/enrollments/:id", handlers.Enrollment.GetSession)
		private.POST("/enrollments/:id/scroll", handlers.Enrollment.RecordScroll)
		private.POST("/enrollments/:id/read-confirmation", handlers.Enrollment.SetReadConfirmation)
		private.POST("/enrollments/:id/acknowledgments", handlers.Enrollment.SetAcknowledgment)
		private.POST("/enrollments/:id/broker", handlers.Enrollment.SubmitBrokerCredentials)
		private.POST("/enrollments/:id/step", handlers.Enrollment.AdvanceStep)
		private.POST("/enrollments/:id/confirm", handlers.Enrollment.ConfirmEnrollment)

		private.GET("/agreements", handlers.Agreement.ListAgreements)
		private.GET("/agreements/:id", handlers.Agreement.GetAgreement)
		private.POST("/agreements/:id/pause", handlers.Agreement.PauseAgreement)
		private.POST("/agreements/:id/reactivate", handlers.Agreement.ReactivateAgreement)
		private.POST("/agreements/:id/remove", handlers.Agreement.RemoveAgreement)

		private.GET("/broker-accounts", handlers.BrokerAccount.ListBrokerAccounts)
		private.GET("/broker-accounts/:id", handlers.BrokerAccount.GetBrokerAccount)
		private.POST("/step-up/challenge", handlers.BrokerAccount.Challenge)
		private.POST("/broker-accounts/:id/reveal", handlers.BrokerAccount.RevealCredentials)

		private.POST("/tickets", handlers.Ticket.CreateTicket)
		private.GET("/tickets", handlers.Ticket.ListTickets)
		private.GET("/tickets/:id", handlers.Ticket.GetTicket)
		private.PUT("/tickets/:id", handlers.Ticket.UpdateTicket)
		private.POST("/tickets/:id/status", handlers.Ticket.UpdateTicketStatus)
		private.POST("/tickets/:id/delete", handlers.Ticket.DeleteTicket)

		private.GET("/notifications", handlers.Notification.ListNotifications)
		private.POST("/notifications/:id/read", handlers.Notification.MarkRead)

		private.POST("/billing/checkout", handlers.Billing.CreateCheckout)
		private.GET("/billing/invoices", handlers.Billing.ListInvoices)
		private.GET("/billing/portal", handlers.Billing.OpenBillingPortal)
	}

	staff := router.Group("/v1/admin")
	staff.Use(middleware.AuthenticateMiddleware(authService, log))
	staff.Use(middleware.SentryUserContextMiddleware)
	staff.Use(middleware.RequireStaff)
	{
		staff.POST("/services", handlers.Catalog.CreateServiceDefinition)
		staff.PUT("/services/:id", handlers.Catalog.UpdateServiceDefinition)
		staff.DELETE("/services/:id", handlers.Catalog.DeleteServiceDefinition)

		staff.GET("/users", handlers.User.ListUsers)
		staff.GET("/users/:id", handlers.User.GetUser)
		staff.PUT("/users/:id", handlers.User.UpdateUser)

		staff.POST("/notifications", handlers.Notification.CreateNotification)
		staff.DELETE("/notifications/:id", handlers.Notification.DeleteNotification)
	}

	admin := router.Group("/v1/admin")
	admin.Use(middleware.AuthenticateMiddleware(authService, log))
	admin.Use(middleware.SentryUserContextMiddleware)
	admin.Use(middleware.RequireAdmin)
	{
		admin.POST("/users/:id/role", handlers.User.AssignRole)
		admin.POST("/users/:id/suspend", handlers.User.SetSuspended)
	}

	return router
}
