package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tradelinkhq/tradelink-backend/api/controllers"
	"github.com/tradelinkhq/tradelink-backend/api/middleware"
	"github.com/tradelinkhq/tradelink-backend/internal/accounts"
	"github.com/tradelinkhq/tradelink-backend/internal/audit"
	"github.com/tradelinkhq/tradelink-backend/internal/auth"
	"github.com/tradelinkhq/tradelink-backend/internal/csthreads"
	"github.com/tradelinkhq/tradelink-backend/internal/faqs"
	"github.com/tradelinkhq/tradelink-backend/internal/feedback"
	"github.com/tradelinkhq/tradelink-backend/internal/inquiries"
	"github.com/tradelinkhq/tradelink-backend/internal/notifications"
	"github.com/tradelinkhq/tradelink-backend/internal/orders"
	"github.com/tradelinkhq/tradelink-backend/internal/products"
	"github.com/tradelinkhq/tradelink-backend/internal/settlements"
	"github.com/tradelinkhq/tradelink-backend/pkg/auth/session"
	"github.com/tradelinkhq/tradelink-backend/pkg/config"
	"github.com/tradelinkhq/tradelink-backend/pkg/db"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
	"github.com/tradelinkhq/tradelink-backend/pkg/metrics"
	"github.com/tradelinkhq/tradelink-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
	sessions session.AccessSessionChecker,
	authService auth.Service,
	accountsService accounts.Service,
	productsService products.Service,
	ordersService orders.Service,
	settlementsService settlements.Service,
	inquiriesService inquiries.Service,
	csThreadsService csthreads.Service,
	notificationsService notifications.Service,
	faqsService faqs.Service,
	feedbackService feedback.Service,
	auditLog audit.Log,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	signInPolicy := middleware.NewAuthRateLimitPolicy(
		"signin",
		cfg.AuthRateLimit.SignInWindow,
		cfg.AuthRateLimit.SignInIPLimit,
		0,
	)
	adminLoginPolicy := middleware.NewAuthRateLimitPolicy(
		"admin-login",
		cfg.AuthRateLimit.AdminLoginWindow,
		cfg.AuthRateLimit.AdminLoginIPLimit,
		cfg.AuthRateLimit.AdminLoginUserLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/faqs", controllers.ListPublishedFAQs(faqsService, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(signInPolicy, redisClient, logg)).Post("/signin", controllers.SignIn(authService, logg))
		r.With(middleware.AuthRateLimit(adminLoginPolicy, redisClient, logg)).Post("/admin/login", controllers.AdminLogin(authService, logg))
		r.Post("/refresh", controllers.RefreshSession(authService, logg))
		r.Post("/logout", controllers.Logout(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/apply", controllers.ApplyForAccount(accountsService, logg))
			r.Get("/{accountID}", controllers.GetAccount(accountsService, logg))
		})
		r.Delete("/account", controllers.DeleteOwnAccount(accountsService, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(productsService, logg))
			r.Post("/", controllers.CreateProduct(productsService, logg))
			r.Get("/{productID}", controllers.GetProduct(productsService, logg))
			r.Patch("/{productID}", controllers.UpdateProduct(productsService, logg))
			r.Patch("/{productID}/status", controllers.UpdateProductStatus(productsService, logg))
			r.Delete("/{productID}", controllers.DeleteProduct(productsService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(ordersService, logg))
			r.Post("/", controllers.CreateOrder(ordersService, logg))
			r.Get("/{orderID}", controllers.GetOrder(ordersService, logg))
			r.Patch("/{orderID}/status", controllers.UpdateOrderStatus(ordersService, logg))
			r.Get("/{orderID}/settlement", controllers.GetOrderSettlement(settlementsService, logg))
		})

		r.Get("/settlements", controllers.ListSettlements(settlementsService, logg))
		r.Patch("/settlements/{settlementID}/status", controllers.UpdateSettlementStatus(settlementsService, logg))

		r.Route("/inquiries", func(r chi.Router) {
			r.Get("/", controllers.ListInquiries(inquiriesService, logg))
			r.Post("/", controllers.CreateInquiry(inquiriesService, logg))
			r.Get("/{inquiryID}", controllers.GetInquiry(inquiriesService, logg))
			r.Post("/{inquiryID}/reply", controllers.ReplyToInquiry(inquiriesService, logg))
			r.Post("/{inquiryID}/messages", controllers.AddInquiryFollowUp(inquiriesService, logg))
			r.Post("/{inquiryID}/close", controllers.CloseInquiry(inquiriesService, logg))
			r.Patch("/messages/{messageID}", controllers.EditInquiryMessage(inquiriesService, logg))
		})

		r.Route("/cs-threads", func(r chi.Router) {
			r.Get("/", controllers.ListCSThreads(csThreadsService, logg))
			r.Post("/", controllers.CreateCSThread(csThreadsService, logg))
			r.Get("/{threadID}", controllers.GetCSThread(csThreadsService, logg))
			r.Post("/{threadID}/reply", controllers.ReplyToCSThread(csThreadsService, logg))
			r.Post("/{threadID}/escalate", controllers.EscalateCSThread(csThreadsService, logg))
			r.Post("/{threadID}/close", controllers.CloseCSThread(csThreadsService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/summary", controllers.NotificationSummary(notificationsService, logg))
			r.Get("/orders", controllers.RecentOrderNotifications(notificationsService, logg))
			r.Post("/orders/read-all", controllers.MarkOrderNotificationsRead(notificationsService, logg))
			r.Get("/inquiries", controllers.RecentInquiryNotifications(notificationsService, logg))
		})

		r.Post("/feedback", controllers.SubmitFeedback(feedbackService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RequireRole(logg, enums.ProfileRoleAdmin))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", controllers.ListAccounts(accountsService, logg))
			r.Post("/{accountID}/approve", controllers.ApproveAccount(accountsService, logg))
			r.Post("/{accountID}/reject", controllers.RejectAccount(accountsService, logg))
			r.Post("/{accountID}/suspend", controllers.SuspendAccount(accountsService, logg))
			r.Post("/{accountID}/reactivate", controllers.ReactivateAccount(accountsService, logg))
		})

		r.Route("/faqs", func(r chi.Router) {
			r.Get("/", controllers.ListAllFAQs(faqsService, logg))
			r.Post("/", controllers.CreateFAQ(faqsService, logg))
			r.Patch("/{faqID}", controllers.UpdateFAQ(faqsService, logg))
			r.Delete("/{faqID}", controllers.DeleteFAQ(faqsService, logg))
		})

		r.Get("/feedback", controllers.ListFeedback(feedbackService, logg))
		r.Get("/audit", controllers.ListAuditLog(auditLog, logg))
	})

	return r
}
