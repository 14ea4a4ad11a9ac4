package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/dirtfreecarpet/portal/internal/audit"
	auditdomain "github.com/dirtfreecarpet/portal/internal/audit/domain"
	"github.com/dirtfreecarpet/portal/internal/booking"
	bookingdomain "github.com/dirtfreecarpet/portal/internal/booking/domain"
	"github.com/dirtfreecarpet/portal/internal/config"
	"github.com/dirtfreecarpet/portal/internal/customer"
	customerdomain "github.com/dirtfreecarpet/portal/internal/customer/domain"
	"github.com/dirtfreecarpet/portal/internal/document"
	documentdomain "github.com/dirtfreecarpet/portal/internal/document/domain"
	"github.com/dirtfreecarpet/portal/internal/invoice"
	invoicedomain "github.com/dirtfreecarpet/portal/internal/invoice/domain"
	"github.com/dirtfreecarpet/portal/internal/loyalty"
	loyaltydomain "github.com/dirtfreecarpet/portal/internal/loyalty/domain"
	"github.com/dirtfreecarpet/portal/internal/message"
	messagedomain "github.com/dirtfreecarpet/portal/internal/message/domain"
	"github.com/dirtfreecarpet/portal/internal/notification"
	"github.com/dirtfreecarpet/portal/internal/observability"
	obsmiddleware "github.com/dirtfreecarpet/portal/internal/observability/logger"
	obsmetrics "github.com/dirtfreecarpet/portal/internal/observability/metrics"
	obstracing "github.com/dirtfreecarpet/portal/internal/observability/tracing"
	"github.com/dirtfreecarpet/portal/internal/payment"
	paymentdomain "github.com/dirtfreecarpet/portal/internal/payment/domain"
	"github.com/dirtfreecarpet/portal/internal/providers/email"
	"github.com/dirtfreecarpet/portal/internal/providers/pdf"
	"github.com/dirtfreecarpet/portal/internal/ratelimit"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	audit.Module,
	customer.Module,
	booking.Module,
	document.Module,
	invoice.Module,
	message.Module,
	loyalty.Module,
	email.Module,
	pdf.Module,
	notification.Module,
	payment.Module,
	ratelimit.Module,
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, _ *Server) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	genID         *snowflake.Node
	customerSvc   customerdomain.Service
	invoiceSvc    invoicedomain.Service
	bookingSvc    bookingdomain.Service
	loyaltySvc    loyaltydomain.Service
	messageSvc    messagedomain.Service
	documentSvc   documentdomain.Service
	auditSvc      auditdomain.Service
	paymentSvc    paymentdomain.Service
	pdfProvider   pdf.Provider
	redeemLimiter *ratelimit.RedeemLimiter
	obsMetrics    *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	GenID         *snowflake.Node
	CustomerSvc   customerdomain.Service
	InvoiceSvc    invoicedomain.Service
	BookingSvc    bookingdomain.Service
	LoyaltySvc    loyaltydomain.Service
	MessageSvc    messagedomain.Service
	DocumentSvc   documentdomain.Service
	AuditSvc      auditdomain.Service
	PaymentSvc    paymentdomain.Service
	PDFProvider   pdf.Provider
	RedeemLimiter *ratelimit.RedeemLimiter `optional:"true"`
	ObsMetrics    *obsmetrics.Metrics      `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		genID:         p.GenID,
		customerSvc:   p.CustomerSvc,
		invoiceSvc:    p.InvoiceSvc,
		bookingSvc:    p.BookingSvc,
		loyaltySvc:    p.LoyaltySvc,
		messageSvc:    p.MessageSvc,
		documentSvc:   p.DocumentSvc,
		auditSvc:      p.AuditSvc,
		paymentSvc:    p.PaymentSvc,
		pdfProvider:   p.PDFProvider,
		redeemLimiter: p.RedeemLimiter,
		obsMetrics:    p.ObsMetrics,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Payment Webhooks --------
	api.POST("/webhooks/:provider", s.HandlePaymentWebhook)

	portal := api.Group("", s.CustomerRequired())

	portal.GET("/me", s.GetCurrentCustomer)

	// -------- Invoices --------
	portal.GET("/invoices", s.ListInvoices)
	portal.GET("/invoices/:id", s.GetInvoiceByID)
	portal.GET("/invoices/:id/pdf", s.DownloadInvoicePDF)

	// -------- Loyalty --------
	portal.GET("/loyalty", s.GetLoyaltyBalance)
	portal.GET("/loyalty/transactions", s.ListLoyaltyTransactions)
	portal.GET("/rewards", s.ListRewards)
	portal.POST("/rewards/:id/redeem", s.RedeemReward)

	// -------- Appointments --------
	portal.GET("/appointments", s.ListAppointments)
	portal.GET("/appointments/:id", s.GetAppointmentByID)
	portal.POST("/appointments/:id/cancel", s.CancelAppointment)

	// -------- Messages --------
	portal.GET("/messages", s.ListMessages)
	portal.POST("/messages", s.CreateMessage)
	portal.GET("/messages/unread-count", s.GetUnreadMessageCount)
	portal.POST("/messages/mark-all-read", s.MarkAllMessagesRead)
	portal.GET("/messages/:id", s.GetMessageThread)
	portal.POST("/messages/:id/replies", s.ReplyToMessage)

	// -------- Service history --------
	portal.GET("/documents", s.GetServiceHistory)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")

	admin.GET("/audit-logs", s.ListAuditLogs)
}
