package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"repairdesk/config"
	"repairdesk/cron"
	"repairdesk/database"
	chatRepo "repairdesk/database/repository/chat"
	notificationRepo "repairdesk/database/repository/notification"
	serviceRequestRepo "repairdesk/database/repository/servicerequest"
	userRepoPkg "repairdesk/database/repository/user"
	warrantyRepo "repairdesk/database/repository/warranty"
	"repairdesk/handlers"
	"repairdesk/middleware"
	"repairdesk/routes"
	"repairdesk/services/analytics"
	"repairdesk/services/chat"
	"repairdesk/services/lifecycle"
	"repairdesk/services/notification"
	"repairdesk/services/payment"
	"repairdesk/services/warranty"
	"repairdesk/telemetry"
	"repairdesk/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	cfg := config.AppConfig

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	if err := database.InitDB(rootCtx); err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}
	utils.InitCache()

	shutdownTracer, err := telemetry.InitTracer(rootCtx, cfg.OTelExporterEndpoint, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize tracing: %v", err)
	}
	defer shutdownTracer()

	utils.StartHealthMonitor(rootCtx, utils.GetCacheClient(), database.MongoClient)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	// repositories.
	users := userRepoPkg.NewMongoUserRepo()
	requests := serviceRequestRepo.NewMongoServiceRequestRepo()
	notifications := notificationRepo.NewMongoNotificationRepo()
	chats := chatRepo.NewMongoChatRepo()
	warranties := warrantyRepo.NewMongoWarrantyRepo()

	// services.
	notificationService, err := notification.NewDefaultNotificationService(notifications, chats, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}
	if cfg.FirebaseCredentialsFile != "" {
		client, err := utils.NewFCMClient(rootCtx, cfg.FirebaseCredentialsFile)
		if err != nil {
			logger.Warn("main: push mirroring disabled", zap.Error(err))
		} else {
			notificationService.Pusher = &notification.FCMPusher{Client: client}
			notificationService.Tokens = users
		}
	}

	analyticsService := analytics.NewDefaultAnalyticsService(requests, utils.GetCacheClient(), cfg.AnalyticsCacheTTL, logger)

	lifecycleService, err := lifecycle.NewDefaultLifecycleService(requests, users, notificationService, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}
	lifecycleService.Analytics = analyticsService

	chatService := chat.NewDefaultChatService(chats, notificationService, logger)

	var paymentService payment.PaymentService
	if cfg.StripeKey != "" {
		stripe.Key = cfg.StripeKey
		stripePayments := payment.NewStripePaymentService(lifecycleService, cfg.PaymentCurrency, logger)
		lifecycleService.Payments = stripePayments
		paymentService = stripePayments
	}

	var channels []warranty.Channel
	if cfg.SMTPUsername != "" && cfg.SMTPPassword != "" {
		from := cfg.EmailFrom
		if from == "" {
			from = cfg.SMTPUsername
		}
		channels = append(channels, warranty.NewEmailChannel(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, from))
	}
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioPhoneNumber != "" {
		channels = append(channels, warranty.NewSMSChannel(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber))
	}
	warrantyService := warranty.NewDefaultWarrantyService(warranties, notificationService, channels, cfg.WarrantySweepWorkers, logger)
	warrantyService.Users = users

	worker, err := cron.StartWarrantyWorker(warrantyService, logger)
	if err != nil {
		logger.Error("main: warranty worker not started", zap.Error(err))
	}

	handlerBundle := &handlers.HandlerBundle{
		Users:         users,
		Requests:      handlers.NewRequestHandler(lifecycleService, paymentService),
		Notifications: handlers.NewNotificationHandler(notificationService, users),
		Chat:          handlers.NewChatHandler(chatService, users),
		Analytics:     handlers.NewAnalyticsHandler(analyticsService),
		Warranties:    handlers.NewWarrantyHandler(warrantyService),
		Admin:         handlers.NewAdminHandler(lifecycleService),
	}
	routes.RegisterRoutes(router, handlerBundle)

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if worker != nil {
		worker.Stop()
	}
	if err := database.Close(ctx); err != nil {
		logger.Sugar().Warnf("main: mongo disconnect: %v", err)
	}
	stop()

	logger.Sugar().Info("main: server stopped gracefully")
}
