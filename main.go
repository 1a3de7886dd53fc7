package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"hustlr/config"
	"hustlr/database"
	bookingRepoPkg "hustlr/database/repository/booking"
	conversationRepoPkg "hustlr/database/repository/conversation"
	providerRepoPkg "hustlr/database/repository/provider"
	ratingRepoPkg "hustlr/database/repository/rating"
	userRepoPkg "hustlr/database/repository/user"
	"hustlr/handlers"
	"hustlr/middleware"
	"hustlr/routes"
	bookingSvc "hustlr/services/booking"
	"hustlr/services/intelligence"
	providerSvc "hustlr/services/provider"
	ratingSvc "hustlr/services/rating"
	userSvc "hustlr/services/user"
	"hustlr/services/whatsapp"
	"hustlr/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.IsProduction())
	defer logger.Sync()

	mongoClient, err := database.Connect(cfg.MongoURI)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}
	defer database.Disconnect(mongoClient)
	db := mongoClient.Database(cfg.MongoDBName)

	contextCache, err := utils.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisContextDB)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}
	defer contextCache.Close()

	// Repositories.
	userRepo := userRepoPkg.NewMongoUserRepo(db)
	provRepo := providerRepoPkg.NewMongoProviderRepo(db)
	bkgRepo := bookingRepoPkg.NewMongoBookingRepo(db)
	rtgRepo := ratingRepoPkg.NewMongoRatingRepo(db)
	convRepo := conversationRepoPkg.NewMongoConversationRepo(db)

	for _, ensure := range []func() error{
		userRepo.EnsureIndexes,
		provRepo.EnsureIndexes,
		bkgRepo.EnsureIndexes,
		rtgRepo.EnsureIndexes,
		convRepo.EnsureIndexes,
	} {
		if err := ensure(); err != nil {
			logger.Sugar().Fatalf("main: %v", err)
		}
	}

	// Services.
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenLifetime)
	userService := &userSvc.DefaultUserService{Repo: userRepo, Tokens: tokens, Logger: logger}
	providerService := &providerSvc.DefaultProviderService{Repo: provRepo, Logger: logger}
	bookingService := &bookingSvc.DefaultBookingService{
		Repo:         bkgRepo,
		ProviderRepo: provRepo,
		Clock:        bookingSvc.SystemClock{},
		Logger:       logger,
	}
	ratingService := &ratingSvc.DefaultRatingService{
		Repo:         rtgRepo,
		BookingRepo:  bkgRepo,
		ProviderRepo: provRepo,
		Logger:       logger,
	}

	contextStore := intelligence.NewRedisContextStore(contextCache, 30*time.Minute)
	responder, err := intelligence.NewGeminiResponder(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, contextStore, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize responder: %v", err)
	}
	messageService := &whatsapp.DefaultMessageService{
		Repo:             convRepo,
		UserRepo:         userRepo,
		Responder:        responder,
		BookingSvc:       bookingService,
		ResponderTimeout: cfg.ResponderTimeout,
		Logger:           logger,
	}

	// Router.
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(cors.Default())
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	routes.Register(router, routes.Handlers{
		Auth:     handlers.NewAuthHandler(userService),
		Booking:  handlers.NewBookingHandler(bookingService),
		Rating:   handlers.NewRatingHandler(ratingService),
		Provider: handlers.NewProviderHandler(providerService),
		Admin: &handlers.AdminHandler{
			Providers:    providerService,
			UserRepo:     userRepo,
			ProviderRepo: provRepo,
			BookingRepo:  bkgRepo,
			RatingRepo:   rtgRepo,
		},
		WhatsApp: handlers.NewWhatsAppHandler(messageService),
		Tokens:   tokens,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: router,
	}

	go func() {
		logger.Sugar().Infof("Hustlr listening on port %s", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: forced shutdown: %v", err)
	}
}
