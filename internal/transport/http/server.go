package http

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	appsvc "docchat/internal/app"
	"docchat/internal/bootstrap"
	"docchat/internal/extract"
	"docchat/internal/pkg/credential"
	"docchat/internal/pkg/jwtutil"
	"docchat/internal/repository"
	"docchat/internal/transport/http/handler"
	"docchat/internal/transport/http/middleware"
)

const maxMultipartMemory = 8 << 20

func NewRouter(app *bootstrap.App) (*gin.Engine, error) {
	cfg := app.Config
	gin.SetMode(cfg.App.GinMode)
	router := gin.New()
	router.MaxMultipartMemory = maxMultipartMemory
	router.Use(middleware.RequestID(), middleware.AccessLog(cfg.App.Name), gin.Recovery())

	codec, err := credential.New(cfg.Auth.PasswordScheme, cfg.Auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("init password codec failed: %w", err)
	}
	tokens := jwtutil.NewManager(cfg.Auth.JWTSecret, cfg.JWTTTL())

	// optional integrations stay nil interfaces when disabled
	var vision extract.VisionModel
	if app.Models.Vision != nil {
		vision = app.Models.Vision
	}
	var archive appsvc.RawArchive
	if app.ObjectStore != nil {
		archive = app.ObjectStore
	}
	var publisher appsvc.ChatTurnPublisher
	if p := app.ChatTurnPublisher(); p != nil {
		publisher = p
	}
	var historyCache appsvc.HistoryCache
	if hc := app.HistoryCache(); hc != nil {
		historyCache = hc
	}

	userRepo := repository.NewUserRepository(app.DB)
	documentRepo := repository.NewDocumentRepository(app.DB)
	chatTurnRepo := repository.NewChatTurnRepository(app.DB)

	extractor := extract.NewExtractor(vision)
	responder := appsvc.NewResponder(app.Models.Text)
	authService := appsvc.NewAuthService(userRepo, codec, tokens)
	documentService := appsvc.NewDocumentService(documentRepo, extractor, archive, cfg.Upload.MaxFileBytes)
	chatService := appsvc.NewChatService(documentRepo, chatTurnRepo, responder, publisher, historyCache)
	guestService := appsvc.NewGuestService(extractor, responder, cfg.Upload.MaxFileBytes)

	healthHandler := handler.NewHealthHandler(app)
	authHandler := handler.NewAuthHandler(authService)
	documentHandler := handler.NewDocumentHandler(documentService)
	chatHandler := handler.NewChatHandler(chatService)
	guestHandler := handler.NewGuestHandler(guestService, documentService.MaxFileBytes())

	router.GET("/healthz", healthHandler.Check)

	api := router.Group("/api")
	api.GET("/health", healthHandler.Check)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(tokens), authHandler.Me)

	protected := api.Group("")
	protected.Use(middleware.AuthJWT(tokens))
	protected.POST("/upload", documentHandler.Upload)
	protected.GET("/documents", documentHandler.List)
	protected.GET("/documents/:id", documentHandler.Get)
	protected.DELETE("/documents/:id", documentHandler.Delete)
	protected.POST("/chat", chatHandler.Chat)
	protected.GET("/chat/history", chatHandler.History)

	limiter := middleware.NewLimiterStore(cfg.Guest.RatePerMinute, cfg.Guest.Burst, time.Minute)
	app.OnClose(limiter.Stop)
	guestGroup := api.Group("/guest")
	guestGroup.Use(middleware.RateLimitByIP(limiter))
	guestGroup.POST("/extract-text", guestHandler.ExtractText)
	guestGroup.POST("/chat", guestHandler.Chat)

	return router, nil
}
