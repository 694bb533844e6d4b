package router

import (
	"log"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/ihere-app/ihere-backend/internal/cache"
	"github.com/ihere-app/ihere-backend/internal/chat"
	"github.com/ihere-app/ihere-backend/internal/handlers"
	"github.com/ihere-app/ihere-backend/internal/livequery"
	"github.com/ihere-app/ihere-backend/internal/middleware"
	"github.com/ihere-app/ihere-backend/internal/models"
	"github.com/ihere-app/ihere-backend/internal/repositories"
	"github.com/ihere-app/ihere-backend/internal/social"
	"github.com/ihere-app/ihere-backend/internal/storage"
	"github.com/ihere-app/ihere-backend/internal/store"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

// Dependencies holds everything the routes need. Postgres and Media may be
// nil when the corresponding feature is not configured.
type Dependencies struct {
	Store        store.Client
	AuthClient   *auth.Client
	Postgres     *gorm.DB
	Media        *storage.MediaStore
	ChatBackend  chat.Backend
	ChatTokenTTL time.Duration
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) *livequery.Manager {
	var credentialRepo repositories.CredentialRepository
	if deps.Postgres != nil {
		if err := deps.Postgres.AutoMigrate(&models.IssuedCredential{}); err != nil {
			log.Fatalf("Failed to auto migrate models: %v", err)
		}
		log.Println("PostgreSQL auto-migrations completed.")
		credentialRepo = repositories.NewPostgresCredentialRepository(deps.Postgres)
		if purged, err := credentialRepo.PurgeExpired(time.Now()); err != nil {
			log.Printf("Failed to purge expired chat credentials: %v", err)
		} else if purged > 0 {
			log.Printf("Purged %d expired chat credentials.", purged)
		}
	}

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"message": "Hello, World!"})
	})

	// --- Initialize Services ---
	userCache := cache.NewEntityCache(deps.Store, models.CollectionUsers)
	live := livequery.NewManager(deps.Store)
	fanout := social.NewFanout(deps.Store)
	postService := social.NewPostService(deps.Store, deps.Media)
	profileService := social.NewProfileService(deps.Store, userCache, postService, deps.AuthClient)
	commentService := social.NewCommentService(deps.Store, fanout)
	bookingService := social.NewBookingService(deps.Store, fanout)
	bridge := chat.NewChannelBridge(deps.ChatBackend)
	exchange := chat.NewTokenExchange(deps.ChatBackend, bridge, deps.ChatTokenTTL, credentialRepo)

	// --- Protected routes (require Firebase authentication) ---
	api := e.Group("/api")
	api.Use(middleware.FirebaseAuthMiddleware(deps.AuthClient))
	log.Println("Firebase authentication middleware applied to /api group.")

	// Chat credential routes
	connectHandler := handlers.NewConnectHandler(exchange)
	connectHandler.RegisterConnectRoutes(api)
	log.Println("Connect routes configured.")

	// User profile routes
	userHandler := handlers.NewUserHandler(profileService, userCache, deps.Media)
	userHandler.RegisterUserRoutes(api)
	log.Println("User profile routes configured.")

	// Post routes
	postHandler := handlers.NewPostHandler(postService, deps.Media)
	postHandler.RegisterPostRoutes(api)
	log.Println("Post routes configured.")

	// Feed routes
	feedHandler := handlers.NewFeedHandler(postService, live)
	feedHandler.RegisterFeedRoutes(api)
	log.Println("Feed routes configured.")

	// Like routes
	likeHandler := handlers.NewLikeHandler(deps.Store, fanout, postService, profileService)
	likeHandler.RegisterLikeRoutes(api)
	log.Println("Like routes configured.")

	// Comment routes
	commentHandler := handlers.NewCommentHandler(commentService, profileService)
	commentHandler.RegisterCommentRoutes(api)
	log.Println("Comment routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(deps.Store, live)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	// Booking routes
	bookingHandler := handlers.NewBookingHandler(bookingService)
	bookingHandler.RegisterBookingRoutes(api)
	log.Println("Booking routes configured.")

	// Channel routes
	channelHandler := handlers.NewChannelHandler(bridge, profileService)
	channelHandler.RegisterChannelRoutes(api)
	log.Println("Channel routes configured.")

	log.Println("All routes configured.")
	return live
}
