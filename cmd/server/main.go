package main

import (
	"context"
	"log"

	"github.com/ihere-app/ihere-backend/internal/chat"
	"github.com/ihere-app/ihere-backend/internal/router"
	"github.com/ihere-app/ihere-backend/internal/storage"
	"github.com/ihere-app/ihere-backend/internal/store"
	"github.com/ihere-app/ihere-backend/pkg/config"
	"github.com/ihere-app/ihere-backend/pkg/firebase"
	"github.com/ihere-app/ihere-backend/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	// Initialize Firebase
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.StorageBucket)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	// Select the document store driver
	var docStore store.Client
	switch cfg.StoreDriver {
	case "firestore":
		docStore = store.NewFirestoreClient(firebaseApp.Firestore)
	case "mongo":
		if db.Mongo == nil {
			log.Fatalf("STORE_DRIVER=mongo requires MONGO_URI to be set")
		}
		docStore = store.NewMongoClient(db.Mongo.Database("ihere"))
	case "memory":
		docStore = store.NewMemoryClient()
	default:
		log.Fatalf("Unknown STORE_DRIVER: %s", cfg.StoreDriver)
	}
	log.Printf("Document store driver: %s", cfg.StoreDriver)

	// Select the chat backend
	var chatBackend chat.Backend
	switch cfg.ChatDriver {
	case "stream":
		chatBackend, err = chat.NewStreamBackend(cfg.StreamAPIKey, cfg.StreamAPISecret)
		if err != nil {
			log.Fatalf("Failed to initialize Stream chat backend: %v", err)
		}
	case "memory":
		chatBackend = chat.NewMemoryBackend(cfg.StreamAPISecret)
	default:
		log.Fatalf("Unknown CHAT_DRIVER: %s", cfg.ChatDriver)
	}
	log.Printf("Chat driver: %s", cfg.ChatDriver)

	// Media storage is optional
	var media *storage.MediaStore
	if firebaseApp.Bucket != nil {
		media = storage.NewMediaStore(firebaseApp.Bucket)
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	live := router.SetupRoutes(e, router.Dependencies{
		Store:        docStore,
		AuthClient:   firebaseApp.AuthClient,
		Postgres:     db.Postgres,
		Media:        media,
		ChatBackend:  chatBackend,
		ChatTokenTTL: cfg.ChatTokenTTL,
	})
	defer live.Shutdown()

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
