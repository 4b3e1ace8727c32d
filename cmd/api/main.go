package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"

	"campusmarket/internal/adapter/api"
	"campusmarket/internal/adapter/api/handler"
	apimiddleware "campusmarket/internal/adapter/api/middleware"
	"campusmarket/internal/adapter/api/router"
	"campusmarket/internal/adapter/repository"
	domainrepo "campusmarket/internal/domain/repository"
	"campusmarket/internal/infrastructure/presence"
	"campusmarket/internal/infrastructure/typing"
	"campusmarket/internal/infrastructure/websocket"
	"campusmarket/internal/usecase"
	"campusmarket/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var (
		threadRepo  domainrepo.ThreadRepository
		contactRepo domainrepo.ContactRepository
		listingRepo domainrepo.ListingRepository
		authClient  *auth.Client
	)

	switch cfg.StorageBackend {
	case "firestore":
		opt := firebaseCredentials()

		firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}

		authClient, err = firebaseApp.Auth(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase Auth: %v", err)
		}

		firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
		if err != nil {
			log.Fatalf("Failed to create Firestore client: %v", err)
		}
		defer firestoreClient.Close()

		threadRepo = repository.NewFirestoreThreadRepository(firestoreClient)
		contactRepo = repository.NewFirestoreContactRepository(firestoreClient)
		listingRepo = repository.NewFirestoreListingRepository(firestoreClient)

	case "memory":
		if cfg.Environment != "development" {
			log.Fatalf("Memory storage backend is only supported in development")
		}
		log.Printf("Using in-memory storage (development mode, X-User-ID auth)")
		threadRepo = repository.NewMemoryThreadRepository()
		contactRepo = repository.NewMemoryContactRepository()
		listingRepo = repository.NewMemoryListingRepository()

	default:
		log.Fatalf("Unknown storage backend %q", cfg.StorageBackend)
	}

	tracker := presence.NewTracker()
	typingCoord := typing.NewCoordinator(cfg.TypingTTL)
	typingCoord.StartSweepRoutine()

	wsManager := websocket.NewManager(tracker)
	wsManager.Start(ctx)

	registry, store := usecase.NewMessagingCore(threadRepo, cfg.MaxMessageLength)
	conversationUseCase := usecase.NewConversationUseCase(
		registry,
		store,
		contactRepo,
		listingRepo,
		tracker,
		typingCoord,
		wsManager,
		cfg.TypingTTL,
	)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient, cfg.Environment)

	conversationHandler := handler.NewConversationHandler(conversationUseCase)
	wsHandler := handler.NewWebSocketHandler(wsManager, authMiddleware, conversationUseCase)

	router.Setup(e, conversationHandler, wsHandler, authMiddleware)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}

// firebaseCredentials resolves the service account the same way for Auth and
// Firestore: inline JSON in production, a file path for local development.
func firebaseCredentials() option.ClientOption {
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		return option.WithCredentialsJSON([]byte(serviceAccountJSON))
	}

	serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
	if serviceAccountPath == "" {
		serviceAccountPath = "./service-account.json"
	}
	if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
		log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
	}

	log.Printf("Using Firebase service account from file: %s", serviceAccountPath)
	return option.WithCredentialsFile(serviceAccountPath)
}
