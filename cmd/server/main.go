package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"
	config "github.com/rohitdas13/postdeck/configs"
	"github.com/rohitdas13/postdeck/internal/api/handlers"
	"github.com/rohitdas13/postdeck/internal/api/middleware"
	"github.com/rohitdas13/postdeck/internal/dispatch"
	job "github.com/rohitdas13/postdeck/internal/jobs"
	"github.com/rohitdas13/postdeck/internal/queue"
	"github.com/rohitdas13/postdeck/internal/repository"
	"github.com/rohitdas13/postdeck/internal/service"
	"github.com/rohitdas13/postdeck/internal/xapi"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	credentialRepo := repository.NewCredentialRepository(db, cfg.SecretKey)
	authStateRepo := repository.NewAuthStateRepository(db)

	xClient := xapi.NewClient(*cfg)

	authService := service.NewAuthService(*cfg, userRepo, credentialRepo, authStateRepo, xClient)
	userService := service.NewUserService(userRepo, credentialRepo)
	postService := service.NewPostService(postRepo)
	mediaService := service.NewMediaService(*cfg)

	engine := dispatch.NewEngine(credentialRepo, postRepo, xClient)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "timestamp": time.Now().UTC()})
	})

	auth := handlers.NewAuthHandler(*cfg, authService)
	app.Get("/auth/connect", auth.Connect)
	app.Get("/auth/callback", auth.Callback)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)
	api.Post("/user/disconnect", user.Disconnect)

	post := handlers.NewPostHandler(postService)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts/create", post.CreatePost)
	api.Post("/posts/update", post.UpdatePost)
	api.Post("/posts/remove", post.RemovePost)

	media := handlers.NewMediaHandler(mediaService)
	api.Post("/media/upload", media.UploadMedia)

	dispatchHandler := handlers.NewDispatchHandler(client)
	api.Post("/dispatch/run", dispatchHandler.TriggerPass)

	// cron trigger for the dispatch loop
	dispatchJob := job.NewDispatchJob(client)

	c := cron.New()
	c.AddFunc(cfg.DispatchInterval, dispatchJob.Run)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		worker := queue.NewWorker(engine)
		mux.HandleFunc(queue.TaskTypeDispatchPass, worker.HandleDispatchPassTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
