package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	exportJob "inkwell-backend/internal/domains/export/job"
	"inkwell-backend/internal/shared"
	"inkwell-backend/pkg/container"
	"inkwell-backend/pkg/logger"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	c, err := container.NewContainer()
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer c.Cleanup()

	logger.Init(c.Config.App.Environment)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     c.Config.Redis.Host,
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	registerHandlers(mux, c)

	go func() {
		log.Println("Worker starting...")
		if err := srv.Run(mux); err != nil {
			log.Fatalf("Worker failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down worker...")
	srv.Shutdown()
	log.Println("Worker exited")
}

func registerHandlers(mux *asynq.ServeMux, c *container.Container) {
	cleanupOrphan := exportJob.NewCleanupOrphanHandler(c.Store)
	mux.HandleFunc(shared.TypeCleanupOrphanArchive, cleanupOrphan.ProcessTask)
}
