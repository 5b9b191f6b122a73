// Package main (in api-subfolder) provides launch of the whole application except worker
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fnodes/ImageScaler/internal/kafka"
	"github.com/fnodes/ImageScaler/internal/mwlogger"
	"github.com/fnodes/ImageScaler/internal/repository"
	"github.com/fnodes/ImageScaler/internal/service"
	"github.com/fnodes/ImageScaler/internal/storage"
	"github.com/fnodes/ImageScaler/internal/transport"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/ginext"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	appConfig := config.New()
	appConfig.EnableEnv("")
	if err := appConfig.LoadEnvFiles("./.env"); err != nil {
		log.Fatalf("Failed to load envs: %s\nExiting app...", err)
	}

	zlog.InitConsole()
	if err := zlog.SetLevel("info"); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConn := repository.ConnectWithRetries(appConfig, 5, 10*time.Second)
	repository.MigrateWithRetries(dbConn.Master, "./migrations", 10, 15*time.Second)

	strg := storage.NewImgStorage(appConfig, 10*time.Second)
	repo := repository.NewPostgresTaskRepo(dbConn)

	broker := appConfig.GetString("KAFKA_BROKER")
	kafka.WaitKafkaReady(broker)
	topic := appConfig.GetString("KAFKA_TOPIC")
	kafka.InitKafkaTopics(ctx, broker, 10*time.Second, topic)
	pub := wbfkafka.NewProducer([]string{broker}, topic)

	var svc TaskAPIService = service.NewTaskService(
		repo, pub, strg,
		appConfig.GetString("SRC_KEY"),
		appConfig.GetString("MASK_KEY"),
	)
	handlers := transport.NewTaskHandler(svc)

	mode := appConfig.GetString("GIN_MODE")
	engine := ginext.New(mode)

	engine.GET("/ping", handlers.SimplePinger)
	engine.POST("/tasks", handlers.Create)                  // submit an operation on an uploaded image
	engine.GET("/tasks", handlers.GetAllTasks)              // paginated/sorted listing
	engine.GET("/tasks/:id", handlers.GetTask)              // task metadata and status
	engine.GET("/tasks/:id/result", handlers.LoadResult)    // result image download
	engine.GET("/tasks/:id/mask", handlers.LoadResultMask)  // result coverage mask download
	engine.DELETE("/tasks/:id", handlers.Delete)            // remove task and its objects
	engine.POST("/images/size", handlers.ImageSize)         // sync: report dimensions
	engine.POST("/images/scale-ratio", handlers.ScaleRatio) // sync: fit-to-max-dimension plan

	srv := &http.Server{
		Addr:    ":" + appConfig.GetString("APP_PORT"),
		Handler: mwlogger.NewMWLogger(engine),
	}

	// Server launch
	go func() {
		log.Printf("Server running on http://localhost%s\n", srv.Addr)
		err := srv.ListenAndServe()
		if err != nil {
			switch {
			case errors.Is(err, http.ErrServerClosed):
				log.Println("Server gracefully stopping...")
			default:
				log.Printf("Server stopped: %v", err)
				stop()
			}
		}
	}()

	// background requeue of tasks stuck without a worker
	go recoveryLoop(ctx, svc)

	<-ctx.Done()

	shutdown(pub, dbConn)
	log.Println("Exiting app...")
}

func recoveryLoop(ctx context.Context, svc TaskAPIService) {
	defer func() {
		if r := recover(); r != nil {
			log.Println("Recovery loop crashed:", r)
		}
	}()

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.ReviveOrphans(context.Background(), 20)
		}
	}
}

func shutdown(pub *wbfkafka.Producer, dbConn *dbpg.DB) {
	log.Println("Interrupt received!!! Starting shutdown sequence...")

	if err := pub.Close(); err != nil {
		log.Println("Failed to close Kafka-producer:", err)
	}
	log.Println("Kafka-producer connection closed.")

	if err := dbConn.Master.Close(); err != nil {
		log.Println("Failed to close DB-conn correctly:", err)
		return
	}
	log.Println("DBconn closed")
}
