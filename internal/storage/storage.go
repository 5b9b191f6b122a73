// Package storage wires the minio-backed object storage with startup retries
package storage

import (
	"log"
	"time"

	"github.com/fnodes/ImageScaler/internal/storage/miniostorage"
	"github.com/wb-go/wbf/config"
)

func NewImgStorage(cfg *config.Config, delay time.Duration) *miniostorage.MinioObjectStorage {
	for {
		log.Println("Connecting to object storage...")
		client, err := miniostorage.NewMinioClient(cfg)
		if err != nil {
			log.Printf("Failed to init connection to object storage: %v\nNext retry in %v...", err, delay)
			time.Sleep(delay)
			continue
		}
		log.Println("Object storage connected!")
		return client
	}
}
