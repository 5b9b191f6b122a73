// Package kafka bootstraps the task-queue topics and probes broker readiness
package kafka

import (
	"context"
	"errors"
	"log"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// InitKafkaTopics creates the task-queue topics, retrying until every one
// exists or the context is canceled. An already-existing topic counts as
// success, so reruns on restart are harmless.
func InitKafkaTopics(ctx context.Context, brokerAddr string, delay time.Duration, topics ...string) {
	client := &kafkago.Client{
		Addr:    kafkago.TCP(brokerAddr),
		Timeout: 10 * time.Second,
	}

	req := kafkago.CreateTopicsRequest{
		Topics: make([]kafkago.TopicConfig, 0, len(topics)),
	}
	for _, t := range topics {
		req.Topics = append(req.Topics, kafkago.TopicConfig{
			Topic:             t,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("InitKafkaTopics canceled or timed out")
			return
		default:
		}

		resp, err := client.CreateTopics(ctx, &req)
		if err != nil {
			log.Printf("Failed to run topics creation request: %v\nWait %v before next try...", err, delay)
			time.Sleep(delay)
			continue
		}

		ready := 0
		for topic, tErr := range resp.Errors {
			switch {
			case tErr == nil, errors.Is(tErr, kafkago.TopicAlreadyExists):
				ready++
			default:
				log.Printf("Topic %q creation error: %v", topic, tErr)
			}
		}

		if ready == len(resp.Errors) {
			log.Println("All task-queue topics are in place")
			return
		}
		time.Sleep(delay)
	}
}

// WaitKafkaReady blocks until the broker accepts a TCP dial.
func WaitKafkaReady(brokerAddr string) {
	for {
		conn, err := kafkago.Dial("tcp", brokerAddr)
		if err == nil {
			if errConn := conn.Close(); errConn != nil {
				log.Println("Failed to close connection after probing Kafka:", errConn)
			}
			break
		}
		log.Println("Kafka not ready, retrying in 5s...")
		time.Sleep(5 * time.Second)
	}
	log.Println("Kafka is ready!")
}
