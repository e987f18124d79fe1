package config

import (
	"log"
	"os"

	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	RabbitConn    *amqp.Connection
	RabbitChannel *amqp.Channel
)

// ConnectRabbit opens the event-bus connection. The lifecycle event bus is
// disabled when RABBITMQ_URI is not configured.
func ConnectRabbit() error {
	uri := os.Getenv("RABBITMQ_URI")
	if uri == "" {
		log.Println("RABBITMQ_URI not set, lifecycle event bus disabled")
		return nil
	}

	conn, err := amqp.Dial(uri)
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}

	RabbitConn = conn
	RabbitChannel = ch
	log.Println("Connected to RabbitMQ")
	return nil
}
