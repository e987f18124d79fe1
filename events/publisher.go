package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"civicseva-be/config"
	"civicseva-be/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

// QueueName is the durable queue carrying all lifecycle events
const QueueName = "civic_events"

type EventType string

const (
	IssueStatusChanged EventType = "issue.status"
	BudgetUsageChanged EventType = "budget.usage"
)

// LifecycleEvent is the wire format for cross-entity mirror updates
type LifecycleEvent struct {
	Type       EventType `json:"type"`
	IssueID    string    `json:"issueId"`
	CitizenID  string    `json:"citizenId,omitempty"`
	BudgetID   string    `json:"budgetId,omitempty"`
	Status     string    `json:"status,omitempty"`
	AmountUsed float64   `json:"amountUsed,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func publish(ev LifecycleEvent) error {
	ch := config.RabbitChannel
	if ch == nil {
		// event bus disabled, mirrors only move through their endpoints
		return nil
	}

	_, err := ch.QueueDeclare(QueueName, true, false, false, false, nil)
	if err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return ch.PublishWithContext(ctx, "", QueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Timestamp:    time.Now(),
	})
}

// PublishIssueStatus emits a status-change event so the citizen's reported
// snapshot converges. Best effort: a publish failure is logged, never
// surfaced to the request.
func PublishIssueStatus(issue *models.Issue) {
	ev := LifecycleEvent{
		Type:      IssueStatusChanged,
		IssueID:   issue.ID.Hex(),
		CitizenID: issue.CitizenID.Hex(),
		Status:    string(issue.Status),
		Timestamp: time.Now(),
	}
	if err := publish(ev); err != nil {
		log.Println("Failed to publish issue status event:", err)
	}
}

// PublishBudgetUsage emits a usage-change event so the issue's budgetUsed
// mirror converges.
func PublishBudgetUsage(budget *models.Budget) {
	ev := LifecycleEvent{
		Type:       BudgetUsageChanged,
		IssueID:    budget.IssueID.Hex(),
		BudgetID:   budget.ID.Hex(),
		AmountUsed: budget.AmountUsed,
		Timestamp:  time.Now(),
	}
	if err := publish(ev); err != nil {
		log.Println("Failed to publish budget usage event:", err)
	}
}
