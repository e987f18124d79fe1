package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"civicseva-be/config"
	"civicseva-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// StartMirror consumes lifecycle events and applies the denormalized
// mirrors with eventual consistency: the citizen's reported-issue snapshot
// and totals for issue status changes, and the issue's budgetUsed field for
// budget usage changes. No-op when the event bus is disabled.
func StartMirror() {
	ch := config.RabbitChannel
	if ch == nil {
		return
	}

	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		log.Println("Failed to declare event queue:", err)
		return
	}

	msgs, err := ch.Consume(QueueName, "", true, false, false, false, nil)
	if err != nil {
		log.Println("Failed to start mirror consumer:", err)
		return
	}

	go func() {
		for d := range msgs {
			var ev LifecycleEvent
			if err := json.Unmarshal(d.Body, &ev); err != nil {
				log.Println("Failed to decode lifecycle event:", err)
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			switch ev.Type {
			case IssueStatusChanged:
				mirrorIssueStatus(ctx, ev)
			case BudgetUsageChanged:
				mirrorBudgetUsage(ctx, ev)
			}
			cancel()
		}
	}()

	log.Println("Lifecycle mirror consumer started")
}

func mirrorIssueStatus(ctx context.Context, ev LifecycleEvent) {
	citizenID, err := primitive.ObjectIDFromHex(ev.CitizenID)
	if err != nil {
		return
	}
	issueID, err := primitive.ObjectIDFromHex(ev.IssueID)
	if err != nil {
		return
	}

	collection := config.GetCollection("citizens")

	var citizen models.Citizen
	if err := collection.FindOne(ctx, bson.M{"_id": citizenID}).Decode(&citizen); err != nil {
		if err != mongo.ErrNoDocuments {
			log.Println("Mirror: failed to load citizen:", err)
		}
		return
	}

	if err := citizen.SetReportedIssueStatus(issueID, models.IssueStatus(ev.Status)); err != nil {
		// the issue was never recorded on this profile, nothing to mirror
		return
	}

	_, err = collection.UpdateOne(ctx, bson.M{"_id": citizenID}, bson.M{"$set": bson.M{
		"issuesReported":      citizen.IssuesReported,
		"totalIssuesReported": citizen.TotalIssuesReported,
		"totalResolved":       citizen.TotalResolved,
		"totalPending":        citizen.TotalPending,
		"activityLog":         citizen.ActivityLog,
		"updatedAt":           time.Now(),
	}})
	if err != nil {
		log.Println("Mirror: failed to update citizen snapshot:", err)
	}
}

func mirrorBudgetUsage(ctx context.Context, ev LifecycleEvent) {
	issueID, err := primitive.ObjectIDFromHex(ev.IssueID)
	if err != nil {
		return
	}

	_, err = config.GetCollection("issues").UpdateOne(ctx, bson.M{"_id": issueID}, bson.M{"$set": bson.M{
		"budgetUsed": ev.AmountUsed,
		"updatedAt":  time.Now(),
	}})
	if err != nil {
		log.Println("Mirror: failed to update issue budgetUsed:", err)
	}
}
