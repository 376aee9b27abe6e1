package repository

import (
	"context"
	"time"

	"marketplace-app/subscription-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SubscriptionRepository хранит материализованные инстансы подписок.
type SubscriptionRepository struct {
	col *mongo.Collection
}

func NewSubscriptionRepository(db *mongo.Database) *SubscriptionRepository {
	return &SubscriptionRepository{col: db.Collection("product_subscriptions")}
}

func (r *SubscriptionRepository) Create(ctx context.Context, inst *models.SubscriptionInstance) error {
	inst.CreatedAt = time.Now().UTC()

	res, err := r.col.InsertOne(ctx, inst)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		inst.ID = oid
	}
	return nil
}

func (r *SubscriptionRepository) FindByPlanAndDate(ctx context.Context, planID primitive.ObjectID, dateString string) ([]models.SubscriptionInstance, error) {
	cursor, err := r.col.Find(ctx, bson.M{
		"product_subscription_plan_id": planID,
		"date_string":                  dateString,
	})
	if err != nil {
		return nil, err
	}
	var instances []models.SubscriptionInstance
	err = cursor.All(ctx, &instances)
	return instances, err
}

func (r *SubscriptionRepository) FindByDate(ctx context.Context, dateString string) ([]models.SubscriptionInstance, error) {
	cursor, err := r.col.Find(ctx, bson.M{"date_string": dateString})
	if err != nil {
		return nil, err
	}
	var instances []models.SubscriptionInstance
	err = cursor.All(ctx, &instances)
	return instances, err
}
