package repository

import (
	"context"
	"time"

	"marketplace-app/subscription-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection("orders")}
}

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, order)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = oid
	}
	return nil
}

func (r *OrderRepository) FindBySubscriptionAndDate(ctx context.Context, planID primitive.ObjectID, dateString string) ([]models.Order, error) {
	cursor, err := r.col.Find(ctx, bson.M{
		"product_subscription_id":   planID,
		"product_subscription_date": dateString,
	})
	if err != nil {
		return nil, err
	}
	var orders []models.Order
	err = cursor.All(ctx, &orders)
	return orders, err
}
