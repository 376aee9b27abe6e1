package repository

import (
	"context"
	"time"

	"marketplace-app/subscription-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type PlanRepository struct {
	col *mongo.Collection
}

func NewPlanRepository(db *mongo.Database) *PlanRepository {
	return &PlanRepository{col: db.Collection("product_subscription_plans")}
}

func (r *PlanRepository) Create(ctx context.Context, plan *models.SubscriptionPlan) error {
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, plan)
	if err != nil {
		return err
	}
	// Присваиваем сгенерированный Mongo ObjectID обратно в структуру
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		plan.ID = oid
	}
	return nil
}

func (r *PlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Update — частичное обновление через $set. Ключи могут быть точечными путями
// (например "plan.override_dates.2021-09-22"), чтобы дописать один перенос,
// не переписывая всю карту.
func (r *PlanRepository) Update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	update["updated_at"] = time.Now().UTC()
	_, err := r.col.UpdateByID(ctx, id, bson.M{"$set": update})
	return err
}

func (r *PlanRepository) FindEnabled(ctx context.Context) ([]models.SubscriptionPlan, error) {
	cursor, err := r.col.Find(ctx, bson.M{
		"status":   models.PlanEnabled,
		"archived": false,
	})
	if err != nil {
		return nil, err
	}
	var plans []models.SubscriptionPlan
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *PlanRepository) FindByBuyer(ctx context.Context, buyerID string) ([]models.SubscriptionPlan, error) {
	cursor, err := r.col.Find(ctx, bson.M{"buyer_id": buyerID, "archived": false})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var plans []models.SubscriptionPlan
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}
