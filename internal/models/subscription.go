package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubscriptionInstance — одно конкретное вхождение плана на одну дату.
// Не больше одной записи на пару (план, date_string); проверка существования
// делается перед вставкой в материализаторе.
type SubscriptionInstance struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID            primitive.ObjectID `bson:"product_subscription_plan_id" json:"product_subscription_plan_id"`
	BuyerID           string             `bson:"buyer_id" json:"buyer_id"`
	SellerID          string             `bson:"seller_id" json:"seller_id"`
	Quantity          int                `bson:"quantity" json:"quantity"`
	Instruction       string             `bson:"instruction,omitempty" json:"instruction,omitempty"`
	Date              time.Time          `bson:"date" json:"date"`
	DateString        string             `bson:"date_string" json:"date_string"`
	OriginalDate      time.Time          `bson:"original_date" json:"original_date"`
	ConfirmedByBuyer  bool               `bson:"confirmed_by_buyer" json:"confirmed_by_buyer"`
	ConfirmedBySeller bool               `bson:"confirmed_by_seller" json:"confirmed_by_seller"`
	Skip              bool               `bson:"skip" json:"skip"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
}
