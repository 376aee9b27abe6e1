package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderPendingPayment  OrderStatus = "pending_payment"
	OrderPendingShipment OrderStatus = "pending_shipment"
	OrderCancelled       OrderStatus = "cancelled"
)

const DeliveryOptionDelivery = "delivery"

// OrderItem строится из снимка продукта в плане + количества/инструкции инстанса.
type OrderItem struct {
	ProductID   string  `bson:"product_id" json:"product_id"`
	Name        string  `bson:"name" json:"name"`
	Description string  `bson:"description,omitempty" json:"description,omitempty"`
	Price       float64 `bson:"price" json:"price"`
	Image       string  `bson:"image,omitempty" json:"image,omitempty"`
	Quantity    int     `bson:"quantity" json:"quantity"`
	Instruction string  `bson:"instruction,omitempty" json:"instruction,omitempty"`
}

// Order — заказ, созданный генератором из инстанса подписки.
// Пара (product_subscription_id, product_subscription_date) уникальна:
// повторный прогон генератора не должен дублировать заказ.
type Order struct {
	ID                      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BuyerID                 string             `bson:"buyer_id" json:"buyer_id"`
	SellerID                string             `bson:"seller_id" json:"seller_id"`
	ShopID                  string             `bson:"shop_id" json:"shop_id"`
	Products                []OrderItem        `bson:"products" json:"products"`
	Status                  OrderStatus        `bson:"status" json:"status"`
	Paid                    bool               `bson:"paid" json:"paid"`
	PaymentMethod           PaymentMethod      `bson:"payment_method" json:"payment_method"`
	DeliveryOption          string             `bson:"delivery_option" json:"delivery_option"`
	DeliveryDate            time.Time          `bson:"delivery_date" json:"delivery_date"`
	DeliveryAddress         string             `bson:"delivery_address,omitempty" json:"delivery_address,omitempty"`
	Instruction             string             `bson:"instruction,omitempty" json:"instruction,omitempty"`
	ProductSubscriptionID   primitive.ObjectID `bson:"product_subscription_id" json:"product_subscription_id"`
	ProductSubscriptionDate string             `bson:"product_subscription_date" json:"product_subscription_date"`
	CreatedAt               time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt               time.Time          `bson:"updated_at" json:"updated_at"`
}

func (o *Order) Validate() error {
	if o.BuyerID == "" || o.SellerID == "" || len(o.Products) == 0 || o.DeliveryDate.IsZero() {
		return errors.New("missing required order fields")
	}
	return nil
}
