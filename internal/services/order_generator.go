package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"marketplace-app/subscription-service/internal/models"
	"marketplace-app/subscription-service/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	FindBySubscriptionAndDate(ctx context.Context, planID primitive.ObjectID, dateString string) ([]models.Order, error)
}

type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*utils.User, error)
}

type OrderSummary struct {
	OrderID    primitive.ObjectID
	PlanID     primitive.ObjectID
	DateString string
}

type OrderReport struct {
	Created  []OrderSummary
	Failures []ItemFailure
}

// OrderGenerator превращает инстансы, выпадающие ровно через leadDays дней,
// в конкретные заказы.
type OrderGenerator struct {
	instances InstanceStore
	plans     PlanStore
	orders    OrderStore
	users     UserDirectory
	leadDays  int
}

func NewOrderGenerator(instances InstanceStore, plans PlanStore, orders OrderStore, users UserDirectory, leadDays int) *OrderGenerator {
	return &OrderGenerator{
		instances: instances,
		plans:     plans,
		orders:    orders,
		users:     users,
		leadDays:  leadDays,
	}
}

// Run вызывается кроном раз в сутки.
func (g *OrderGenerator) Run(ctx context.Context) OrderReport {
	target := dateOnly(time.Now().UTC()).AddDate(0, 0, g.leadDays)
	return g.generateFor(ctx, target)
}

func (g *OrderGenerator) generateFor(ctx context.Context, target time.Time) OrderReport {
	var report OrderReport
	targetStr := target.Format(dateLayout)

	instances, err := g.instances.FindByDate(ctx, targetStr)
	if err != nil {
		log.Printf("[ORDERGEN] Failed to load instances for %s: %v", targetStr, err)
		report.Failures = append(report.Failures, ItemFailure{Err: err})
		return report
	}

	for _, inst := range instances {
		summary, err := g.generateOne(ctx, inst, target, targetStr)
		if err != nil {
			log.Printf("[ORDERGEN] Instance %s: %v", inst.ID.Hex(), err)
			report.Failures = append(report.Failures, ItemFailure{ID: inst.ID.Hex(), Err: err})
			continue
		}
		if summary != nil {
			report.Created = append(report.Created, *summary)
		}
	}

	log.Printf("[ORDERGEN] Created %d orders for %s, %d failures", len(report.Created), targetStr, len(report.Failures))
	for _, s := range report.Created {
		log.Printf("[ORDERGEN] Order %s (plan %s, %s)", s.OrderID.Hex(), s.PlanID.Hex(), s.DateString)
	}
	return report
}

// generateOne возвращает (nil, nil), если заказ не нужен: план удалён
// или заказ на эту пару (план, дата) уже существует.
func (g *OrderGenerator) generateOne(ctx context.Context, inst models.SubscriptionInstance, target time.Time, targetStr string) (*OrderSummary, error) {
	plan, err := g.plans.GetByID(ctx, inst.PlanID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("load plan: %w", err)
	}

	existing, err := g.orders.FindBySubscriptionAndDate(ctx, plan.ID, targetStr)
	if err != nil {
		return nil, fmt.Errorf("check existing order: %w", err)
	}
	if len(existing) > 0 {
		return nil, nil
	}

	buyer, err := g.users.GetByID(ctx, plan.BuyerID)
	if err != nil {
		return nil, fmt.Errorf("load buyer: %w", err)
	}
	if buyer == nil {
		return nil, fmt.Errorf("buyer %s not found", plan.BuyerID)
	}

	order := buildOrder(plan, inst, buyer, target, targetStr)
	if err := g.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	return &OrderSummary{OrderID: order.ID, PlanID: plan.ID, DateString: targetStr}, nil
}

func buildOrder(plan *models.SubscriptionPlan, inst models.SubscriptionInstance, buyer *utils.User, target time.Time, targetStr string) *models.Order {
	// Наложенный платёж сразу идёт в отгрузку и считается оплаченным,
	// остальные способы ждут оплаты.
	status := models.OrderPendingPayment
	paid := false
	if plan.PaymentMethod == models.PaymentCOD {
		status = models.OrderPendingShipment
		paid = true
	}

	return &models.Order{
		BuyerID:  plan.BuyerID,
		SellerID: plan.SellerID,
		ShopID:   plan.ShopID,
		Products: []models.OrderItem{{
			ProductID:   plan.ProductID,
			Name:        plan.Product.Name,
			Description: plan.Product.Description,
			Price:       plan.Product.Price,
			Image:       plan.Product.Image,
			Quantity:    inst.Quantity,
			Instruction: inst.Instruction,
		}},
		Status:                  status,
		Paid:                    paid,
		PaymentMethod:           plan.PaymentMethod,
		DeliveryOption:          models.DeliveryOptionDelivery,
		DeliveryDate:            target,
		DeliveryAddress:         buyer.Address,
		Instruction:             inst.Instruction,
		ProductSubscriptionID:   plan.ID,
		ProductSubscriptionDate: targetStr,
	}
}
