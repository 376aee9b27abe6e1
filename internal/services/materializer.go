package services

import (
	"context"
	"errors"
	"log"
	"time"

	"marketplace-app/subscription-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type PlanStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.SubscriptionPlan, error)
	FindEnabled(ctx context.Context) ([]models.SubscriptionPlan, error)
	Update(ctx context.Context, id primitive.ObjectID, update bson.M) error
}

type InstanceStore interface {
	Create(ctx context.Context, inst *models.SubscriptionInstance) error
	FindByPlanAndDate(ctx context.Context, planID primitive.ObjectID, dateString string) ([]models.SubscriptionInstance, error)
	FindByDate(ctx context.Context, dateString string) ([]models.SubscriptionInstance, error)
}

// ItemFailure — ошибка по одному элементу пакета; остальные элементы
// обрабатываются дальше.
type ItemFailure struct {
	ID  string
	Err error
}

type MaterializeReport struct {
	CreatedIDs []primitive.ObjectID
	Failures   []ItemFailure
}

// Materializer создаёт инстансы подписок на 14 дней вперёд по включённым планам.
type Materializer struct {
	plans     PlanStore
	instances InstanceStore
}

func NewMaterializer(plans PlanStore, instances InstanceStore) *Materializer {
	return &Materializer{plans: plans, instances: instances}
}

// Run обходит все включённые планы. Вызывается кроном раз в 12 часов.
func (m *Materializer) Run(ctx context.Context) MaterializeReport {
	return m.materializeFrom(ctx, time.Now().UTC(), nil)
}

// RunForPlan материализует один план сразу после его подтверждения продавцом.
func (m *Materializer) RunForPlan(ctx context.Context, planID primitive.ObjectID) MaterializeReport {
	return m.materializeFrom(ctx, time.Now().UTC(), &planID)
}

func (m *Materializer) materializeFrom(ctx context.Context, today time.Time, planID *primitive.ObjectID) MaterializeReport {
	var report MaterializeReport

	var plans []models.SubscriptionPlan
	if planID != nil {
		plan, err := m.plans.GetByID(ctx, *planID)
		if err != nil {
			if !errors.Is(err, mongo.ErrNoDocuments) {
				report.Failures = append(report.Failures, ItemFailure{ID: planID.Hex(), Err: err})
			}
			return report
		}
		if plan.Archived || plan.Status != models.PlanEnabled {
			return report
		}
		plans = []models.SubscriptionPlan{*plan}
	} else {
		var err error
		plans, err = m.plans.FindEnabled(ctx)
		if err != nil {
			log.Printf("[MATERIALIZER] Failed to load enabled plans: %v", err)
			report.Failures = append(report.Failures, ItemFailure{Err: err})
			return report
		}
	}

	for _, plan := range plans {
		created, err := m.materializePlan(ctx, today, plan)
		report.CreatedIDs = append(report.CreatedIDs, created...)
		if err != nil {
			// Ошибка одного плана не прерывает остальные.
			log.Printf("[MATERIALIZER] Plan %s: %v", plan.ID.Hex(), err)
			report.Failures = append(report.Failures, ItemFailure{ID: plan.ID.Hex(), Err: err})
		}
	}

	log.Printf("[MATERIALIZER] Created %d instances, %d failures", len(report.CreatedIDs), len(report.Failures))
	return report
}

func (m *Materializer) materializePlan(ctx context.Context, today time.Time, plan models.SubscriptionPlan) ([]primitive.ObjectID, error) {
	var created []primitive.ObjectID

	for _, d := range UpcomingDates(plan.Plan, today, MaterializeWindowDays) {
		// Проверка существования до вставки: повторный прогон не дублирует инстансы.
		existing, err := m.instances.FindByPlanAndDate(ctx, plan.ID, d.DateString)
		if err != nil {
			return created, err
		}
		if len(existing) > 0 {
			continue
		}

		original, err := parseDate(d.Original)
		if err != nil {
			return created, err
		}

		inst := &models.SubscriptionInstance{
			PlanID:            plan.ID,
			BuyerID:           plan.BuyerID,
			SellerID:          plan.SellerID,
			Quantity:          plan.Quantity,
			Instruction:       plan.Instruction,
			Date:              original,
			DateString:        d.DateString,
			OriginalDate:      original,
			ConfirmedByBuyer:  false,
			ConfirmedBySeller: false,
			Skip:              false,
		}
		if err := m.instances.Create(ctx, inst); err != nil {
			return created, err
		}
		created = append(created, inst.ID)
	}

	return created, nil
}
