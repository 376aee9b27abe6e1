package services

import (
	"context"
	"errors"
	"testing"

	"marketplace-app/subscription-service/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func weeklyPlan(startDate string) *models.SubscriptionPlan {
	return &models.SubscriptionPlan{
		BuyerID:       "buyer-1",
		SellerID:      "seller-1",
		ShopID:        "shop-1",
		ProductID:     "product-1",
		Quantity:      2,
		Instruction:   "leave at the door",
		PaymentMethod: models.PaymentCOD,
		Status:        models.PlanEnabled,
		Product:       models.ProductSnapshot{Name: "Banana bread", Price: 6.5},
		Plan: models.RecurrenceRule{
			RepeatType: RepeatWeek,
			RepeatUnit: 1,
			StartDates: []string{startDate},
			Schedule:   BuildWeekdaySchedule([]string{startDate}),
		},
	}
}

func TestMaterializer_CreatesInstancesIdempotently(t *testing.T) {
	ctx := context.Background()
	plan := weeklyPlan("2021-09-22") // среда
	plans := newFakePlanStore(plan)
	instances := &fakeInstanceStore{}
	m := NewMaterializer(plans, instances)

	today := day(2021, 9, 22)
	report := m.materializeFrom(ctx, today, nil)
	if len(report.Failures) != 0 {
		t.Fatalf("unexpected failures: %v", report.Failures)
	}
	// Среды в 14-дневном окне: 22.09, 29.09, 06.10.
	if len(report.CreatedIDs) != 3 {
		t.Fatalf("created %d instances, want 3", len(report.CreatedIDs))
	}

	// Повторный прогон с тем же "сегодня" не создаёт дубликатов.
	report = m.materializeFrom(ctx, today, nil)
	if len(report.CreatedIDs) != 0 {
		t.Errorf("second run created %d instances, want 0", len(report.CreatedIDs))
	}
	if len(instances.instances) != 3 {
		t.Errorf("store holds %d instances, want 3", len(instances.instances))
	}

	inst := instances.instances[0]
	if inst.DateString != "2021-09-22" || !inst.Date.Equal(day(2021, 9, 22)) || !inst.OriginalDate.Equal(day(2021, 9, 22)) {
		t.Errorf("unexpected first instance dates: %+v", inst)
	}
	if inst.ConfirmedByBuyer || inst.ConfirmedBySeller || inst.Skip {
		t.Errorf("new instance must start unconfirmed and unskipped: %+v", inst)
	}
	if inst.Quantity != 2 || inst.Instruction != "leave at the door" {
		t.Errorf("instance must copy quantity/instruction from plan: %+v", inst)
	}
}

func TestMaterializer_AppliesOverrideDates(t *testing.T) {
	ctx := context.Background()
	plan := weeklyPlan("2021-09-22")
	plan.Plan.OverrideDates = map[string]string{"2021-09-22": "2021-09-23"}
	plans := newFakePlanStore(plan)
	instances := &fakeInstanceStore{}
	m := NewMaterializer(plans, instances)

	m.materializeFrom(ctx, day(2021, 9, 22), nil)

	inst := instances.instances[0]
	if inst.DateString != "2021-09-23" {
		t.Errorf("date_string = %s, want override target 2021-09-23", inst.DateString)
	}
	if !inst.OriginalDate.Equal(day(2021, 9, 22)) || !inst.Date.Equal(day(2021, 9, 22)) {
		t.Errorf("original date must stay 2021-09-22: %+v", inst)
	}
}

func TestMaterializer_SinglePlanMustBeEnabled(t *testing.T) {
	ctx := context.Background()

	for _, status := range []models.PlanStatus{models.PlanDisabled, models.PlanCancelled, models.PlanUnsubscribed} {
		plan := weeklyPlan("2021-09-22")
		plan.Status = status
		plans := newFakePlanStore(plan)
		instances := &fakeInstanceStore{}
		m := NewMaterializer(plans, instances)

		report := m.materializeFrom(ctx, day(2021, 9, 22), &plan.ID)
		if len(report.CreatedIDs) != 0 || len(instances.instances) != 0 {
			t.Errorf("status %s: expected no instances, got %d", status, len(instances.instances))
		}
	}

	// Архивный план тоже не материализуется.
	plan := weeklyPlan("2021-09-22")
	plan.Archived = true
	plans := newFakePlanStore(plan)
	instances := &fakeInstanceStore{}
	m := NewMaterializer(plans, instances)
	if report := m.materializeFrom(ctx, day(2021, 9, 22), &plan.ID); len(report.CreatedIDs) != 0 {
		t.Errorf("archived plan materialized %d instances", len(report.CreatedIDs))
	}
}

func TestMaterializer_ContinuesPastBrokenPlan(t *testing.T) {
	ctx := context.Background()
	broken := weeklyPlan("2021-09-22")
	healthy := weeklyPlan("2021-09-23") // четверг

	plans := newFakePlanStore(broken, healthy)
	instances := &fakeInstanceStore{
		createErr: map[primitive.ObjectID]error{broken.ID: errors.New("write failed")},
	}
	m := NewMaterializer(plans, instances)

	report := m.materializeFrom(ctx, day(2021, 9, 22), nil)
	if len(report.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(report.Failures))
	}
	if report.Failures[0].ID != broken.ID.Hex() {
		t.Errorf("failure reported for %s, want %s", report.Failures[0].ID, broken.ID.Hex())
	}

	var healthyCount int
	for _, inst := range instances.instances {
		if inst.PlanID == healthy.ID {
			healthyCount++
		}
	}
	if healthyCount != 3 {
		t.Errorf("healthy plan produced %d instances, want 3", healthyCount)
	}
}
