package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"marketplace-app/subscription-service/internal/models"
	"marketplace-app/subscription-service/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanService — CRUD-обвязка жизненного цикла плана. Вся интересная логика
// живёт в материализаторе и резолвере, сюда она только делегируется.
type PlanService struct {
	repo         *repository.PlanRepository
	redis        *redis.Client
	materializer *Materializer
	resolver     *ConflictResolver
}

func NewPlanService(repo *repository.PlanRepository, rdb *redis.Client, materializer *Materializer, resolver *ConflictResolver) *PlanService {
	return &PlanService{
		repo:         repo,
		redis:        rdb,
		materializer: materializer,
		resolver:     resolver,
	}
}

// Create сохраняет план в статусе disabled. Недельное расписание выводится из
// стартовых дат один раз здесь и дальше не пересчитывается.
func (s *PlanService) Create(ctx context.Context, plan *models.SubscriptionPlan) error {
	plan.Status = models.PlanDisabled
	plan.Archived = false
	plan.Plan.Schedule = BuildWeekdaySchedule(plan.Plan.StartDates)

	if err := s.repo.Create(ctx, plan); err != nil {
		return err
	}
	s.invalidateBuyerCache(ctx, plan.BuyerID)
	return nil
}

// Confirm включает план (подтверждение продавца) и сразу же материализует его.
func (s *PlanService) Confirm(ctx context.Context, id primitive.ObjectID) (MaterializeReport, error) {
	plan, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return MaterializeReport{}, err
	}
	if plan.Status != models.PlanDisabled {
		return MaterializeReport{}, fmt.Errorf("plan is %s and cannot be confirmed", plan.Status)
	}

	if err := s.repo.Update(ctx, id, bson.M{"status": models.PlanEnabled}); err != nil {
		return MaterializeReport{}, err
	}
	s.invalidateBuyerCache(ctx, plan.BuyerID)

	return s.materializer.RunForPlan(ctx, id), nil
}

// Cancel — терминальный статус со стороны продавца.
func (s *PlanService) Cancel(ctx context.Context, id primitive.ObjectID) error {
	return s.finish(ctx, id, models.PlanCancelled)
}

// Unsubscribe — терминальный статус со стороны покупателя.
func (s *PlanService) Unsubscribe(ctx context.Context, id primitive.ObjectID) error {
	return s.finish(ctx, id, models.PlanUnsubscribed)
}

func (s *PlanService) finish(ctx context.Context, id primitive.ObjectID, status models.PlanStatus) error {
	plan, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if plan.Status.IsTerminal() {
		return fmt.Errorf("plan is already %s", plan.Status)
	}
	if err := s.repo.Update(ctx, id, bson.M{"status": status}); err != nil {
		return err
	}
	s.invalidateBuyerCache(ctx, plan.BuyerID)
	return nil
}

// OverrideDate — явный перенос одной рассчитанной даты покупателем.
// В отличие от авто-переноса, здесь перезапись существующего переноса
// разрешена, но исходная дата обязана быть активной под правилом.
func (s *PlanService) OverrideDate(ctx context.Context, id primitive.ObjectID, original, replacement string) error {
	plan, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	origDay, err := parseDate(original)
	if err != nil {
		return fmt.Errorf("invalid date %q", original)
	}
	if _, err := parseDate(replacement); err != nil && replacement != UnresolvedOverride {
		return fmt.Errorf("invalid date %q", replacement)
	}
	if !IsDateActive(plan.Plan, origDay) {
		return fmt.Errorf("date %s is not active under the plan schedule", original)
	}

	if err := s.repo.Update(ctx, id, bson.M{"plan.override_dates." + original: replacement}); err != nil {
		return err
	}
	s.invalidateBuyerCache(ctx, plan.BuyerID)
	return nil
}

// AutoReschedule запускает резолвер конфликтов для плана.
func (s *PlanService) AutoReschedule(ctx context.Context, id primitive.ObjectID) error {
	plan, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.resolver.Resolve(ctx, id); err != nil {
		return err
	}
	s.invalidateBuyerCache(ctx, plan.BuyerID)
	return nil
}

func (s *PlanService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.SubscriptionPlan, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PlanService) GetByBuyer(ctx context.Context, buyerID string) ([]models.SubscriptionPlan, error) {
	cacheKey := "plans_by_buyer:" + buyerID

	if data, err := s.redis.Get(ctx, cacheKey).Bytes(); err == nil {
		var plans []models.SubscriptionPlan
		if err := json.Unmarshal(data, &plans); err == nil {
			return plans, nil
		}
	}

	plans, err := s.repo.FindByBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(plans); err == nil {
		if err := s.redis.Set(ctx, cacheKey, data, 10*time.Minute).Err(); err != nil {
			log.Printf("Failed to cache plans for buyer %s: %v", buyerID, err)
		}
	}
	return plans, nil
}

func (s *PlanService) invalidateBuyerCache(ctx context.Context, buyerID string) {
	if err := s.redis.Del(ctx, "plans_by_buyer:"+buyerID).Err(); err != nil {
		log.Printf("Failed to invalidate cache: %v", err)
	}
}
