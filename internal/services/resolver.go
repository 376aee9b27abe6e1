package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"marketplace-app/subscription-service/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Catalog interface {
	GetShopByID(ctx context.Context, id string) (*utils.Shop, error)
	GetProductByID(ctx context.Context, id string) (*utils.Product, error)
}

var (
	ErrPlanNotFound    = errors.New("subscription plan not found")
	ErrShopNotFound    = errors.New("shop not found")
	ErrProductNotFound = errors.New("product not found")
)

// ConflictResolver сверяет рассчитанные даты плана с календарём доступности
// продукта/магазина и переносит конфликтные даты на ближайшие свободные.
type ConflictResolver struct {
	plans   PlanStore
	catalog Catalog
}

func NewConflictResolver(plans PlanStore, catalog Catalog) *ConflictResolver {
	return &ConflictResolver{plans: plans, catalog: catalog}
}

// Resolve вызывается синхронно действием покупателя; ошибки по самому плану
// всплывают к вызывающему.
func (r *ConflictResolver) Resolve(ctx context.Context, planID primitive.ObjectID) error {
	return r.resolveFrom(ctx, time.Now().UTC(), planID)
}

func (r *ConflictResolver) resolveFrom(ctx context.Context, today time.Time, planID primitive.ObjectID) error {
	plan, err := r.plans.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrPlanNotFound
		}
		return fmt.Errorf("load plan: %w", err)
	}

	product, err := r.catalog.GetProductByID(ctx, plan.ProductID)
	if err != nil {
		return fmt.Errorf("load product: %w", err)
	}
	if product == nil {
		return ErrProductNotFound
	}
	shop, err := r.catalog.GetShopByID(ctx, plan.ShopID)
	if err != nil {
		return fmt.Errorf("load shop: %w", err)
	}
	if shop == nil {
		return ErrShopNotFound
	}

	// Календарь доступности: у продукта приоритет, иначе часы работы магазина.
	availability := product.Availability
	if availability == nil {
		availability = shop.OperatingHours
	}
	if availability == nil {
		log.Printf("[RESOLVER] Plan %s: no availability calendar, nothing to reconcile", planID.Hex())
		return nil
	}

	end := dateOnly(today).AddDate(0, 0, ConflictWindowDays)
	productDates := DatesBetween(*availability, today, end)
	subscriptionDates := DatesBetween(plan.Plan, today, end)

	conflicts := diffDates(subscriptionDates, productDates)
	alternatives := diffDates(productDates, subscriptionDates)

	// Переносим только при строгом запасе свободных дат: каждому конфликту
	// должна достаться своя альтернатива без повторного использования.
	if len(conflicts) == 0 || len(alternatives) <= len(conflicts) {
		return nil
	}

	assigned := assignOverrides(conflicts, alternatives, plan.Plan.OverrideDates)
	if len(assigned) == 0 {
		return nil
	}

	update := bson.M{"auto_reschedule": true}
	for original, target := range assigned {
		update["plan.override_dates."+original] = target
	}
	return r.plans.Update(ctx, plan.ID, update)
}

// diffDates возвращает элементы a, которых нет в b, сохраняя порядок a.
func diffDates(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, d := range b {
		inB[d] = true
	}
	var out []string
	for _, d := range a {
		if !inB[d] {
			out = append(out, d)
		}
	}
	return out
}

// assignOverrides раздаёт конфликтным датам ближайшие свободные альтернативы.
// Однопроходный жадный выбор: ранний конфликт может занять дату, которая
// позднему подошла бы лучше, — глобально оптимальное назначение не ищется.
// Существующие переносы не перезаписываются; их цели считаются занятыми.
// Конфликт без оставшихся альтернатив получает маркер "--".
func assignOverrides(conflicts, alternatives []string, existing map[string]string) map[string]string {
	used := make(map[string]bool)
	for _, target := range existing {
		used[target] = true
	}

	assigned := make(map[string]string)
	for _, conflict := range conflicts {
		if _, ok := existing[conflict]; ok {
			continue
		}
		target := nearestDate(conflict, alternatives, used)
		if target == "" {
			assigned[conflict] = UnresolvedOverride
			continue
		}
		used[target] = true
		assigned[conflict] = target
	}
	return assigned
}

// nearestDate выбирает незанятую альтернативу с минимальным абсолютным
// расстоянием в днях; при равенстве — стабильный порядок сортировки,
// побеждает первая подходящая.
func nearestDate(conflict string, alternatives []string, used map[string]bool) string {
	ref, err := parseDate(conflict)
	if err != nil {
		return ""
	}

	sorted := make([]string, len(alternatives))
	copy(sorted, alternatives)
	sort.SliceStable(sorted, func(i, j int) bool {
		return absDays(ref, sorted[i]) < absDays(ref, sorted[j])
	})

	for _, alt := range sorted {
		if !used[alt] {
			return alt
		}
	}
	return ""
}

func absDays(ref time.Time, date string) int {
	d, err := parseDate(date)
	if err != nil {
		return 1 << 30
	}
	diff := daysBetween(ref, d)
	if diff < 0 {
		return -diff
	}
	return diff
}
