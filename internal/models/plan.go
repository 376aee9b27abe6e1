package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PlanStatus string

const (
	PlanDisabled     PlanStatus = "disabled"
	PlanEnabled      PlanStatus = "enabled"
	PlanCancelled    PlanStatus = "cancelled"
	PlanUnsubscribed PlanStatus = "unsubscribed"
)

// IsTerminal — после cancelled/unsubscribed план больше не материализуется.
func (s PlanStatus) IsTerminal() bool {
	return s == PlanCancelled || s == PlanUnsubscribed
}

type PaymentMethod string

const (
	PaymentCOD  PaymentMethod = "cod"
	PaymentBank PaymentMethod = "bank"
)

// ScheduleDay хранит стартовую дату для конкретного дня недели.
// Заполняется один раз при создании плана, не пересчитывается при каждой проверке.
type ScheduleDay struct {
	StartDate string `bson:"start_date" json:"start_date"`
}

type WeekdaySchedule struct {
	Mon *ScheduleDay `bson:"mon,omitempty" json:"mon,omitempty"`
	Tue *ScheduleDay `bson:"tue,omitempty" json:"tue,omitempty"`
	Wed *ScheduleDay `bson:"wed,omitempty" json:"wed,omitempty"`
	Thu *ScheduleDay `bson:"thu,omitempty" json:"thu,omitempty"`
	Fri *ScheduleDay `bson:"fri,omitempty" json:"fri,omitempty"`
	Sat *ScheduleDay `bson:"sat,omitempty" json:"sat,omitempty"`
	Sun *ScheduleDay `bson:"sun,omitempty" json:"sun,omitempty"`
}

func (w WeekdaySchedule) Day(wd time.Weekday) *ScheduleDay {
	switch wd {
	case time.Monday:
		return w.Mon
	case time.Tuesday:
		return w.Tue
	case time.Wednesday:
		return w.Wed
	case time.Thursday:
		return w.Thu
	case time.Friday:
		return w.Fri
	case time.Saturday:
		return w.Sat
	case time.Sunday:
		return w.Sun
	}
	return nil
}

func (w *WeekdaySchedule) SetDay(wd time.Weekday, d *ScheduleDay) {
	switch wd {
	case time.Monday:
		w.Mon = d
	case time.Tuesday:
		w.Tue = d
	case time.Wednesday:
		w.Wed = d
	case time.Thursday:
		w.Thu = d
	case time.Friday:
		w.Fri = d
	case time.Saturday:
		w.Sat = d
	case time.Sunday:
		w.Sun = d
	}
}

// RecurrenceRule описывает, как повторяется расписание подписки.
//
// RepeatType: "day" | "week" | "month" либо составной токен "<n>-<wk>"
// (например "2-wed" — вторая среда месяца).
// RepeatUnit: множитель (каждые 2 недели и т.п.); 0 — разовое расписание.
// OverrideDates: перенос конкретной рассчитанной даты на другую.
type RecurrenceRule struct {
	RepeatType    string            `bson:"repeat_type" json:"repeat_type"`
	RepeatUnit    int               `bson:"repeat_unit" json:"repeat_unit"`
	StartDates    []string          `bson:"start_dates" json:"start_dates"`
	Schedule      WeekdaySchedule   `bson:"schedule" json:"schedule"`
	OverrideDates map[string]string `bson:"override_dates,omitempty" json:"override_dates,omitempty"`
}

// Снимки продукта и магазина на момент создания плана.
type ProductSnapshot struct {
	Name        string  `bson:"name" json:"name"`
	Description string  `bson:"description,omitempty" json:"description,omitempty"`
	Price       float64 `bson:"price" json:"price"`
	Image       string  `bson:"image,omitempty" json:"image,omitempty"`
}

type ShopSnapshot struct {
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Image       string `bson:"image,omitempty" json:"image,omitempty"`
}

type SubscriptionPlan struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BuyerID        string             `bson:"buyer_id" json:"buyer_id"`
	SellerID       string             `bson:"seller_id" json:"seller_id"`
	ShopID         string             `bson:"shop_id" json:"shop_id"`
	ProductID      string             `bson:"product_id" json:"product_id"`
	Quantity       int                `bson:"quantity" json:"quantity"`
	Instruction    string             `bson:"instruction,omitempty" json:"instruction,omitempty"`
	PaymentMethod  PaymentMethod      `bson:"payment_method" json:"payment_method"`
	Status         PlanStatus         `bson:"status" json:"status"`
	Archived       bool               `bson:"archived" json:"archived"`
	AutoReschedule bool               `bson:"auto_reschedule" json:"auto_reschedule"`
	Product        ProductSnapshot    `bson:"product" json:"product"`
	Shop           ShopSnapshot       `bson:"shop" json:"shop"`
	Plan           RecurrenceRule     `bson:"plan" json:"plan"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}
