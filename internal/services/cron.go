package services

import (
	"context"
	"log"
	"time"
)

// CronJobService гоняет фоновые задачи: материализация каждые 12 часов,
// генерация заказов и дайджесты — раз в сутки.
type CronJobService struct {
	materializer *Materializer
	orders       *OrderGenerator
	notifier     *Notifier
}

func NewCronJobService(materializer *Materializer, orders *OrderGenerator, notifier *Notifier) *CronJobService {
	return &CronJobService{
		materializer: materializer,
		orders:       orders,
		notifier:     notifier,
	}
}

func (s *CronJobService) Start(ctx context.Context) {
	go s.startMaterializeJob(ctx)
	go s.startOrderJob(ctx)
	go s.startNotifyJob(ctx)
}

func (s *CronJobService) startMaterializeJob(ctx context.Context) {
	ticker := time.NewTicker(12 * time.Hour)
	// Сразу при старте
	s.materializer.Run(ctx)

	for {
		select {
		case <-ticker.C:
			log.Println("[CRON] Running subscription materialization...")
			s.materializer.Run(ctx)
		case <-ctx.Done():
			log.Println("[CRON] Stopping materialize job")
			ticker.Stop()
			return
		}
	}
}

func (s *CronJobService) startOrderJob(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	s.orders.Run(ctx)

	for {
		select {
		case <-ticker.C:
			log.Println("[CRON] Running subscription order generation...")
			s.orders.Run(ctx)
		case <-ctx.Done():
			log.Println("[CRON] Stopping order job")
			ticker.Stop()
			return
		}
	}
}

func (s *CronJobService) startNotifyJob(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	s.notifier.Run(ctx)

	for {
		select {
		case <-ticker.C:
			log.Println("[CRON] Running seller digests...")
			s.notifier.Run(ctx)
		case <-ctx.Done():
			log.Println("[CRON] Stopping notify job")
			ticker.Stop()
			return
		}
	}
}
