package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"


	"go.mongodb.org/mongo-driver/mongo"
)

type DigestLine struct {
	Quantity    int
	ProductName string
}

type NotifyReport struct {
	// Notified — продавцы, которым ушёл дайджест.
	Notified []string
	Failures []ItemFailure
}

// Notifier раз в сутки шлёт каждому продавцу один дайджест по инстансам,
// выпадающим через leadDays дней. Ничего не пишет в сторы.
type Notifier struct {
	instances InstanceStore
	plans     PlanStore
	users     UserDirectory
	mailer    Mailer
	leadDays  int
}

func NewNotifier(instances InstanceStore, plans PlanStore, users UserDirectory, mailer Mailer, leadDays int) *Notifier {
	return &Notifier{
		instances: instances,
		plans:     plans,
		users:     users,
		mailer:    mailer,
		leadDays:  leadDays,
	}
}

func (n *Notifier) Run(ctx context.Context) NotifyReport {
	target := dateOnly(time.Now().UTC()).AddDate(0, 0, n.leadDays)
	return n.notifyFor(ctx, target)
}

func (n *Notifier) notifyFor(ctx context.Context, target time.Time) NotifyReport {
	var report NotifyReport
	targetStr := target.Format(dateLayout)

	instances, err := n.instances.FindByDate(ctx, targetStr)
	if err != nil {
		log.Printf("[NOTIFIER] Failed to load instances for %s: %v", targetStr, err)
		report.Failures = append(report.Failures, ItemFailure{Err: err})
		return report
	}

	// Группировка по продавцу; порядок продавцов — порядок первого появления.
	lines := map[string][]DigestLine{}
	var sellers []string
	for _, inst := range instances {
		plan, err := n.plans.GetByID(ctx, inst.PlanID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				continue
			}
			report.Failures = append(report.Failures, ItemFailure{ID: inst.ID.Hex(), Err: err})
			continue
		}
		if _, ok := lines[plan.SellerID]; !ok {
			sellers = append(sellers, plan.SellerID)
		}
		lines[plan.SellerID] = append(lines[plan.SellerID], DigestLine{
			Quantity:    inst.Quantity,
			ProductName: plan.Product.Name,
		})
	}

	for _, sellerID := range sellers {
		seller, err := n.users.GetByID(ctx, sellerID)
		if err != nil {
			report.Failures = append(report.Failures, ItemFailure{ID: sellerID, Err: err})
			continue
		}
		if seller == nil {
			log.Printf("[NOTIFIER] Seller %s not found, skipping digest", sellerID)
			continue
		}

		subject := fmt.Sprintf("Subscription orders for %s", targetStr)
		if err := n.mailer.Send(seller.Email, subject, digestHTML(lines[sellerID], targetStr)); err != nil {
			log.Printf("[NOTIFIER] Failed to mail seller %s: %v", sellerID, err)
			report.Failures = append(report.Failures, ItemFailure{ID: sellerID, Err: err})
			continue
		}
		report.Notified = append(report.Notified, sellerID)
	}

	log.Printf("[NOTIFIER] Sent %d digests for %s, %d failures", len(report.Notified), targetStr, len(report.Failures))
	return report
}

func digestHTML(lines []DigestLine, dateString string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>You have subscription orders scheduled for %s:</p><ul>", dateString)
	for _, l := range lines {
		fmt.Fprintf(&b, "<li>%d × %s</li>", l.Quantity, l.ProductName)
	}
	b.WriteString("</ul>")
	return b.String()
}
