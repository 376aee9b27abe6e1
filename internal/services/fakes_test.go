package services

import (
	"context"

	"marketplace-app/subscription-service/internal/models"
	"marketplace-app/subscription-service/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakePlanStore struct {
	plans   map[primitive.ObjectID]*models.SubscriptionPlan
	updates []bson.M
}

func newFakePlanStore(plans ...*models.SubscriptionPlan) *fakePlanStore {
	s := &fakePlanStore{plans: map[primitive.ObjectID]*models.SubscriptionPlan{}}
	for _, p := range plans {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		s.plans[p.ID] = p
	}
	return s
}

func (s *fakePlanStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.SubscriptionPlan, error) {
	p, ok := s.plans[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return p, nil
}

func (s *fakePlanStore) FindEnabled(_ context.Context) ([]models.SubscriptionPlan, error) {
	var out []models.SubscriptionPlan
	for _, p := range s.plans {
		if p.Status == models.PlanEnabled && !p.Archived {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *fakePlanStore) Update(_ context.Context, id primitive.ObjectID, update bson.M) error {
	if _, ok := s.plans[id]; !ok {
		return mongo.ErrNoDocuments
	}
	s.updates = append(s.updates, update)
	return nil
}

type fakeInstanceStore struct {
	instances []models.SubscriptionInstance
	createErr map[primitive.ObjectID]error
}

func (s *fakeInstanceStore) Create(_ context.Context, inst *models.SubscriptionInstance) error {
	if err := s.createErr[inst.PlanID]; err != nil {
		return err
	}
	inst.ID = primitive.NewObjectID()
	s.instances = append(s.instances, *inst)
	return nil
}

func (s *fakeInstanceStore) FindByPlanAndDate(_ context.Context, planID primitive.ObjectID, dateString string) ([]models.SubscriptionInstance, error) {
	var out []models.SubscriptionInstance
	for _, inst := range s.instances {
		if inst.PlanID == planID && inst.DateString == dateString {
			out = append(out, inst)
		}
	}
	return out, nil
}

func (s *fakeInstanceStore) FindByDate(_ context.Context, dateString string) ([]models.SubscriptionInstance, error) {
	var out []models.SubscriptionInstance
	for _, inst := range s.instances {
		if inst.DateString == dateString {
			out = append(out, inst)
		}
	}
	return out, nil
}

type fakeOrderStore struct {
	orders []models.Order
}

func (s *fakeOrderStore) Create(_ context.Context, order *models.Order) error {
	order.ID = primitive.NewObjectID()
	s.orders = append(s.orders, *order)
	return nil
}

func (s *fakeOrderStore) FindBySubscriptionAndDate(_ context.Context, planID primitive.ObjectID, dateString string) ([]models.Order, error) {
	var out []models.Order
	for _, o := range s.orders {
		if o.ProductSubscriptionID == planID && o.ProductSubscriptionDate == dateString {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakeUserDirectory struct {
	users map[string]*utils.User
}

func (d *fakeUserDirectory) GetByID(_ context.Context, id string) (*utils.User, error) {
	return d.users[id], nil
}

type sentMail struct {
	To      string
	Subject string
	HTML    string
}

type fakeMailer struct {
	sent []sentMail
}

func (m *fakeMailer) Send(to, subject, html string) error {
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, HTML: html})
	return nil
}

type fakeCatalog struct {
	shop    *utils.Shop
	product *utils.Product
}

func (c *fakeCatalog) GetShopByID(_ context.Context, _ string) (*utils.Shop, error) {
	return c.shop, nil
}

func (c *fakeCatalog) GetProductByID(_ context.Context, _ string) (*utils.Product, error) {
	return c.product, nil
}
