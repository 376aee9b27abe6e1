package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"marketplace-app/subscription-service/internal/models"
)

// Shop и Product приходят из каталога. Availability/OperatingHours имеют ту же
// форму RecurrenceRule, что и расписание плана, — календарь доступности.
type Shop struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	OperatingHours *models.RecurrenceRule `json:"operating_hours,omitempty"`
}

type Product struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Availability *models.RecurrenceRule `json:"availability,omitempty"`
}

type CatalogServiceClient struct {
	URL string
}

func NewCatalogClient(url string) *CatalogServiceClient {
	return &CatalogServiceClient{URL: url}
}

func (c *CatalogServiceClient) GetShopByID(ctx context.Context, id string) (*Shop, error) {
	var shop Shop
	if err := c.getJSON(ctx, "/api/shops/"+id, &shop); err != nil {
		return nil, err
	}
	if shop.ID == "" {
		return nil, nil
	}
	return &shop, nil
}

func (c *CatalogServiceClient) GetProductByID(ctx context.Context, id string) (*Product, error) {
	var product Product
	if err := c.getJSON(ctx, "/api/products/"+id, &product); err != nil {
		return nil, err
	}
	if product.ID == "" {
		return nil, nil
	}
	return &product, nil
}

func (c *CatalogServiceClient) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL+path, nil)
	if err != nil {
		return fmt.Errorf("build catalog request: %w", err)
	}

	client := http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("call catalog service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog service returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
