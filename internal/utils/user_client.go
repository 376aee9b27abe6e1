package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type User struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// UserServiceClient умеет делать запросы к User Service.
type UserServiceClient struct {
	URL string
}

func NewUserClient(url string) *UserServiceClient {
	return &UserServiceClient{URL: url}
}

// GetByID возвращает (nil, nil), если пользователь не найден:
// для пакетных джобов это штатный пропуск, а не ошибка.
func (c *UserServiceClient) GetByID(ctx context.Context, id string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL+"/api/users/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("build get-user request: %w", err)
	}

	client := http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call user service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user service returned status %d", resp.StatusCode)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode user response: %w", err)
	}
	return &user, nil
}
