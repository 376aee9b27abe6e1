package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI          string
	ServerPort        string
	RedisAddr         string
	AuthServiceURL    string
	UserServiceURL    string
	CatalogServiceURL string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	// Сроки упреждения у генератора заказов и у рассылки независимые,
	// хотя по умолчанию совпадают.
	OrderLeadDays  int
	NotifyLeadDays int
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		return nil, err
	}

	return &Config{
		MongoURI:          os.Getenv("MONGO_URI"),
		ServerPort:        os.Getenv("SERVER_PORT"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		AuthServiceURL:    os.Getenv("AUTH_SERVICE_URL"),
		UserServiceURL:    os.Getenv("USER_SERVICE_URL"),
		CatalogServiceURL: os.Getenv("CATALOG_SERVICE_URL"),
		SMTPHost:          os.Getenv("SMTP_HOST"),
		SMTPPort:          envInt("SMTP_PORT", 587),
		SMTPUser:          os.Getenv("SMTP_USER"),
		SMTPPass:          os.Getenv("SMTP_PASS"),
		MailFrom:          os.Getenv("MAIL_FROM"),
		OrderLeadDays:     envInt("ORDER_LEAD_DAYS", 3),
		NotifyLeadDays:    envInt("NOTIFY_LEAD_DAYS", 3),
	}, nil
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
