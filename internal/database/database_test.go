package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appconfig "github.com/GTDGit/gtd_revenue/internal/config"
)

func TestDSNEscapesCredentials(t *testing.T) {
	dsn := DSN(&appconfig.DatabaseConfig{
		Host:     "db",
		Port:     "5432",
		User:     "rev user",
		Password: "p@ss/word",
		Name:     "revenue",
		SSLMode:  "disable",
	})
	assert.Equal(t, "postgres://rev+user:p%40ss%2Fword@db:5432/revenue?sslmode=disable", dsn)
}

func TestBackoffIsCapped(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, backoff(1))
	assert.Equal(t, time.Second, backoff(2))
	assert.Equal(t, 4*time.Second, backoff(4))
	assert.Equal(t, maxDelay, backoff(5))
	assert.Equal(t, maxDelay, backoff(40))
}
