package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-timetable-api/pkg/config"
)

func TestDSNEscapesCredentials(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "edt",
		Password: "p@ss/word",
		Name:     "emploi_du_temps",
		SSLMode:  "disable",
	})

	assert.Equal(t, "postgres://edt:p%40ss%2Fword@db:5432/emploi_du_temps?sslmode=disable", dsn)
}
