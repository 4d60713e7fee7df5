package dbconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	c := Config{Host: "db", Port: 5433, User: "draft", Password: "p@ss word", Database: "tierdraft", SSLMode: "disable"}
	assert.Equal(t, "postgres://draft:p%40ss%20word@db:5433/tierdraft?sslmode=disable", c.DSN())

	c.URL = "postgres://other@elsewhere/db"
	assert.Equal(t, "postgres://other@elsewhere/db", c.DSN())
}

func TestPoolConfig(t *testing.T) {
	c := Config{Host: "localhost", Port: 5432, User: "postgres", Password: "postgres", Database: "tierdraft", SSLMode: "disable", MaxConns: 4}
	cfg, err := c.PoolConfig()
	require.NoError(t, err)
	assert.Equal(t, int32(4), cfg.MaxConns)
	assert.Equal(t, "tierdraft", cfg.ConnConfig.Database)
	assert.Equal(t, uint16(5432), cfg.ConnConfig.Port)
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_PORT", "not-a-port")
	t.Setenv("DB_MAX_CONNS", "3")
	c := NewConfigFromEnv()
	assert.Equal(t, 5432, c.Port)
	assert.Equal(t, int32(3), c.MaxConns)
}
