package internal

import (
	"os"
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	req := require.New(t)
	for _, key := range []string{"HOST", "PORT", "STORE_DRIVER", "SWEEP_INTERVAL", "INACTIVITY_THRESHOLD", "ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
		req.NoError(os.Unsetenv(key))
	}

	var config Config
	_, err := env.UnmarshalFromEnviron(&config)

	req.NoError(err)
	req.Equal("0.0.0.0", config.Host)
	req.Equal(5000, config.Port)
	req.Equal(string(StoreBadger), config.StoreDriver)
	req.Equal(15500*time.Millisecond, config.SweepInterval)
	req.Equal(10500*time.Millisecond, config.InactivityThreshold)
	req.Equal([]string{"*"}, config.Origins())
	req.NoError(config.Validate())
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{StoreDriver: "memory", SweepInterval: time.Second, InactivityThreshold: time.Second}

	tests := []struct {
		description string
		modify      func(c *Config)
		wantErr     bool
	}{
		{"Should accept the memory store", func(c *Config) {}, false},
		{"Should reject an unknown store", func(c *Config) { c.StoreDriver = "postgres" }, true},
		{"Should require a mongo uri", func(c *Config) { c.StoreDriver = "mongo" }, true},
		{"Should accept mongo with a uri", func(c *Config) { c.StoreDriver = "mongo"; c.MongoURI = "mongodb://localhost:27017" }, false},
		{"Should require a redis url", func(c *Config) { c.StoreDriver = "redis" }, true},
		{"Should reject a zero sweep interval", func(c *Config) { c.SweepInterval = 0 }, true},
		{"Should reject a negative threshold", func(c *Config) { c.InactivityThreshold = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			config := valid
			tt.modify(&config)
			err := config.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfig_Origins(t *testing.T) {
	config := Config{AllowedOrigins: "http://localhost:3000, https://chat.example.com,"}

	require.Equal(t, []string{"http://localhost:3000", "https://chat.example.com"}, config.Origins())
}
