package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// CHAT_ADDR is the base URL of a running chat room, e.g. http://localhost:5000
	ChatAddr string `envconfig:"CHAT_ADDR"`
	// CHAT_GRPC_ADDR is its gRPC health endpoint, e.g. localhost:5001
	GrpcAddr string `envconfig:"CHAT_GRPC_ADDR"`
	// E2E_DEBUG_JSON dumps request and response bodies
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
