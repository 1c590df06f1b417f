// Package gateway provides the EntityGateway implementations the seeder can
// create catalog entities through.
package gateway

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/survey-seeder/internal/config"
	"github.com/stemsi/survey-seeder/internal/service"
)

// New builds the gateway selected by cfg.GatewayMode, wrapped with metrics.
// catalog is only required in postgres mode.
func New(cfg *config.Config, catalog Catalog, log zerolog.Logger) (service.EntityGateway, error) {
	switch cfg.GatewayMode {
	case config.GatewayModeHTTP:
		if cfg.GatewayBaseURL == "" {
			return nil, fmt.Errorf("GATEWAY_BASE_URL is required in %s mode", cfg.GatewayMode)
		}
		return Instrument(NewHTTPGateway(HTTPConfig{
			BaseURL:     cfg.GatewayBaseURL,
			Token:       cfg.GatewayToken,
			Timeout:     cfg.GatewayTimeout,
			MaxRetries:  cfg.GatewayMaxRetries,
			RPS:         cfg.GatewayRPS,
			Burst:       cfg.GatewayBurst,
			BackoffBase: time.Second,
		}, log)), nil
	case config.GatewayModePostgres:
		if catalog == nil {
			return nil, fmt.Errorf("%s mode needs a catalog store", cfg.GatewayMode)
		}
		return Instrument(NewStoreGateway(catalog, log)), nil
	default:
		return nil, fmt.Errorf("unknown gateway mode %q", cfg.GatewayMode)
	}
}
