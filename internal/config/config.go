package config

import (
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/andina-core/sqs-event-router/internal/routing"
)

// Config is read once at cold start and never modified afterwards.
type Config struct {
	Environment string `long:"environment" env:"ENVIRONMENT" default:"unknown" description:"Deployment environment, used for logging only"`
	LogLevel    string `long:"log-level" env:"LOG_LEVEL" default:"info" description:"Log level"`

	BaseURLEmision     string `long:"base-url-emision" env:"BASE_URL_EMISION" default:"http://host.docker.internal:8091" description:"Base URL of the emision service"`
	BaseURLSuscripcion string `long:"base-url-suscripcion" env:"BASE_URL_SUSCRIPCION" default:"http://host.docker.internal:8092" description:"Base URL of the suscripcion service"`

	EndpointPolizas               string `long:"endpoint-polizas" env:"ENDPOINT_POLIZAS" default:"/emision/api/v1/lambda/process-sqs-event" description:"Path for masivo-polizas"`
	EndpointKit                   string `long:"endpoint-kit" env:"ENDPOINT_KIT" default:"/kit/api/v1/lambda/process-sqs-event" description:"Path for masivo-kit"`
	EndpointSuscripcionCotizacion string `long:"endpoint-suscripcion-cotizacion" env:"ENDPOINT_SUSCRIPCION_COTIZACION" default:"/cotizacion/api/v1/lambda/process-sqs-event" description:"Path for masivo-suscripcion-cotizacion"`

	HTTPTimeout time.Duration `long:"http-timeout" env:"HTTP_TIMEOUT" default:"30s" description:"Timeout of the outbound call"`
	// Certificate validation is off unless TLS_VERIFY is set.
	TLSVerify bool `long:"tls-verify" env:"TLS_VERIFY" description:"Validate downstream TLS certificates"`

	ReportBatchFailures bool `long:"report-batch-failures" env:"REPORT_BATCH_FAILURES" description:"Return transient failures as batchItemFailures"`
}

// Load parses args on top of environment variables and defaults.
func Load(args []string) (Config, error) {
	var c Config
	parser := flags.NewParser(&c, flags.IgnoreUnknown)
	if _, err := parser.ParseArgs(args); err != nil {
		return Config{}, errors.Wrap(err, "parse configuration")
	}
	if c.HTTPTimeout <= 0 {
		return Config{}, errors.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	return c, nil
}

// Routes builds the per-type route table. The table is shared by every
// environment.
func (c Config) Routes() routing.Table {
	return routing.NewTable(map[routing.MessageType]routing.Target{
		routing.TypePolizas:               {BaseURL: c.BaseURLEmision, Path: c.EndpointPolizas},
		routing.TypeKit:                   {BaseURL: c.BaseURLEmision, Path: c.EndpointKit},
		routing.TypeSuscripcionCotizacion: {BaseURL: c.BaseURLSuscripcion, Path: c.EndpointSuscripcionCotizacion},
	})
}
