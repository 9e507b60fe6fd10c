package config

import (
	"errors"
	"strings"

	"github.com/caarlos0/env/v10"
)

// Config is the immutable service configuration, parsed once in main and
// passed explicitly into every component. No ambient lookups anywhere else.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	// SigniFlow service identity
	APIURL   string `env:"SIGNIFLOW_API_URL" envDefault:"https://sign.docs2me.com.au"`
	Username string `env:"SIGNIFLOW_USERNAME"`
	Password string `env:"SIGNIFLOW_PASSWORD"`

	// WorkflowID references a workflow/portfolio stored in SigniFlow
	// (template-reference mode). Kept as a string: a non-numeric value is a
	// validation failure surfaced on the order, not a startup failure.
	WorkflowID string `env:"SIGNIFLOW_WORKFLOW_ID"`

	// PDF template references (direct-upload mode). When PDFTemplate1 is
	// set it takes precedence over WorkflowID. PDFTemplate2, when also set,
	// is merged onto the first.
	PDFTemplate1 string `env:"SIGNIFLOW_PDF_TEMPLATE_1"`
	PDFTemplate2 string `env:"SIGNIFLOW_PDF_TEMPLATE_2"`

	// PlaceholderEmail identifies a stand-in signer baked into the remote
	// workflow template, replaced per submission by the order's contact.
	PlaceholderEmail string `env:"SIGNIFLOW_PLACEHOLDER_EMAIL"`

	// AutoOrderStatus, when set, is applied to the order after a
	// successful submission (e.g. "processing").
	AutoOrderStatus string `env:"AUTO_ORDER_STATUS"`

	// Uploads mapping for document references: URLs under UploadsBaseURL
	// are translated to paths under UploadsBaseDir and read locally.
	UploadsBaseURL string `env:"UPLOADS_BASE_URL"`
	UploadsBaseDir string `env:"UPLOADS_BASE_DIR"`

	// DatabaseURL enables the Postgres order store; empty keeps the
	// in-memory store.
	DatabaseURL string `env:"DATABASE_URL"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("SIGNIFLOW_USERNAME and SIGNIFLOW_PASSWORD are required")
	}
	return cfg, nil
}

// DirectUpload reports whether submissions embed document bytes instead of
// referencing a stored workflow.
func (c *Config) DirectUpload() bool {
	return c.PDFTemplate1 != ""
}

// LoginURL is the SigniFlow login endpoint.
func (c *Config) LoginURL() string {
	return c.APIURL + "/API/SignFlowAPIServiceRest.svc/Login"
}

// FullWorkflowURL is the SigniFlow submission endpoint.
func (c *Config) FullWorkflowURL() string {
	return c.APIURL + "/API/SignFlowAPIServiceRest.svc/FullWorkflow"
}

// CacheKey identifies the service identity a token belongs to; changing the
// endpoint or the user must miss the cache.
func (c *Config) CacheKey() string {
	return c.APIURL + "|" + c.Username
}
