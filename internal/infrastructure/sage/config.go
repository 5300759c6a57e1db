package sage

import "errors"

// Config holds connection settings for the eBusiness Web Services endpoint
type Config struct {
	// Endpoint is the WSDL endpoint URL of the web service
	Endpoint string
	// Username and Password form the logon credential sent with every call
	Username string
	Password string
	// CompanyCode identifies the company orders are imported into
	CompanyCode string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// Guard, when set, is invoked before connection setup and the returned
	// function after it. It exists to suspend attached instrumentation
	// (debuggers, profilers) that can turn a recoverable endpoint fault into
	// an unrecoverable process fault during connect.
	Guard func() (resume func())
}

// Errors for Sage configuration
var (
	ErrConfigMissingEndpoint    = errors.New("sage: endpoint is required")
	ErrConfigMissingUsername    = errors.New("sage: username is required")
	ErrConfigMissingPassword    = errors.New("sage: password is required")
	ErrConfigMissingCompanyCode = errors.New("sage: company code is required")
)

// Validate validates the configuration and applies defaults
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return ErrConfigMissingEndpoint
	}
	if c.Username == "" {
		return ErrConfigMissingUsername
	}
	if c.Password == "" {
		return ErrConfigMissingPassword
	}
	if c.CompanyCode == "" {
		return ErrConfigMissingCompanyCode
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}
