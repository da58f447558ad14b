package config

import "time"

type SecurityConfig interface {
	GetEnableDeprecatedGetLogin() bool
	GetAuthCodeSingleUse() bool
	GetRevokedSweepInterval() time.Duration
}

type Security struct {
	DeprecatedGetLogin   bool          `env:"ENABLE_DEPRECATED_GET_LOGIN" envDefault:"false"`
	AuthCodeSingleUse    bool          `env:"AUTH_CODE_SINGLE_USE" envDefault:"true"`
	RevokedSweepInterval time.Duration `env:"REVOKED_SWEEP_INTERVAL" envDefault:"5m"`
}

var _ SecurityConfig = Security{}

// GetEnableDeprecatedGetLogin gates the GET federated login routes, which take
// the client secret in the query string.
func (s Security) GetEnableDeprecatedGetLogin() bool {
	return s.DeprecatedGetLogin
}

func (s Security) GetAuthCodeSingleUse() bool {
	return s.AuthCodeSingleUse
}

func (s Security) GetRevokedSweepInterval() time.Duration {
	if s.RevokedSweepInterval <= 0 {
		return 5 * time.Minute
	}
	return s.RevokedSweepInterval
}
