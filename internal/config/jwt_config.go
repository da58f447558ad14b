package config

// JWTConfig holds the global access-token signing settings. Authorization codes
// are signed with each client's own secret and only share the issuer.
type JWTConfig interface {
	GetJWTSecret() string
	GetJWTIssuer() string
}

type JWT struct {
	Secret string `env:"JWT_SECRET"`
	Issuer string `env:"JWT_ISSUER"`
}

var _ JWTConfig = JWT{}

func (j JWT) GetJWTSecret() string {
	return j.Secret
}

func (j JWT) GetJWTIssuer() string {
	return j.Issuer
}
