package auth

import (
	"fmt"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Authenticator issues and checks TOTP secrets compatible with Google Authenticator.
type Authenticator struct {
	Issuer string
}

func NewAuthenticator(issuer string) *Authenticator {
	return &Authenticator{Issuer: issuer}
}

// GenerateSecret returns the otpauth URI and the raw secret for accountName.
func (a *Authenticator) GenerateSecret(accountName string) (string, string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      a.Issuer,
		AccountName: accountName,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", "", fmt.Errorf("generate totp secret: %w", err)
	}
	return key.URL(), key.Secret(), nil
}

func (a *Authenticator) VerifyCode(secret, code string) bool {
	return totp.Validate(code, secret)
}
