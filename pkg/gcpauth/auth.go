package gcpauth

import (
	"fmt"

	"cloud.google.com/go/auth"
	"cloud.google.com/go/auth/credentials"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// AuthCredentials は JSON 認証情報を Google Cloud SDK 用の *auth.Credentials に変換します。
func (c *Credentials) AuthCredentials() (*auth.Credentials, error) {
	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		Scopes:          []string{cloudPlatformScope},
		CredentialsJSON: c.JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build auth credentials from %s: %w", c.Source, err)
	}
	return creds, nil
}
