// Package secrets retrieves shared credentials from an external secret
// store. The transport layer treats the store as opaque: it asks for one
// named secret and caches the value for the process lifetime.
package secrets

import (
	"context"

	"github.com/opsdesk/sdrctl/pkg/models"
)

// DefaultSecretName is the Key Vault secret holding the tracker PAT.
const DefaultSecretName = "devops-pat-token"

// Provider fetches named secrets. Implementations must be safe for
// concurrent use.
type Provider interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// Static is a Provider backed by a fixed value, used when the PAT is
// supplied directly through the environment and for tests.
type Static struct {
	Value string
}

// GetSecret returns the fixed value regardless of name. An empty value is a
// credential failure, not an empty credential.
func (s Static) GetSecret(_ context.Context, name string) (string, error) {
	if s.Value == "" {
		return "", &models.CredentialError{Name: name, Err: errEmptySecret}
	}
	return s.Value, nil
}
