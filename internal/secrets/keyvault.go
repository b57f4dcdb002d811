package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/opsdesk/sdrctl/internal/config"
	"github.com/opsdesk/sdrctl/pkg/models"
)

var errEmptySecret = errors.New("secret value is empty")

// keyVaultAPIVersion pins the Key Vault REST revision.
const keyVaultAPIVersion = "7.4"

// KeyVault is a Provider backed by the Azure Key Vault REST API. It
// authenticates with an AAD client-credentials token source, which caches
// and refreshes bearer tokens on its own.
type KeyVault struct {
	vaultURL string
	client   *http.Client
}

// NewKeyVault builds a Key Vault provider from AAD client-credential
// configuration.
func NewKeyVault(cfg config.AzureConfig) *KeyVault {
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", cfg.TenantID),
		Scopes:       []string{"https://vault.azure.net/.default"},
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	return &KeyVault{
		vaultURL: strings.TrimRight(cfg.KeyVaultURL, "/"),
		client: &http.Client{
			Transport: &oauth2.Transport{
				Source: cc.TokenSource(context.Background()),
			},
			Timeout: 15 * time.Second,
		},
	}
}

// secretResponse is the Key Vault getSecret payload, reduced to the field
// we use.
type secretResponse struct {
	Value string `json:"value"`
}

// GetSecret fetches the named secret's current version. All failures are
// reported as CredentialError.
func (k *KeyVault) GetSecret(ctx context.Context, name string) (string, error) {
	endpoint := fmt.Sprintf("%s/secrets/%s?api-version=%s",
		k.vaultURL, url.PathEscape(name), keyVaultAPIVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", &models.CredentialError{Name: name, Err: err}
	}

	resp, err := k.client.Do(req)
	if err != nil {
		return "", &models.CredentialError{Name: name, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &models.CredentialError{Name: name, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &models.CredentialError{
			Name: name,
			Err:  fmt.Errorf("key vault returned status %d", resp.StatusCode),
		}
	}

	var secret secretResponse
	if err := json.Unmarshal(body, &secret); err != nil {
		return "", &models.CredentialError{Name: name, Err: err}
	}
	if secret.Value == "" {
		return "", &models.CredentialError{Name: name, Err: errEmptySecret}
	}

	return secret.Value, nil
}
