// Package config provides centralized configuration management for the application.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration parameters for the application.
type Config struct {
	DevOps DevOpsConfig
	Azure  AzureConfig
	Server ServerConfig
}

// DevOpsConfig holds the external work-item tracker configuration.
type DevOpsConfig struct {
	// Organization is the tracker organization the base URL is scoped to.
	Organization string

	// Project is the project that owns the SDR work-item type.
	Project string

	// BaseURL overrides the default https://dev.azure.com endpoint,
	// mainly for tests and self-hosted installations.
	BaseURL string

	// PAT is a personal access token supplied directly through the
	// environment. When set, the Key Vault provider is bypassed.
	PAT string

	// Timeout bounds every request to the tracker.
	Timeout time.Duration
}

// AzureConfig holds the Key Vault and AAD client-credential settings used
// to fetch the tracker PAT when it is not supplied directly.
type AzureConfig struct {
	KeyVaultURL  string
	TenantID     string
	ClientID     string
	ClientSecret string
}

// ServerConfig holds the HTTP front-door settings.
type ServerConfig struct {
	Addr      string
	JWTSecret string
}

// LoadConfig initializes and loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Map specific environment variables
	v.BindEnv("devops.organization", "DEVOPS_ORGANIZATION")
	v.BindEnv("devops.project", "DEVOPS_PROJECT")
	v.BindEnv("devops.base_url", "DEVOPS_BASE_URL")
	v.BindEnv("devops.pat", "DEVOPS_PAT")
	v.BindEnv("azure.key_vault_url", "KEY_VAULT_URL")
	v.BindEnv("azure.tenant_id", "AZURE_TENANT_ID")
	v.BindEnv("azure.client_id", "AZURE_CLIENT_ID")
	v.BindEnv("azure.client_secret", "AZURE_CLIENT_SECRET")
	v.BindEnv("server.addr", "SERVER_ADDR")
	v.BindEnv("server.jwt_secret", "JWT_SECRET")

	v.SetDefault("server.addr", ":8080")

	config := &Config{
		DevOps: DevOpsConfig{
			Organization: v.GetString("devops.organization"),
			Project:      v.GetString("devops.project"),
			BaseURL:      v.GetString("devops.base_url"),
			PAT:          v.GetString("devops.pat"),
			Timeout:      30 * time.Second,
		},
		Azure: AzureConfig{
			KeyVaultURL:  v.GetString("azure.key_vault_url"),
			TenantID:     v.GetString("azure.tenant_id"),
			ClientID:     v.GetString("azure.client_id"),
			ClientSecret: v.GetString("azure.client_secret"),
		},
		Server: ServerConfig{
			Addr:      v.GetString("server.addr"),
			JWTSecret: v.GetString("server.jwt_secret"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validateConfig ensures that all required configuration values are provided.
func validateConfig(config *Config) error {
	var missingVars []string

	if config.DevOps.Organization == "" {
		missingVars = append(missingVars, "DEVOPS_ORGANIZATION")
	}
	if config.DevOps.Project == "" {
		missingVars = append(missingVars, "DEVOPS_PROJECT")
	}

	// A PAT must be obtainable one way or the other: directly, or through
	// Key Vault with AAD client credentials.
	if config.DevOps.PAT == "" {
		if config.Azure.KeyVaultURL == "" {
			missingVars = append(missingVars, "DEVOPS_PAT or KEY_VAULT_URL")
		} else {
			if config.Azure.TenantID == "" {
				missingVars = append(missingVars, "AZURE_TENANT_ID")
			}
			if config.Azure.ClientID == "" {
				missingVars = append(missingVars, "AZURE_CLIENT_ID")
			}
			if config.Azure.ClientSecret == "" {
				missingVars = append(missingVars, "AZURE_CLIENT_SECRET")
			}
		}
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}

// ValidateServerConfig validates the settings the HTTP front door needs on
// top of the base configuration.
func ValidateServerConfig(config *Config) error {
	var missingVars []string

	if config.Server.JWTSecret == "" {
		missingVars = append(missingVars, "JWT_SECRET")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}
