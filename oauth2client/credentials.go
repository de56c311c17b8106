package oauth2client

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ClientCredentialsFileName holds {"client_id", "client_secret"}.
	ClientCredentialsFileName = "client.json"
	// UserCredentialsFileName holds {"application_username", "application_password"}.
	UserCredentialsFileName = "user.json"
)

// ClientCredentials authenticate the client at the token endpoint.
type ClientCredentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// UserCredentials are the resource owner credentials for the password grant.
type UserCredentials struct {
	ApplicationUsername string `json:"application_username"`
	ApplicationPassword string `json:"application_password"`
}

// CredentialsLoader looks up credentials stored under a directory.
type CredentialsLoader interface {
	LoadClientCredentials(ctx context.Context, dir string) (*ClientCredentials, error)
	LoadUserCredentials(ctx context.Context, dir string) (*UserCredentials, error)
}

// FileCredentialsLoader reads client.json and user.json from the local file system.
type FileCredentialsLoader struct{}

// LoadClientCredentials reads client.json from dir.
func (FileCredentialsLoader) LoadClientCredentials(ctx context.Context, dir string) (*ClientCredentials, error) {
	creds := &ClientCredentials{}
	if err := readJSONFile(ctx, credentialsPath(dir, ClientCredentialsFileName), creds); err != nil {
		return nil, err
	}
	return creds, nil
}

// LoadUserCredentials reads user.json from dir.
func (FileCredentialsLoader) LoadUserCredentials(ctx context.Context, dir string) (*UserCredentials, error) {
	creds := &UserCredentials{}
	if err := readJSONFile(ctx, credentialsPath(dir, UserCredentialsFileName), creds); err != nil {
		return nil, err
	}
	return creds, nil
}

// credentialsPath joins dir and name, tolerating a trailing slash on dir.
func credentialsPath(dir, name string) string {
	return filepath.Join(strings.TrimSuffix(dir, "/"), name)
}

func readJSONFile(ctx context.Context, path string, out any) error {
	if err := ctx.Err(); err != nil {
		return &CredentialsError{Path: path, Err: err}
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path is operator supplied configuration
	if err != nil {
		return &CredentialsError{Path: path, Err: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &CredentialsError{Path: path, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	return nil
}

// resolveCredentials returns the client credentials and, for the password grant, the user credentials.
func resolveCredentials(ctx context.Context, cfg *Config, loader CredentialsLoader) (*ClientCredentials, *UserCredentials, error) {
	_, needsUser := normalizeGrant(cfg.Grant).(PasswordCredentialsGrant)

	if cfg.CredentialsDir == "" {
		client := &ClientCredentials{ClientID: cfg.ClientID, ClientSecret: cfg.ClientSecret}
		if !needsUser {
			return client, nil, nil
		}
		return client, &UserCredentials{
			ApplicationUsername: cfg.ApplicationUsername,
			ApplicationPassword: cfg.ApplicationPassword,
		}, nil
	}

	client, err := loader.LoadClientCredentials(ctx, cfg.CredentialsDir)
	if err != nil {
		return nil, nil, err
	}
	if !needsUser {
		return client, nil, nil
	}

	user, err := loader.LoadUserCredentials(ctx, cfg.CredentialsDir)
	if err != nil {
		return nil, nil, err
	}

	return client, user, nil
}
