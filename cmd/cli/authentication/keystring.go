package authentication

// KeyString stores the API access token in the OS keyring, on the client side.
import (
	"encoding/json"
	"errors"

	"github.com/zalando/go-keyring"
)

const (
	serviceName = "immersionctl"
	tokenKey    = "access_token"
)

// ErrNoToken is returned when nothing has been stored yet.
var ErrNoToken = errors.New("no stored token, run: immersionctl auth login --token <jwt>")

type StoredCredentials struct {
	AccessToken string `json:"access_token"`
	APIURL      string `json:"api_url,omitempty"`
	ExpiresAt   int64  `json:"expires_at,omitempty"`
}

func StoreTokens(creds *StoredCredentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return keyring.Set(serviceName, tokenKey, string(data))
}

func GetTokens() (*StoredCredentials, error) {
	value, err := keyring.Get(serviceName, tokenKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, err
	}

	var creds StoredCredentials
	if err := json.Unmarshal([]byte(value), &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

func DeleteTokens() error {
	err := keyring.Delete(serviceName, tokenKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
