package core

import (
	"fmt"

	"AmigoCRM/internal/lib/sl"
)

// AuthenticateByKey validates an api key and returns its owner. The
// static key from config always authenticates as admin; generated
// keys are checked against the store and cached.
func (c *Core) AuthenticateByKey(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty api key")
	}

	if c.authKey != "" && key == c.authKey {
		return "admin", nil
	}

	c.mu.Lock()
	username, ok := c.keys[key]
	c.mu.Unlock()
	if ok {
		return username, nil
	}

	if c.repo == nil {
		return "", fmt.Errorf("repository is not set")
	}

	username, err := c.repo.CheckApiKey(key)
	if err != nil {
		return "", err
	}
	if username == "" {
		return "", fmt.Errorf("api key not found")
	}

	c.mu.Lock()
	c.keys[key] = username
	c.mu.Unlock()

	return username, nil
}

// ValidateKey is the WebSocket variant of AuthenticateByKey.
func (c *Core) ValidateKey(key string) (string, error) {
	return c.AuthenticateByKey(key)
}

func (c *Core) GenerateApiKey(username string) (string, error) {
	if c.repo == nil {
		return "", fmt.Errorf("repository is not set")
	}

	apiKey, err := c.repo.GenerateApiKey(username)
	if err != nil {
		return "", fmt.Errorf("failed to generate API key: %w", err)
	}

	c.mu.Lock()
	c.keys[apiKey] = username
	c.mu.Unlock()

	c.log.With(sl.Secret("key", apiKey)).Info("api key generated")
	return apiKey, nil
}

func (c *Core) OpenMedia(name string) ([]byte, string, error) {
	if c.media == nil {
		return nil, "", fmt.Errorf("media store is not set")
	}
	return c.media.Open(name)
}
