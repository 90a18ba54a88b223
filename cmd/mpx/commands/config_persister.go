package commands

import (
	"sync"
)

// ConfigPersister stores tokens issued by sign-in in the config file.
type ConfigPersister struct {
	mutex sync.Mutex
}

// NewConfigPersister creates a new config persister.
func NewConfigPersister() *ConfigPersister {
	return &ConfigPersister{}
}

// UpdateToken saves token, and the user it was issued to, as the defaults for
// later commands.
func (p *ConfigPersister) UpdateToken(user, token string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config := loadConfig()
	config.User = user
	config.Token = token

	return saveConfigStruct(config)
}

// ClearToken removes the saved token.
func (p *ConfigPersister) ClearToken() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config := loadConfig()
	config.Token = ""

	return saveConfigStruct(config)
}
