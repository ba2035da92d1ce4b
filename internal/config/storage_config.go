package config

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetSessionDBPath() string {
	return GetEnv("SESSION_DB_PATH", "./data/session.db")
}

// GetSessionKey returns a hex encoded 32 byte key. When set, stored session
// values are encrypted at rest.
func (Storage) GetSessionKey() string {
	return GetEnv("SESSION_KEY", "")
}
