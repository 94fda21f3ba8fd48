package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
	dir string
}

func (s *ConfigTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
	for _, key := range []string{
		"DISCORD_TOKEN", "APPLICATION_ID", "GUILD_ID", "STORAGE_BACKEND", "DATA_DIR",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "SQLITE_PATH", "CONFIRM_TIMEOUT", "ACTIVITY_DEBOUNCE",
	} {
		// t.Setenv restores the previous value when the test ends
		s.T().Setenv(key, "")
		s.Require().NoError(os.Unsetenv(key))
	}
}

func (s *ConfigTestSuite) missing() string {
	return filepath.Join(s.dir, "missing.env")
}

func (s *ConfigTestSuite) TestDefaults() {
	cfg, err := Load(s.missing())
	s.Require().NoError(err)

	s.Equal(BackendFile, cfg.StorageBackend)
	s.Equal("data", cfg.DataDir)
	s.Equal("localhost:6379", cfg.RedisAddr)
	s.Equal(0, cfg.RedisDB)
	s.Equal(30*time.Second, cfg.ConfirmTimeout)
	s.Equal(10*time.Minute, cfg.ActivityDebounce)
	s.Equal(filepath.Join("data", "nomic.db"), cfg.DatabasePath())
	s.ErrorIs(cfg.ValidateForRun(), ErrMissingToken)
}

func (s *ConfigTestSuite) TestEnvironment() {
	s.T().Setenv("DISCORD_TOKEN", "token")
	s.T().Setenv("STORAGE_BACKEND", "sqlite")
	s.T().Setenv("SQLITE_PATH", "/var/lib/nomic/game.db")
	s.T().Setenv("REDIS_DB", "3")
	s.T().Setenv("CONFIRM_TIMEOUT", "5s")

	cfg, err := Load(s.missing())
	s.Require().NoError(err)

	s.Equal(BackendSQLite, cfg.StorageBackend)
	s.Equal("/var/lib/nomic/game.db", cfg.DatabasePath())
	s.Equal(3, cfg.RedisDB)
	s.Equal(5*time.Second, cfg.ConfirmTimeout)
	s.NoError(cfg.ValidateForRun())
}

func (s *ConfigTestSuite) TestDotEnvFile() {
	path := filepath.Join(s.dir, ".env")
	s.Require().NoError(os.WriteFile(path, []byte("STORAGE_BACKEND=redis\nREDIS_ADDR=redis:6379\n"), 0o600))
	s.T().Setenv("REDIS_ADDR", "override:6379")

	cfg, err := Load(path)
	s.Require().NoError(err)

	s.Equal(BackendRedis, cfg.StorageBackend)
	// the real environment wins
	s.Equal("override:6379", cfg.RedisAddr)
}

func (s *ConfigTestSuite) TestInvalid() {
	s.T().Setenv("STORAGE_BACKEND", "postgres")
	_, err := Load(s.missing())
	s.Error(err)

	s.T().Setenv("STORAGE_BACKEND", "file")
	s.T().Setenv("REDIS_DB", "not-a-number")
	_, err = Load(s.missing())
	s.Error(err)
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}
