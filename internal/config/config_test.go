package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 3366,
			CORS: CORSConfig{AllowedOrigins: []string{"http://localhost:3366"}},
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     3306,
			Database: "danci",
			Username: "user",
		},
		Remote: RemoteConfig{
			Enabled:        true,
			BaseURL:        "http://localhost:3366/api",
			TimeoutSeconds: 10,
			RetryAttempts:  2,
		},
		Fallback: FallbackConfig{
			BaseURL:        "https://api.mymemory.translated.net/get",
			LangPair:       "en|zh",
			TimeoutSeconds: 10,
			RetryAttempts:  1,
			Cache:          FallbackCacheConfig{TTLSeconds: 86400},
		},
		Sync: SyncConfig{
			Enabled:         true,
			AutoSync:        true,
			IntervalSeconds: 20,
		},
		Store: StoreConfig{
			Driver: "file",
			Path:   filepath.Join("data", "store.yml"),
		},
		Channel: ChannelConfig{
			TimeoutSeconds: 5,
			ListenAddress:  "127.0.0.1:3367",
		},
	}
}

func TestConfigLoader_Load(t *testing.T) {
	tests := []struct {
		name              string
		configContent     string
		useExplicitPath   bool
		env               map[string]string
		want              func() *Config
		wantErrorContains []string
	}{
		{
			name: "no config file uses defaults",
			want: defaultConfig,
		},
		{
			name: "valid config file with custom values",
			configContent: `remote:
  base_url: https://words.example.com/api
  retry_attempts: 0
sync:
  auto_sync: false
  interval_seconds: 60
store:
  driver: sqlite
  path: custom/store.db
`,
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Remote.BaseURL = "https://words.example.com/api"
				cfg.Remote.RetryAttempts = 0
				cfg.Sync.AutoSync = false
				cfg.Sync.IntervalSeconds = 60
				cfg.Store = StoreConfig{Driver: "sqlite", Path: "custom/store.db"}
				return cfg
			},
		},
		{
			name: "explicit config file path",
			configContent: `fallback:
  lang_pair: en-GB|zh-CN
channel:
  timeout_seconds: 2
`,
			useExplicitPath: true,
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Fallback.LangPair = "en-GB|zh-CN"
				cfg.Channel.TimeoutSeconds = 2
				return cfg
			},
		},
		{
			name: "environment variables override the file",
			configContent: `remote:
  base_url: https://file.example.com/api
`,
			env: map[string]string{
				"WORDSYNC_REMOTE_URL": "https://env.example.com/api",
				"WORDSYNC_REDIS_URL":  "redis://localhost:6379/0",
				"DB_PASSWORD":         "secret",
			},
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Remote.BaseURL = "https://env.example.com/api"
				cfg.Fallback.Cache.RedisURL = "redis://localhost:6379/0"
				cfg.Database.Password = "secret"
				return cfg
			},
		},
		{
			name: "invalid YAML format",
			configContent: `remote:
  base_url: x
  invalid yaml format here [[[
`,
			wantErrorContains: []string{
				"configuration file found but could not be read",
				"Please check the file format and permissions",
			},
		},
		{
			name: "invalid store driver",
			configContent: `store:
  driver: leveldb
`,
			wantErrorContains: []string{"invalid configuration", "driver must be one of [file sqlite]"},
		},
		{
			name: "invalid language pair",
			configContent: `fallback:
  lang_pair: english-chinese
`,
			wantErrorContains: []string{"fallback.lang_pair must be a language pair such as en|zh"},
		},
		{
			name: "missing dictionary file",
			configContent: `dictionary:
  path: does/not/exist.csv
`,
			wantErrorContains: []string{"dictionary.path must be an existing and readable file"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"WORDSYNC_REMOTE_URL", "WORDSYNC_REDIS_URL", "DB_PASSWORD"} {
				t.Setenv(key, tt.env[key])
			}

			tempDir := t.TempDir()
			var configPath string
			if tt.useExplicitPath {
				configPath = filepath.Join(tempDir, "custom.yml")
				require.NoError(t, os.WriteFile(configPath, []byte(tt.configContent), 0644))
			} else {
				if tt.configContent != "" {
					require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yml"), []byte(tt.configContent), 0644))
				}
				t.Chdir(tempDir)
			}

			loader, err := NewConfigLoader(configPath)
			require.NoError(t, err)
			got, err := loader.Load()

			if len(tt.wantErrorContains) > 0 {
				require.Error(t, err)
				assert.Nil(t, got)
				for _, wantMsg := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), wantMsg)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want(), got)
		})
	}
}

func TestConfigLoader_Load_DictionaryFile(t *testing.T) {
	tempDir := t.TempDir()
	dictPath := filepath.Join(tempDir, "dict.csv")
	require.NoError(t, os.WriteFile(dictPath, []byte("word,translation\n"), 0644))
	configPath := filepath.Join(tempDir, "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("dictionary:\n  path: "+dictPath+"\n"), 0644))

	loader, err := NewConfigLoader(configPath)
	require.NoError(t, err)
	got, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, dictPath, got.Dictionary.Path)
}

func TestDurations(t *testing.T) {
	cfg := defaultConfig()
	assert.Equal(t, 10*time.Second, cfg.Remote.Timeout())
	assert.Equal(t, 10*time.Second, cfg.Fallback.Timeout())
	assert.Equal(t, 20*time.Second, cfg.Sync.Interval())
	assert.Equal(t, 5*time.Second, cfg.Channel.Timeout())
	assert.Equal(t, "http://127.0.0.1:3367", cfg.Channel.URL())
}

func TestSyncConfig_SchedulerEnabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  SyncConfig
		want bool
	}{
		{name: "enabled with auto sync", cfg: SyncConfig{Enabled: true, AutoSync: true}, want: true},
		{name: "auto sync off", cfg: SyncConfig{Enabled: true}, want: false},
		{name: "disabled", cfg: SyncConfig{AutoSync: true}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.SchedulerEnabled())
		})
	}
}
