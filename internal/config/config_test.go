// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
)

var validConfigYAML = `
telegram_token: "123456:test-token"
rpc_list:
  - "https://api.mainnet-beta.solana.com"
  - "https://solana-api.projectserum.com"
alert_interval: 30
workers: 3
`

var minimalConfigYAML = `
telegram_token: "123456:test-token"
`

var missingTokenYAML = `
chain_id: "solana"
`

var badWorkersYAML = `
telegram_token: "123456:test-token"
workers: -1
`

var badRPCSchemeYAML = `
telegram_token: "123456:test-token"
rpc_list:
  - "ftp://not-an-rpc.example"
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return configPath
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(*Config) bool
	}{
		{
			name:    "Valid config",
			content: validConfigYAML,
			wantErr: false,
			check: func(cfg *Config) bool {
				return cfg.TelegramToken == "123456:test-token" &&
					len(cfg.RPCList) == 2 &&
					cfg.AlertInterval == 30 &&
					cfg.Workers == 3
			},
		},
		{
			name:    "Minimal config applies defaults",
			content: minimalConfigYAML,
			wantErr: false,
			check: func(cfg *Config) bool {
				return len(cfg.RPCList) == 1 &&
					cfg.RPCList[0] == DefaultRPCURL &&
					cfg.ScreenerURL == DefaultScreenerURL &&
					cfg.ChainID == DefaultChainID &&
					cfg.DexWallet == DefaultDexWallet &&
					cfg.AlertInterval == DefaultAlertInterval &&
					cfg.PollTimeout == DefaultPollTimeout &&
					cfg.Workers == DefaultWorkers &&
					cfg.SendRate == DefaultSendRate &&
					cfg.LogFile == DefaultLogFile
			},
		},
		{
			name:    "Missing telegram token",
			content: missingTokenYAML,
			wantErr: true,
		},
		{
			name:    "Negative workers",
			content: badWorkersYAML,
			wantErr: true,
		},
		{
			name:    "Non-http RPC URL",
			content: badRPCSchemeYAML,
			wantErr: true,
		},
		{
			name:    "Invalid YAML syntax",
			content: "telegram_token: [unclosed",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeTestConfig(t, tt.content)

			cfg, err := LoadConfig(configPath)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("Config check failed: %+v", cfg)
			}
		})
	}
}

func TestLoadConfig_FileMissing(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("TRADING_BOT_TELEGRAM_TOKEN", "env-token")
	t.Setenv("TRADING_BOT_RPC_LIST", " https://rpc-a.example/ , https://rpc-b.example/ ")

	configPath := writeTestConfig(t, validConfigYAML)
	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.TelegramToken != "env-token" {
		t.Errorf("Expected env token override, got %q", cfg.TelegramToken)
	}
	if len(cfg.RPCList) != 2 || cfg.RPCList[0] != "https://rpc-a.example/" || cfg.RPCList[1] != "https://rpc-b.example/" {
		t.Errorf("Expected trimmed env RPC list, got %v", cfg.RPCList)
	}
}
