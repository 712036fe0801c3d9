// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type Config struct {
	TelegramToken string   `mapstructure:"telegram_token"`
	RPCList       []string `mapstructure:"rpc_list"`
	ScreenerURL   string   `mapstructure:"screener_url"`
	ChainID       string   `mapstructure:"chain_id"`
	DexWallet     string   `mapstructure:"dex_wallet"`
	AlertInterval int      `mapstructure:"alert_interval"`
	PollTimeout   int      `mapstructure:"poll_timeout"`
	Workers       int      `mapstructure:"workers"`
	SendRate      float64  `mapstructure:"send_rate"`
	LogFile       string   `mapstructure:"log_file"`
	DebugLogging  bool     `mapstructure:"debug_logging"`
}

const (
	DefaultRPCURL        = "https://rpc.free.gsnode.io/"
	DefaultScreenerURL   = "https://api.dexscreener.com"
	DefaultChainID       = "solana"
	DefaultDexWallet     = "5h2rm7GxxAbEP8cHKY1eLZ54Wb8SLF7u2SmbK7gG3J4W"
	DefaultAlertInterval = 60
	DefaultPollTimeout   = 20
	DefaultWorkers       = 5
	DefaultSendRate      = 20.0
	DefaultLogFile       = "bot.log"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"rpc_list":       []string{DefaultRPCURL},
		"screener_url":   DefaultScreenerURL,
		"chain_id":       DefaultChainID,
		"dex_wallet":     DefaultDexWallet,
		"alert_interval": DefaultAlertInterval,
		"poll_timeout":   DefaultPollTimeout,
		"workers":        DefaultWorkers,
		"send_rate":      DefaultSendRate,
		"log_file":       DefaultLogFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.TelegramToken == "" {
		return errors.New("missing telegram_token in configuration")
	}
	if len(cfg.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURLWithCache(rpcURL, "http"); err != nil {
			return errors.New("invalid RPC URL protocol")
		}
	}
	if err := validateURLWithCache(cfg.ScreenerURL, "http"); err != nil {
		return errors.New("invalid screener URL protocol")
	}
	if cfg.ChainID == "" {
		return errors.New("chain_id is empty")
	}
	if cfg.DexWallet == "" {
		return errors.New("dex_wallet is empty")
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.AlertInterval <= 0 {
		return errors.New("invalid alert_interval")
	}
	if cfg.PollTimeout <= 0 {
		return errors.New("invalid poll_timeout")
	}
	if cfg.Workers <= 0 {
		return errors.New("invalid workers count")
	}
	if cfg.SendRate <= 0 {
		return errors.New("invalid send_rate")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("TRADING_BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envToken := v.GetString("TELEGRAM_TOKEN")
	if envToken != "" {
		cfg.TelegramToken = envToken
	}

	envRPCList := v.GetString("RPC_LIST")
	if envRPCList != "" {
		rpcs := strings.Split(envRPCList, ",")
		var cleanRPCs []string
		for _, rpc := range rpcs {
			clean := strings.TrimSpace(rpc)
			if clean != "" {
				cleanRPCs = append(cleanRPCs, clean)
			}
		}
		if len(cleanRPCs) > 0 {
			cfg.RPCList = cleanRPCs
		}
	}
	return nil
}
