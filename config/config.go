package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the daemon configuration, decoded from TOML.
type Config struct {
	RPCAddress  string `toml:"RPCAddress"`
	DataDir     string `toml:"DataDir"`
	Backend     string `toml:"Backend"` // memory, leveldb or bolt
	Environment string `toml:"Environment"`
	Owner       string `toml:"Owner"` // hex address administering the modules

	Names   NamesConfig   `toml:"Names"`
	Staking StakingConfig `toml:"Staking"`
	Points  PointsConfig  `toml:"Points"`
	Feed    FeedConfig    `toml:"Feed"`
	Rewards RewardsConfig `toml:"Rewards"`
}

// NamesConfig parameterizes the name registry stack.
type NamesConfig struct {
	TldPrice     string   `toml:"TldPrice"`   // wei, decimal string
	TierPrices   []string `toml:"TierPrices"` // five entries, name lengths 1..5+
	ReferralBips int64    `toml:"ReferralBips"`
}

// StakingConfig parameterizes the rewards vault.
type StakingConfig struct {
	PeriodLength  int64  `toml:"PeriodLength"` // seconds
	MinDeposit    string `toml:"MinDeposit"`
	ClaimMinimum  string `toml:"ClaimMinimum"`
	ReceiptName   string `toml:"ReceiptName"`
	ReceiptSymbol string `toml:"ReceiptSymbol"`
}

// PointsConfig parameterizes the activity points read-model.
type PointsConfig struct {
	Multiplier int64 `toml:"Multiplier"`
}

// FeedConfig parameterizes the chat and comment engines.
type FeedConfig struct {
	PostPrice     string `toml:"PostPrice"`
	ModMinBalance string `toml:"ModMinBalance"`
}

// RewardsConfig parameterizes the reward token and its claim engines.
type RewardsConfig struct {
	TokenName     string `toml:"TokenName"`
	TokenSymbol   string `toml:"TokenSymbol"`
	PointsRatio   int64  `toml:"PointsRatio"`   // reward tokens per activity point
	DomainReward  string `toml:"DomainReward"`  // wei, per eligible name
	MaxEligibleID int64  `toml:"MaxEligibleID"` // top name token id in the airdrop snapshot
}

// Load loads the configuration from the given path, creating a commented
// default file when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.RPCAddress) == "" {
		c.RPCAddress = ":8080"
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = "./namechain-data"
	}
	if strings.TrimSpace(c.Backend) == "" {
		c.Backend = "leveldb"
	}
	if c.Staking.PeriodLength <= 0 {
		c.Staking.PeriodLength = 7 * 24 * 3600
	}
	if c.Staking.ReceiptName == "" {
		c.Staking.ReceiptName = "Staked NAME"
	}
	if c.Staking.ReceiptSymbol == "" {
		c.Staking.ReceiptSymbol = "stNAME"
	}
	if c.Points.Multiplier <= 0 {
		c.Points.Multiplier = 100
	}
	if len(c.Names.TierPrices) == 0 {
		c.Names.TierPrices = []string{
			"1000000000000000000",
			"100000000000000000",
			"30000000000000000",
			"8000000000000000",
			"2000000000000000",
		}
	}
	if c.Names.ReferralBips <= 0 {
		c.Names.ReferralBips = 1000
	}
	if c.Rewards.TokenName == "" {
		c.Rewards.TokenName = "Namechain Token"
	}
	if c.Rewards.TokenSymbol == "" {
		c.Rewards.TokenSymbol = "NCT"
	}
	if c.Rewards.PointsRatio <= 0 {
		c.Rewards.PointsRatio = 1000
	}
	if c.Rewards.DomainReward == "" {
		c.Rewards.DomainReward = "1337000000000000000000"
	}
	if c.Rewards.MaxEligibleID <= 0 {
		c.Rewards.MaxEligibleID = 100
	}
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		RPCAddress:  ":8080",
		DataDir:     "./namechain-data",
		Backend:     "leveldb",
		Environment: "local",
	}
	cfg.applyDefaults()

	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// ParseWei decodes a decimal wei string; empty strings decode to zero.
func ParseWei(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return big.NewInt(0), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("config: invalid wei amount %q", s)
	}
	return v, nil
}
