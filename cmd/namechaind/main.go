package main

import (
	"flag"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"

	"namechain/config"
	"namechain/core/state"
	"namechain/native/feed"
	"namechain/native/names"
	"namechain/native/points"
	"namechain/native/revenue"
	"namechain/native/staking"
	"namechain/native/stats"
	"namechain/native/token"
	"namechain/observability/logging"
	"namechain/rpc"
	"namechain/storage"
)

func main() {
	configPath := flag.String("config", "./config.toml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup("namechaind", cfg.Environment)

	db, err := openDatabase(cfg)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	node, err := buildNode(cfg, db)
	if err != nil {
		logger.Error("build node", "error", err)
		os.Exit(1)
	}

	server := rpc.NewServer(node, logger)
	logger.Info("rpc server listening", "address", cfg.RPCAddress, "backend", cfg.Backend)
	if err := server.ListenAndServe(cfg.RPCAddress); err != nil {
		logger.Error("rpc server stopped", "error", err)
		os.Exit(1)
	}
}

func openDatabase(cfg *config.Config) (storage.Database, error) {
	switch cfg.Backend {
	case "memory":
		return storage.NewMemDB(), nil
	case "bolt":
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, err
		}
		return storage.NewBoltDB(filepath.Join(cfg.DataDir, "ledger.db"))
	case "leveldb":
		return storage.NewLevelDB(filepath.Join(cfg.DataDir, "ledger"))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// buildNode constructs and cross-wires every module engine.
func buildNode(cfg *config.Config, db storage.Database) (*rpc.Node, error) {
	if !common.IsHexAddress(cfg.Owner) {
		return nil, fmt.Errorf("config Owner must be a hex address, got %q", cfg.Owner)
	}
	owner := common.HexToAddress(cfg.Owner)
	ledger := state.NewLedger(db)

	tldPrice, err := config.ParseWei(cfg.Names.TldPrice)
	if err != nil {
		return nil, err
	}
	minDeposit, err := config.ParseWei(cfg.Staking.MinDeposit)
	if err != nil {
		return nil, err
	}
	claimMinimum, err := config.ParseWei(cfg.Staking.ClaimMinimum)
	if err != nil {
		return nil, err
	}
	postPrice, err := config.ParseWei(cfg.Feed.PostPrice)
	if err != nil {
		return nil, err
	}
	modMinBalance, err := config.ParseWei(cfg.Feed.ModMinBalance)
	if err != nil {
		return nil, err
	}
	if len(cfg.Names.TierPrices) != 5 {
		return nil, fmt.Errorf("config Names.TierPrices must hold five entries, got %d", len(cfg.Names.TierPrices))
	}
	var tierPrices [5]*big.Int
	for i, raw := range cfg.Names.TierPrices {
		p, err := config.ParseWei(raw)
		if err != nil {
			return nil, err
		}
		tierPrices[i] = p
	}

	// Name registry stack.
	forbidden := names.NewForbiddenNames(owner)
	factoryAddr := state.DeriveAddressFromSeed(owner, "names.factory")
	namesFactory := names.NewFactory(owner, factoryAddr, tldPrice, forbidden, ledger, nil)
	if err := forbidden.AddFactory(owner, factoryAddr); err != nil {
		return nil, err
	}
	resolver := names.NewResolver(owner)
	if err := resolver.AddFactory(owner, namesFactory); err != nil {
		return nil, err
	}
	registry, err := namesFactory.OwnerCreateTld(owner, ".name", "NAME", owner, tierPrices[4], false)
	if err != nil {
		return nil, err
	}

	// Spend stats with a middleware fan-in registered as the sole writer.
	statsLedger := stats.New(owner)
	middlewareAddr := state.DeriveAddressFromSeed(owner, "stats.middleware")
	middleware := stats.NewMiddleware(owner, middlewareAddr, statsLedger)
	if err := statsLedger.SetWriter(owner, middlewareAddr); err != nil {
		return nil, err
	}

	// Tiered sales front for the launch registry, reporting spend through the
	// middleware.
	minterAddr := state.DeriveAddressFromSeed(owner, "names.minter")
	minter := names.NewMinter(owner, minterAddr, registry, owner, tierPrices, ledger)
	if err := registry.ChangeMinter(owner, minterAddr); err != nil {
		return nil, err
	}
	if err := middleware.AddWriter(owner, minterAddr); err != nil {
		return nil, err
	}
	if err := minter.SetStatsWriter(owner, middleware); err != nil {
		return nil, err
	}

	activityPoints := points.New(owner, middleware, nil, big.NewInt(cfg.Points.Multiplier))

	// Moderator token doubles as the vault deposit asset.
	modToken := token.New("Moderator", "MOD", owner)

	vault, err := staking.NewVault(staking.VaultConfig{
		Owner:         owner,
		Address:       state.DeriveAddressFromSeed(owner, "staking.vault"),
		Asset:         modToken,
		ReceiptName:   cfg.Staking.ReceiptName,
		ReceiptSymbol: cfg.Staking.ReceiptSymbol,
		PeriodLength:  cfg.Staking.PeriodLength,
		MinDeposit:    minDeposit,
		ClaimMinimum:  claimMinimum,
		Ledger:        ledger,
	})
	if err != nil {
		return nil, err
	}

	chat := feed.NewChat(owner, state.DeriveAddressFromSeed(owner, "feed.chat"), modToken, modMinBalance, ledger, nil)
	if err := chat.SetPrice(owner, postPrice); err != nil {
		return nil, err
	}
	comments := feed.NewComments(owner, state.DeriveAddressFromSeed(owner, "feed.comments"), modToken, modMinBalance, nil, nil, ledger, nil)

	revenueFactory := revenue.NewFactory(owner, state.DeriveAddressFromSeed(owner, "revenue.factory"), ledger, nil)

	// Reward token with two one-shot claim engines minting on it: activity
	// points at a fixed ratio and a per-name airdrop over the launch registry.
	domainReward, err := config.ParseWei(cfg.Rewards.DomainReward)
	if err != nil {
		return nil, err
	}
	rewardToken := token.New(cfg.Rewards.TokenName, cfg.Rewards.TokenSymbol, owner)
	pointsClaim, err := token.NewPointsClaim(
		owner,
		state.DeriveAddressFromSeed(owner, "rewards.claim.points"),
		rewardToken,
		activityPoints,
		big.NewInt(cfg.Rewards.PointsRatio),
	)
	if err != nil {
		return nil, err
	}
	domainsClaim, err := token.NewDomainsClaim(
		owner,
		state.DeriveAddressFromSeed(owner, "rewards.claim.domains"),
		rewardToken,
		registry,
		domainReward,
		uint64(cfg.Rewards.MaxEligibleID),
	)
	if err != nil {
		return nil, err
	}
	if err := rewardToken.AddMinter(owner, pointsClaim.Address()); err != nil {
		return nil, err
	}
	if err := rewardToken.AddMinter(owner, domainsClaim.Address()); err != nil {
		return nil, err
	}

	return &rpc.Node{
		Ledger:          ledger,
		Forbidden:       forbidden,
		NamesFactory:    namesFactory,
		Resolver:        resolver,
		Minter:          minter,
		RevenueFactory:  revenueFactory,
		Stats:           statsLedger,
		StatsMiddleware: middleware,
		Points:          activityPoints,
		Vault:           vault,
		Chat:            chat,
		Comments:        comments,
		RewardToken:     rewardToken,
		PointsClaim:     pointsClaim,
		DomainsClaim:    domainsClaim,
	}, nil
}
