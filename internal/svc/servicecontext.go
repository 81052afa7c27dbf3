package svc

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"ethverify/internal/calldata"
	"ethverify/internal/chain"
	"ethverify/internal/config"
	"ethverify/internal/constant"
	"ethverify/internal/logic/tracker"
	"ethverify/internal/model"

	"github.com/zeromicro/go-zero/core/logx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	dialTimeout           = 10 * time.Second
	defaultNativeDecimals = 18
)

type ServiceContext struct {
	Config       config.Config
	Networks     map[string]*tracker.Network
	TokenReaders map[string]*chain.TokenReader
	// ChainIds holds the configured or registry chain id per network.
	ChainIds map[string]int64
	// VerificationsDao is nil when no Postgres DSN is configured.
	VerificationsDao model.VerificationsDao
	DB               *gorm.DB
}

func NewServiceContext(c config.Config) *ServiceContext {
	svcCtx := &ServiceContext{Config: c}

	// 为每条配置的链建立只读 RPC 连接
	for name, chainConf := range c.Chains {
		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		client, err := chain.Dial(ctx, chainConf.RpcUrl)
		cancel()
		if err != nil {
			log.Fatalf("failed to connect to chain %s: %v", name, err)
		}
		if err := svcCtx.AddChain(name, chainConf, client); err != nil {
			log.Fatalf("failed to init chain %s: %v", name, err)
		}
	}

	// DSN 为空时不记录校验历史
	if c.Postgres.DSN != "" {
		db, err := initDB(c.Postgres.DSN)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		if err := model.Migrate(db); err != nil {
			log.Fatalf("failed to migrate db: %v", err)
		}
		svcCtx.DB = db
		svcCtx.VerificationsDao = model.NewVerificationsDao(db)
	} else {
		logx.Info("postgres DSN not set, verification history disabled")
	}

	return svcCtx
}

// AddChain registers a connected chain under name. Every call made through
// it is rate limited per chainConf and counted.
func (s *ServiceContext) AddChain(name string, chainConf config.ChainConf, client chain.Client) error {
	client = chain.NewLimitedClient(name, client, chainConf.RateLimit, chainConf.RateBurst)
	tokens, err := chain.NewTokenReader(name, client)
	if err != nil {
		return err
	}
	if s.Networks == nil {
		s.Networks = make(map[string]*tracker.Network)
		s.TokenReaders = make(map[string]*chain.TokenReader)
		s.ChainIds = make(map[string]int64)
	}
	s.Networks[name] = NewNetwork(name, chainConf, s.Config.Verify, client, tokens)
	s.TokenReaders[name] = tokens
	s.ChainIds[name] = chainId(name, chainConf)
	return nil
}

// NewNetwork assembles the read-only view of one chain. Native currency
// settings missing from config are taken from the known network registry.
func NewNetwork(name string, chainConf config.ChainConf, verify config.VerifyConf, client chain.Client, tokens tracker.TokenDecimals) *tracker.Network {
	symbol, decimals := chainConf.NativeSymbol, chainConf.NativeDecimals
	if known, ok := constant.LookupNetwork(name); ok {
		if symbol == "" {
			symbol = known.Native.Symbol
		}
		if decimals == 0 {
			decimals = known.Native.Decimals
		}
	}
	if decimals == 0 {
		decimals = defaultNativeDecimals
	}

	decoders := calldata.DefaultRegistry()
	if verify.AcceptTransferFrom {
		decoders.Register(calldata.TransferFromSelector, calldata.TransferFromDecoder())
	}

	return &tracker.Network{
		Name:                name,
		Client:              client,
		NativeSymbol:        symbol,
		NativeDecimals:      decimals,
		Tokens:              tokens,
		Decoders:            decoders,
		StrictTokenContract: verify.StrictTokenContract,
	}
}

func chainId(name string, chainConf config.ChainConf) int64 {
	if chainConf.ChainId != 0 {
		return chainConf.ChainId
	}
	if known, ok := constant.LookupNetwork(name); ok {
		return known.ChainId
	}
	return 0
}

// Network returns the configured network for chain.
func (s *ServiceContext) Network(chainName string) (*tracker.Network, error) {
	net, ok := s.Networks[chainName]
	if !ok {
		return nil, &UnsupportedChainError{Chain: chainName, Supported: s.ChainNames()}
	}
	return net, nil
}

// ChainNames lists configured chains in a stable order.
func (s *ServiceContext) ChainNames() []string {
	names := make([]string, 0, len(s.Networks))
	for name := range s.Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RetryPolicy converts the Verify section into the trackers' poll schedule.
func (s *ServiceContext) RetryPolicy() tracker.RetryPolicy {
	v := s.Config.Verify
	return tracker.RetryPolicy{
		Interval:    v.PollInterval,
		MaxAttempts: v.MaxAttempts,
		Multiplier:  v.Multiplier,
		MaxInterval: v.MaxInterval,
	}
}

// Close releases every RPC connection.
func (s *ServiceContext) Close() {
	for _, net := range s.Networks {
		net.Client.Close()
	}
	if s.DB != nil {
		if sqlDB, err := s.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// UnsupportedChainError is returned for a chain that has no configuration.
type UnsupportedChainError struct {
	Chain     string
	Supported []string
}

func (e *UnsupportedChainError) Error() string {
	return fmt.Sprintf("unsupported chain: %s (configured: %v)", e.Chain, e.Supported)
}

func initDB(dsn string) (*gorm.DB, error) {
	newLogger := logger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	return db, nil
}
