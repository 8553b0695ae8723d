package fixtures

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"chainBench/internal/chain"
	"chainBench/internal/model"
	"chainBench/internal/retry"
)

// ChainReader is the RPC surface a snapshot needs.
type ChainReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BlockByNumber(ctx context.Context, number uint64) (*types.Block, error)
	FilterLogs(ctx context.Context, r chain.BlockRange, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error)
}

// SnapshotOptions selects what a snapshot captures.
type SnapshotOptions struct {
	From uint64
	To   uint64
	// LogRange caps the number of blocks per eth_getLogs call.
	LogRange uint64
	// Tokens restricts captured transfers to these token contracts; empty means all.
	Tokens []common.Address
	// Factories are V3 factories whose PoolCreated logs become pools; empty skips pools.
	Factories    []common.Address
	MaxRetries   int
	RetryBackoff time.Duration
}

// Snapshotter captures a block range of a live chain as a dataset.
type Snapshotter struct {
	client ChainReader
	opts   SnapshotOptions
	logger *zap.Logger
}

func NewSnapshotter(client ChainReader, opts SnapshotOptions, logger *zap.Logger) *Snapshotter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.LogRange == 0 {
		opts.LogRange = 2000
	}
	return &Snapshotter{client: client, opts: opts, logger: logger}
}

// Capture reads every block of the range with its transactions, then the
// ERC-20 transfers and pool creations emitted inside it.
func (s *Snapshotter) Capture(ctx context.Context) (*Dataset, error) {
	if s.opts.To < s.opts.From {
		return nil, fmt.Errorf("to block must be >= from block")
	}

	chainID, err := retry.Value(ctx, s.opts.MaxRetries, s.opts.RetryBackoff, s.client.ChainID)
	if err != nil {
		return nil, fmt.Errorf("get chain id: %w", err)
	}
	signer := types.LatestSignerForChainID(chainID)

	dataset := NewDataset()
	blockTimes := make(map[uint64]uint64, s.opts.To-s.opts.From+1)
	for number := s.opts.From; number <= s.opts.To; number++ {
		block, err := retry.Value(ctx, s.opts.MaxRetries, s.opts.RetryBackoff, func(ctx context.Context) (*types.Block, error) {
			return s.client.BlockByNumber(ctx, number)
		})
		if err != nil {
			return nil, fmt.Errorf("get block %d: %w", number, err)
		}
		blockTimes[number] = block.Time()
		s.addBlock(dataset, block, signer)
		if number == s.opts.To {
			break
		}
	}
	s.logger.Info("blocks captured",
		zap.Int("blocks", dataset.Len(model.KindBlock)),
		zap.Int("transactions", dataset.Len(model.KindTransaction)),
	)

	ranges, err := chain.SplitRange(s.opts.From, s.opts.To, s.opts.LogRange)
	if err != nil {
		return nil, err
	}
	if err := s.captureTransfers(ctx, dataset, ranges); err != nil {
		return nil, err
	}
	if err := s.capturePools(ctx, dataset, ranges, blockTimes); err != nil {
		return nil, err
	}
	return dataset, nil
}

func (s *Snapshotter) addBlock(dataset *Dataset, block *types.Block, signer types.Signer) {
	at := model.NewTimestamp(time.Unix(int64(block.Time()), 0))
	number := int64(block.NumberU64())
	dataset.Add(model.Block{
		BlockNumber:    number,
		BlockHash:      block.Hash().Hex(),
		ParentHash:     block.ParentHash().Hex(),
		BlockTimestamp: at,
		CreatedAt:      at,
		UpdatedAt:      at,
	})

	for i, tx := range block.Transactions() {
		var from, to string
		if sender, err := types.Sender(signer, tx); err == nil {
			from = chain.HexAddress(sender)
		} else {
			s.logger.Debug("sender recovery failed", zap.String("tx", tx.Hash().Hex()), zap.Error(err))
		}
		if tx.To() != nil {
			to = chain.HexAddress(*tx.To())
		}
		dataset.Add(model.Transaction{
			Block:     number,
			Index:     int64(i),
			Timestamp: at,
			Hash:      tx.Hash().Hex(),
			From:      from,
			To:        to,
			Value:     tx.Value().String(),
		})
	}
}

func (s *Snapshotter) captureTransfers(ctx context.Context, dataset *Dataset, ranges []chain.BlockRange) error {
	topic, err := chain.TransferTopic()
	if err != nil {
		return err
	}
	skipped := 0
	for _, r := range ranges {
		logs, err := s.filterLogs(ctx, r, s.opts.Tokens, topic)
		if err != nil {
			return fmt.Errorf("get transfer logs %d-%d: %w", r.From, r.To, err)
		}
		for _, log := range logs {
			if log.Removed {
				continue
			}
			event, err := chain.DecodeTransfer(log)
			if err != nil {
				skipped++
				continue
			}
			dataset.Add(model.Transfer{
				TxHash:      log.TxHash.Hex(),
				BlockNumber: int64(log.BlockNumber),
				Token:       chain.HexAddress(event.Token),
				From:        chain.HexAddress(event.From),
				To:          chain.HexAddress(event.To),
				Amount:      event.Amount.String(),
			})
		}
	}
	s.logger.Info("transfers captured", zap.Int("transfers", dataset.Len(model.KindTransfer)), zap.Int("skipped", skipped))
	return nil
}

func (s *Snapshotter) capturePools(ctx context.Context, dataset *Dataset, ranges []chain.BlockRange, blockTimes map[uint64]uint64) error {
	if len(s.opts.Factories) == 0 {
		s.logger.Info("no factory configured, pools skipped")
		return nil
	}
	topic, err := chain.PoolCreatedTopic()
	if err != nil {
		return err
	}
	for _, r := range ranges {
		logs, err := s.filterLogs(ctx, r, s.opts.Factories, topic)
		if err != nil {
			return fmt.Errorf("get pool logs %d-%d: %w", r.From, r.To, err)
		}
		for _, log := range logs {
			if log.Removed {
				continue
			}
			event, err := chain.DecodePoolCreated(log)
			if err != nil {
				s.logger.Warn("pool decode failed", zap.String("tx", log.TxHash.Hex()), zap.Error(err))
				continue
			}
			dataset.Add(model.Pool{
				Deployer:   chain.HexAddress(event.Factory),
				Address:    chain.HexAddress(event.Pool),
				QuoteToken: chain.HexAddress(event.Token1),
				Token:      chain.HexAddress(event.Token0),
				InitBlock:  int64(log.BlockNumber),
				CreatedAt:  int64(blockTimes[log.BlockNumber]),
			})
		}
	}
	s.logger.Info("pools captured", zap.Int("pools", dataset.Len(model.KindPool)))
	return nil
}

func (s *Snapshotter) filterLogs(ctx context.Context, r chain.BlockRange, addresses []common.Address, topic common.Hash) ([]types.Log, error) {
	return retry.Value(ctx, s.opts.MaxRetries, s.opts.RetryBackoff, func(ctx context.Context) ([]types.Log, error) {
		return s.client.FilterLogs(ctx, r, addresses, []common.Hash{topic})
	})
}
