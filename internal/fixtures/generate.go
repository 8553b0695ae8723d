package fixtures

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"chainBench/internal/model"
)

const (
	BlockTime = 15 * time.Second
	maxValue  = 1_000_000_000_000_000_000
)

// GenerateOptions sizes a synthetic corpus.
type GenerateOptions struct {
	Blocks            int
	TxPerBlock        int
	TransfersPerBlock int
	PoolsPerBlock     int
	StartBlock        int64
	Start             time.Time
	Seed              uint64
}

// DefaultGenerateOptions mirrors the proportions of a busy EVM chain: ten
// transactions, five transfers and two new pools per 15 second block.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Blocks:            10_000,
		TxPerBlock:        10,
		TransfersPerBlock: 5,
		PoolsPerBlock:     2,
		Start:             time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Seed:              1,
	}
}

func (o GenerateOptions) validate() error {
	if o.Blocks < 0 || o.TxPerBlock < 0 || o.TransfersPerBlock < 0 || o.PoolsPerBlock < 0 {
		return fmt.Errorf("generate counts must be non-negative")
	}
	if o.StartBlock < 0 {
		return fmt.Errorf("start block must be non-negative")
	}
	return nil
}

// Generate builds a synthetic dataset. The same options always produce the
// same records.
func Generate(opts GenerateOptions) (*Dataset, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	g := &generator{rng: rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))}
	dataset := NewDataset()
	txCount := 0

	for i := 0; i < opts.Blocks; i++ {
		number := opts.StartBlock + int64(i)
		at := model.NewTimestamp(opts.Start.Add(time.Duration(i) * BlockTime))

		dataset.Add(model.Block{
			BlockNumber:    number,
			BlockHash:      g.hash(),
			ParentHash:     g.hash(),
			BlockTimestamp: at,
			CreatedAt:      at,
			UpdatedAt:      at,
		})
		for j := 0; j < opts.TxPerBlock; j++ {
			dataset.Add(model.Transaction{
				Block:     number,
				Index:     int64(txCount % 256),
				Timestamp: at,
				Hash:      g.hash(),
				From:      g.address(),
				To:        g.address(),
				Value:     g.value(),
			})
			txCount++
		}
		for j := 0; j < opts.TransfersPerBlock; j++ {
			dataset.Add(model.Transfer{
				TxHash:      g.hash(),
				BlockNumber: number,
				Token:       g.address(),
				From:        g.address(),
				To:          g.address(),
				Amount:      g.value(),
			})
		}
		for j := 0; j < opts.PoolsPerBlock; j++ {
			dataset.Add(model.Pool{
				Deployer:   g.address(),
				Address:    g.address(),
				QuoteToken: g.address(),
				Token:      g.address(),
				InitBlock:  number,
				CreatedAt:  at.Time.Unix(),
			})
		}
	}
	return dataset, nil
}

type generator struct {
	rng *rand.Rand
	buf [common.HashLength]byte
}

func (g *generator) fill(n int) []byte {
	for i := 0; i < n; i += 8 {
		v := g.rng.Uint64()
		for j := 0; j < 8 && i+j < n; j++ {
			g.buf[i+j] = byte(v >> (8 * j))
		}
	}
	return g.buf[:n]
}

func (g *generator) hash() string {
	return common.BytesToHash(g.fill(common.HashLength)).Hex()
}

// address renders lowercase hex, without checksum casing.
func (g *generator) address() string {
	return hexutil.Encode(g.fill(common.AddressLength))
}

func (g *generator) value() string {
	return strconv.FormatUint(g.rng.Uint64N(maxValue+1), 10)
}
