package chain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	tokenA  = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	tokenB  = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	holder  = common.HexToAddress("0x00000000000000000000000000000000000000cc")
	factory = common.HexToAddress("0x1F98431c8aD98523631AE4a59f267346ea31F984")
	pool    = common.HexToAddress("0x00000000000000000000000000000000000000dd")
)

func TestDecodeTransfer(t *testing.T) {
	topic, err := TransferTopic()
	if err != nil {
		t.Fatalf("topic: %v", err)
	}
	log := types.Log{
		Address: tokenA,
		Topics:  []common.Hash{topic, common.BytesToHash(holder.Bytes()), common.BytesToHash(tokenB.Bytes())},
		Data:    common.LeftPadBytes(big.NewInt(1234).Bytes(), 32),
	}

	got, err := DecodeTransfer(log)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Token != tokenA || got.From != holder || got.To != tokenB {
		t.Fatalf("unexpected addresses: %+v", got)
	}
	if got.Amount.Int64() != 1234 {
		t.Fatalf("amount = %s, want 1234", got.Amount)
	}
}

func TestDecodeTransferRejectsNFT(t *testing.T) {
	topic, err := TransferTopic()
	if err != nil {
		t.Fatalf("topic: %v", err)
	}
	log := types.Log{
		Address: tokenA,
		Topics:  []common.Hash{topic, {}, {}, common.BigToHash(big.NewInt(7))},
	}
	if _, err := DecodeTransfer(log); err == nil {
		t.Fatalf("expected error for four-topic transfer")
	}
}

func TestDecodePoolCreated(t *testing.T) {
	parsed, err := EventsABI()
	if err != nil {
		t.Fatalf("abi: %v", err)
	}
	event := parsed.Events["PoolCreated"]
	data, err := event.Inputs.NonIndexed().Pack(big.NewInt(60), pool)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	log := types.Log{
		Address: factory,
		Topics: []common.Hash{
			event.ID,
			common.BytesToHash(tokenA.Bytes()),
			common.BytesToHash(tokenB.Bytes()),
			common.BigToHash(big.NewInt(3000)),
		},
		Data: data,
	}

	got, err := DecodePoolCreated(log)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := PoolCreatedEvent{Factory: factory, Token0: tokenA, Token1: tokenB, Fee: 3000, Pool: pool}
	if got != want {
		t.Fatalf("event mismatch: %+v != %+v", got, want)
	}
}
