package chain

import (
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const eventsABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "from", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "to", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "value", "type": "uint256"}
    ],
    "name": "Transfer",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "token0", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "token1", "type": "address"},
      {"indexed": true, "internalType": "uint24", "name": "fee", "type": "uint24"},
      {"indexed": false, "internalType": "int24", "name": "tickSpacing", "type": "int24"},
      {"indexed": false, "internalType": "address", "name": "pool", "type": "address"}
    ],
    "name": "PoolCreated",
    "type": "event"
  }
]`

var (
	eventsABI     abi.ABI
	eventsABIOnce sync.Once
	eventsABIErr  error
)

// EventsABI returns the parsed ERC-20 Transfer and V3 factory PoolCreated events.
func EventsABI() (abi.ABI, error) {
	eventsABIOnce.Do(func() {
		eventsABI, eventsABIErr = abi.JSON(strings.NewReader(eventsABIJSON))
	})
	return eventsABI, eventsABIErr
}

// TransferTopic is topic0 of the ERC-20 Transfer event.
func TransferTopic() (common.Hash, error) {
	parsed, err := EventsABI()
	if err != nil {
		return common.Hash{}, err
	}
	return parsed.Events["Transfer"].ID, nil
}

// PoolCreatedTopic is topic0 of the V3 factory PoolCreated event.
func PoolCreatedTopic() (common.Hash, error) {
	parsed, err := EventsABI()
	if err != nil {
		return common.Hash{}, err
	}
	return parsed.Events["PoolCreated"].ID, nil
}

// TransferEvent is a decoded ERC-20 Transfer log.
type TransferEvent struct {
	Token  common.Address
	From   common.Address
	To     common.Address
	Amount *big.Int
}

// DecodeTransfer decodes an ERC-20 Transfer. ERC-721 transfers share the
// topic0 but index the token id, and are rejected.
func DecodeTransfer(log types.Log) (TransferEvent, error) {
	if len(log.Topics) != 3 {
		return TransferEvent{}, fmt.Errorf("transfer log has %d topics", len(log.Topics))
	}
	parsed, err := EventsABI()
	if err != nil {
		return TransferEvent{}, err
	}
	if log.Topics[0] != parsed.Events["Transfer"].ID {
		return TransferEvent{}, fmt.Errorf("unexpected topic0: %s", log.Topics[0].Hex())
	}

	values, err := parsed.Unpack("Transfer", log.Data)
	if err != nil {
		return TransferEvent{}, fmt.Errorf("unpack transfer: %w", err)
	}
	amount, ok := values[0].(*big.Int)
	if !ok {
		return TransferEvent{}, fmt.Errorf("unexpected transfer value type %T", values[0])
	}

	return TransferEvent{
		Token:  log.Address,
		From:   common.BytesToAddress(log.Topics[1].Bytes()),
		To:     common.BytesToAddress(log.Topics[2].Bytes()),
		Amount: amount,
	}, nil
}

// PoolCreatedEvent is a decoded V3 factory PoolCreated log.
type PoolCreatedEvent struct {
	Factory common.Address
	Token0  common.Address
	Token1  common.Address
	Fee     uint32
	Pool    common.Address
}

func DecodePoolCreated(log types.Log) (PoolCreatedEvent, error) {
	if len(log.Topics) != 4 {
		return PoolCreatedEvent{}, fmt.Errorf("pool created log has %d topics", len(log.Topics))
	}
	parsed, err := EventsABI()
	if err != nil {
		return PoolCreatedEvent{}, err
	}
	if log.Topics[0] != parsed.Events["PoolCreated"].ID {
		return PoolCreatedEvent{}, fmt.Errorf("unexpected topic0: %s", log.Topics[0].Hex())
	}

	values, err := parsed.Unpack("PoolCreated", log.Data)
	if err != nil {
		return PoolCreatedEvent{}, fmt.Errorf("unpack pool created: %w", err)
	}
	if len(values) != 2 {
		return PoolCreatedEvent{}, fmt.Errorf("unexpected pool created values: %d", len(values))
	}
	pool, ok := values[1].(common.Address)
	if !ok {
		return PoolCreatedEvent{}, fmt.Errorf("unexpected pool type %T", values[1])
	}

	return PoolCreatedEvent{
		Factory: log.Address,
		Token0:  common.BytesToAddress(log.Topics[1].Bytes()),
		Token1:  common.BytesToAddress(log.Topics[2].Bytes()),
		Fee:     uint32(new(big.Int).SetBytes(log.Topics[3].Bytes()).Uint64()),
		Pool:    pool,
	}, nil
}
