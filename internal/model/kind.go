package model

import (
	"fmt"
	"strings"
)

// Kind identifies one of the four record collections and its table.
type Kind int

const (
	KindBlock Kind = iota
	KindTransaction
	KindTransfer
	KindPool
)

// Kinds lists every record kind in load order.
var Kinds = []Kind{KindBlock, KindTransaction, KindTransfer, KindPool}

var kindTables = [...]string{
	KindBlock:       "blocks",
	KindTransaction: "transactions",
	KindTransfer:    "transfers",
	KindPool:        "pools",
}

var kindColumns = [...][]string{
	KindBlock:       {"block_number", "block_hash", "parent_hash", "block_timestamp", "created_at", "updated_at"},
	KindTransaction: {"block", "index", "timestamp", "hash", "from_address", "to_address", "value"},
	KindTransfer:    {"tx_hash", "block_number", "token", "from_address", "to_address", "amount"},
	KindPool:        {"deployer", "address", "quote_token", "token", "init_block", "created_at"},
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= KindBlock && k <= KindPool
}

// Table returns the table name backing the kind.
func (k Kind) Table() string {
	if !k.Valid() {
		return ""
	}
	return kindTables[k]
}

// Columns returns the insert column list, in Values order. The synthetic id is not included.
func (k Kind) Columns() []string {
	if !k.Valid() {
		return nil
	}
	return kindColumns[k]
}

// TimestampColumn returns the column range scans filter on, or "" when the kind has none.
func (k Kind) TimestampColumn() string {
	switch k {
	case KindBlock:
		return "block_timestamp"
	case KindTransaction:
		return "timestamp"
	default:
		return ""
	}
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindTables[k]
}

// ParseKind resolves a table name or singular alias to a Kind.
func ParseKind(input string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "blocks", "block":
		return KindBlock, nil
	case "transactions", "transaction", "tx", "txs":
		return KindTransaction, nil
	case "transfers", "transfer":
		return KindTransfer, nil
	case "pools", "pool":
		return KindPool, nil
	default:
		return 0, fmt.Errorf("unknown record kind: %s", input)
	}
}

// Record is a single row of one of the four collections.
type Record interface {
	Kind() Kind
	Values() []any
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
