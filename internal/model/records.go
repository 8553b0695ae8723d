package model

// Block is a chain block header row.
type Block struct {
	BlockNumber    int64     `json:"block_number"`
	BlockHash      string    `json:"block_hash"`
	ParentHash     string    `json:"parent_hash"`
	BlockTimestamp Timestamp `json:"block_timestamp"`
	CreatedAt      Timestamp `json:"created_at"`
	UpdatedAt      Timestamp `json:"updated_at"`
}

func (Block) Kind() Kind { return KindBlock }

func (b Block) Values() []any {
	return []any{b.BlockNumber, b.BlockHash, b.ParentHash, b.BlockTimestamp, b.CreatedAt, b.UpdatedAt}
}

// Transaction is a chain transaction row. Block is not checked against the blocks table.
type Transaction struct {
	Block     int64     `json:"block"`
	Index     int64     `json:"index"`
	Timestamp Timestamp `json:"timestamp"`
	Hash      string    `json:"hash"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Value     string    `json:"value"`
}

func (Transaction) Kind() Kind { return KindTransaction }

func (t Transaction) Values() []any {
	return []any{t.Block, t.Index, t.Timestamp, t.Hash, t.From, t.To, t.Value}
}

// Transfer is an ERC-20 token transfer row.
type Transfer struct {
	TxHash      string `json:"tx_hash"`
	BlockNumber int64  `json:"block_number"`
	Token       string `json:"token"`
	From        string `json:"from"`
	To          string `json:"to"`
	Amount      string `json:"amount"`
}

func (Transfer) Kind() Kind { return KindTransfer }

func (t Transfer) Values() []any {
	return []any{t.TxHash, t.BlockNumber, t.Token, t.From, t.To, t.Amount}
}

// Pool is a liquidity pool creation row. CreatedAt is unix seconds.
type Pool struct {
	Deployer   string `json:"deployer"`
	Address    string `json:"address"`
	QuoteToken string `json:"quote_token"`
	Token      string `json:"token"`
	InitBlock  int64  `json:"init_block"`
	CreatedAt  int64  `json:"created_at"`
}

func (Pool) Kind() Kind { return KindPool }

func (p Pool) Values() []any {
	return []any{p.Deployer, p.Address, p.QuoteToken, p.Token, p.InitBlock, p.CreatedAt}
}
