package postgres

import "fmt"

// SchemaSQL returns the CREATE TABLE statements for the four record tables.
// Every table has a synthetic serial key and no other index.
func SchemaSQL(textTimestamps bool) []string {
	tsType := "TIMESTAMPTZ"
	if textTimestamps {
		tsType = "TEXT"
	}

	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS blocks (
			id BIGSERIAL PRIMARY KEY,
			block_number BIGINT NOT NULL,
			block_hash TEXT NOT NULL,
			parent_hash TEXT NOT NULL,
			block_timestamp %[1]s NOT NULL,
			created_at %[1]s NOT NULL,
			updated_at %[1]s NOT NULL
		)`, tsType),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			block BIGINT NOT NULL,
			"index" BIGINT NOT NULL,
			"timestamp" %s NOT NULL,
			hash TEXT NOT NULL,
			from_address TEXT NOT NULL,
			to_address TEXT NOT NULL,
			value TEXT NOT NULL
		)`, tsType),
		`CREATE TABLE IF NOT EXISTS transfers (
			id BIGSERIAL PRIMARY KEY,
			tx_hash TEXT NOT NULL,
			block_number BIGINT NOT NULL,
			token TEXT NOT NULL,
			from_address TEXT NOT NULL,
			to_address TEXT NOT NULL,
			amount TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pools (
			id BIGSERIAL PRIMARY KEY,
			deployer TEXT NOT NULL,
			address TEXT NOT NULL,
			quote_token TEXT NOT NULL,
			token TEXT NOT NULL,
			init_block BIGINT NOT NULL,
			created_at BIGINT NOT NULL
		)`,
	}
}
