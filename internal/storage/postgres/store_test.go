package postgres

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chainBench/internal/model"
	"chainBench/internal/storage"
)

func TestInsertSQLQuotesColumns(t *testing.T) {
	got := insertSQL(model.KindTransaction)
	want := `INSERT INTO "transactions" ("block", "index", "timestamp", "hash", "from_address", "to_address", "value") VALUES ($1, $2, $3, $4, $5, $6, $7)`
	require.Equal(t, want, got)
}

func TestEncodeValuesTimestampModes(t *testing.T) {
	at := time.Date(2023, 1, 1, 0, 0, 15, 0, time.UTC)
	block := model.Block{
		BlockNumber:    1,
		BlockTimestamp: model.ParseTimestamp("2023-01-01T00:00:15"),
		CreatedAt:      model.ParseTimestamp("not a time"),
		UpdatedAt:      model.NewTimestamp(at),
	}

	instants := encodeValues(block, false)
	require.Equal(t, int64(1), instants[0])
	require.Equal(t, at, instants[3])
	require.Equal(t, "not a time", instants[4])
	require.Equal(t, at, instants[5])

	text := encodeValues(block, true)
	require.Equal(t, "2023-01-01T00:00:15", text[3])
	require.Equal(t, "not a time", text[4])
	require.Equal(t, "2023-01-01T00:00:15", text[5])
}

func TestSchemaSQLTimestampType(t *testing.T) {
	for _, stmt := range SchemaSQL(true) {
		require.NotContains(t, stmt, "TIMESTAMPTZ")
	}
	joined := strings.Join(SchemaSQL(false), "\n")
	require.Contains(t, joined, "block_timestamp TIMESTAMPTZ")
	require.Len(t, SchemaSQL(false), len(model.Kinds))
}

// The integration tests truncate the benchmark tables of the target database.
func integrationDSN(t *testing.T) string {
	dsn := os.Getenv("BENCH_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("BENCH_TEST_DATABASE_URL not set")
	}
	return dsn
}

func TestStoresAgainstPostgres(t *testing.T) {
	dsn := integrationDSN(t)
	ctx := context.Background()

	rowStore, err := NewStore(ctx, dsn, Options{})
	require.NoError(t, err)
	defer rowStore.Close()
	copyStore, err := NewCopyStore(ctx, dsn, Options{})
	require.NoError(t, err)
	defer copyStore.Close()

	require.NoError(t, rowStore.CreateSchema(ctx))

	now := time.Now().UTC()
	blocks := []model.Record{
		model.Block{BlockNumber: 1, BlockHash: "0x01", ParentHash: "0x00", BlockTimestamp: model.NewTimestamp(now.Add(-30 * time.Minute)), CreatedAt: model.NewTimestamp(now), UpdatedAt: model.NewTimestamp(now)},
		model.Block{BlockNumber: 2, BlockHash: "0x02", ParentHash: "0x01", BlockTimestamp: model.NewTimestamp(now.Add(-48 * time.Hour)), CreatedAt: model.NewTimestamp(now), UpdatedAt: model.NewTimestamp(now)},
	}

	for name, store := range map[string]storage.Store{"insert": rowStore, "copy": copyStore} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Reset(ctx, model.Kinds...))

			sink, err := store.BulkChannel(ctx, model.KindBlock)
			require.NoError(t, err)
			for _, rec := range blocks {
				require.NoError(t, sink.Write(ctx, rec))
			}
			n, err := sink.Commit(ctx)
			require.NoError(t, err)
			require.EqualValues(t, len(blocks), n)

			require.NoError(t, store.Execute(ctx, model.Pool{Deployer: "0xd", Address: "0xa", QuoteToken: "0xq", Token: "0xt", InitBlock: 1, CreatedAt: now.Unix()}))

			found, err := store.QueryRandomRow(ctx, model.KindPool)
			require.NoError(t, err)
			require.True(t, found)

			found, err = store.QueryRandomRow(ctx, model.KindTransfer)
			require.NoError(t, err)
			require.False(t, found)

			rows, err := store.QueryRange(ctx, model.KindBlock, now.Add(-time.Hour))
			require.NoError(t, err)
			require.Equal(t, 1, rows)
		})
	}
}

func TestCopySinkAbortDiscardsRows(t *testing.T) {
	dsn := integrationDSN(t)
	ctx := context.Background()

	store, err := NewCopyStore(ctx, dsn, Options{})
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.CreateSchema(ctx))
	require.NoError(t, store.Reset(ctx, model.KindTransfer))

	sink, err := store.BulkChannel(ctx, model.KindTransfer)
	require.NoError(t, err)
	require.NoError(t, sink.Write(ctx, model.Transfer{TxHash: "0x1", BlockNumber: 1, Token: "0xt", From: "0xf", To: "0xt", Amount: "1"}))
	sink.Abort()

	_, err = sink.Commit(ctx)
	require.ErrorIs(t, err, storage.ErrClosed)

	found, err := store.QueryRandomRow(ctx, model.KindTransfer)
	require.NoError(t, err)
	require.False(t, found)
}
