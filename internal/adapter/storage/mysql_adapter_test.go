package storage

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/sofa-configurator/internal/core/catalog"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/configurator?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	return db
}

func TestSeedAndLoad(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	require.NoError(t, adapter.EnsureSchema(ctx))
	require.NoError(t, adapter.Seed(ctx, catalog.Default()))

	got, err := adapter.Load(ctx)
	require.NoError(t, err)

	want := catalog.Default()
	assert.Equal(t, want.MaterialKeys(), got.MaterialKeys())
	assert.Equal(t, want.SizeKeys(), got.SizeKeys())
	assert.Equal(t, want.AddonKeys(), got.AddonKeys())
	assert.Equal(t, want.Materials(), got.Materials())
	assert.Equal(t, want.Version(), got.Version())
}

func TestLoad_RejectsInvalidRows(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	require.NoError(t, adapter.EnsureSchema(ctx))
	require.NoError(t, adapter.Seed(ctx, catalog.Default()))
	defer adapter.Seed(ctx, catalog.Default())

	_, err := db.ExecContext(ctx, `UPDATE materials SET stock_level = 'plenty' WHERE name = 'fabric'`)
	require.NoError(t, err)

	_, err = adapter.Load(ctx)
	assert.ErrorIs(t, err, catalog.ErrInvalidCatalog)
}

func TestLoad_EmptyTables(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	require.NoError(t, adapter.EnsureSchema(ctx))
	defer adapter.Seed(ctx, catalog.Default())

	for _, table := range []string{"materials", "sizes", "addons"} {
		_, err := db.ExecContext(ctx, "DELETE FROM "+table)
		require.NoError(t, err)
	}

	_, err := adapter.Load(ctx)
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestSplitColors(t *testing.T) {
	assert.Equal(t, []string{"black", "brown", "beige"}, splitColors("black, brown,beige,"))
	assert.Nil(t, splitColors(""))
}
