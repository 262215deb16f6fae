package mysql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ccerddap/internal/storage"
)

func TestBuildCreateTableSQL(t *testing.T) {
	got, err := BuildCreateTableSQL(storage.TableDef{
		FQN: "audit.results",
		Columns: []storage.ColumnDef{
			{Name: "dataset_id", Type: storage.TypeKey, PrimaryKey: true},
			{Name: "sample_bytes", Type: storage.TypeBigInt},
			{Name: "passed", Type: storage.TypeBool},
			{Name: "checked_at", Type: storage.TypeTimestamp},
			{Name: "error", Type: storage.TypeText, Nullable: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS `audit`.`results` (\n"+
		"  `dataset_id` VARCHAR(255) NOT NULL,\n"+
		"  `sample_bytes` BIGINT NOT NULL,\n"+
		"  `passed` BOOLEAN NOT NULL,\n"+
		"  `checked_at` DATETIME(6) NOT NULL,\n"+
		"  `error` TEXT,\n"+
		"  PRIMARY KEY (`dataset_id`)\n);", got)
}

func TestInsertSQL(t *testing.T) {
	assert.Equal(t,
		"INSERT INTO `results` (`a`,`b`) VALUES (?,?),(?,?),(?,?)",
		insertSQL("results", []string{"a", "b"}, 3))
}

func TestCopyFrom_Validation(t *testing.T) {
	r := &Repository{cfg: Config{Table: "results"}}

	_, err := r.CopyFrom(context.Background(), nil, [][]any{{1}})
	assert.Error(t, err)

	n, err := r.CopyFrom(context.Background(), []string{"a"}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = r.CopyFrom(context.Background(), []string{"a", "b"}, [][]any{{1}})
	assert.ErrorContains(t, err, "row 0 length 1 != columns length 2")
}

func TestNewRepository_InvalidDSN(t *testing.T) {
	_, _, err := NewRepository(context.Background(), Config{DSN: "not a dsn"})
	assert.ErrorContains(t, err, "mysql dsn")
}

func TestFactory_UsesHook(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	closed := false
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		return &Repository{cfg: cfg}, func() { closed = true }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{Kind: "mysql", DSN: "u@tcp(h)/db", Table: "t"})
	require.NoError(t, err)
	repo.Close()
	assert.True(t, closed)
}
