package migrations

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	sql := `-- header
CREATE TABLE a (x UInt8) ENGINE = Memory;

-- second
CREATE TABLE b (y String) ENGINE = Memory;
`
	assert.Equal(t, []string{
		"CREATE TABLE a (x UInt8) ENGINE = Memory",
		"CREATE TABLE b (y String) ENGINE = Memory",
	}, splitStatements(sql))
}

func TestValidateNoSemicolonInStrings(t *testing.T) {
	assert.NoError(t, validateNoSemicolonInStrings(`SELECT 'it''s'; SELECT 1;`))
	assert.Error(t, validateNoSemicolonInStrings(`SELECT 'a;b';`))
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://default@localhost:9000/zenith")
	require.NoError(t, err)
	assert.Equal(t, "zenith", db)

	_, err = databaseFromDSN("clickhouse://default@localhost:9000")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"pg/002_second.sql": {Data: []byte("CREATE TABLE b (y TEXT);\nCREATE INDEX b_y ON b (y);\n")},
		"pg/001_first.sql":  {Data: []byte("-- only a comment\nCREATE TABLE a (x INT);\n")},
		"pg/003_empty.sql":  {Data: []byte("-- nothing yet\n")},
		"pg/README.md":      {Data: []byte("not sql")},
	}

	got, err := load(fsys, "pg")
	require.NoError(t, err)
	assert.Equal(t, []Migration{
		{Name: "001_first.sql", Statements: []string{"CREATE TABLE a (x INT)"}},
		{Name: "002_second.sql", Statements: []string{"CREATE TABLE b (y TEXT)", "CREATE INDEX b_y ON b (y)"}},
	}, got)
}

func TestLoad_RejectsSemicolonInString(t *testing.T) {
	fsys := fstest.MapFS{
		"pg/001_bad.sql": {Data: []byte("INSERT INTO a VALUES ('x;y');\n")},
	}

	_, err := load(fsys, "pg")
	assert.ErrorContains(t, err, "001_bad.sql")
}

func TestEmbeddedMigrations(t *testing.T) {
	pg, err := Postgres()
	require.NoError(t, err)
	require.Len(t, pg, 1)
	assert.Equal(t, "001_account_group_preferences.sql", pg[0].Name)
	assert.Contains(t, pg[0].Statements[0], "account_group_preferences")

	ch, err := Clickhouse()
	require.NoError(t, err)
	require.Len(t, ch, 1)
	assert.Equal(t, "001_order_audit.sql", ch[0].Name)
	assert.Contains(t, ch[0].Statements[0], "order_audit")
}
