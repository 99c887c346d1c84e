package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/juju/errors"
	perrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipeking636/CS525/server/innodb/basic"
	"github.com/pipeking636/CS525/server/innodb/buffer_pool"
)

// run parses args against a fresh command tree rooted at dataDir and
// returns what the command printed.
func run(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	var c cli
	parser, err := kong.New(&c, kong.Name("cs525"), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)

	full := append([]string{
		"--config", filepath.Join(dataDir, "missing.ini"),
		"--data-dir", dataDir,
		"--log-level", "error",
	}, args...)
	ctx, err := parser.Parse(full)
	require.NoError(t, err)

	var out bytes.Buffer
	a, err := newApp(&c, &out)
	require.NoError(t, err)
	err = ctx.Run(a)
	return out.String(), err
}

func TestCommandLifecycle(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "create", "people", "id:int", "name:string:8", "score:float", "ok:bool", "--key", "id")
	require.NoError(t, err)
	assert.Equal(t, "created people\n", out)

	out, err = run(t, dir, "insert", "people", "1", "ada", "9.5", "true")
	require.NoError(t, err)
	assert.Equal(t, "1:0\n", out)
	out, err = run(t, dir, "insert", "people", "2", "grace", "7", "false")
	require.NoError(t, err)
	assert.Equal(t, "1:1\n", out)

	out, err = run(t, dir, "get", "people", "1:1")
	require.NoError(t, err)
	assert.Equal(t, "2\tgrace\t7\tfalse\n", out)

	_, err = run(t, dir, "update", "people", "1:1", "2", "hopper", "8.25", "true")
	require.NoError(t, err)

	out, err = run(t, dir, "scan", "people")
	require.NoError(t, err)
	assert.Equal(t, "1:0\t1\tada\t9.5\ttrue\n1:1\t2\thopper\t8.25\ttrue\n", out)

	out, err = run(t, dir, "scan", "people", "--where", "name=hopper")
	require.NoError(t, err)
	assert.Equal(t, "1:1\t2\thopper\t8.25\ttrue\n", out)

	out, err = run(t, dir, "info", "people")
	require.NoError(t, err)
	assert.Contains(t, out, "tuples:      2\n")
	assert.Contains(t, out, "schema:      id:int name:string:8 score:float ok:bool key(id)\n")

	dump := filepath.Join(dir, "people.snappy")
	out, err = run(t, dir, "dump", "people", "-o", dump)
	require.NoError(t, err)
	assert.Equal(t, "dumped 2 records to "+dump+"\n", out)
	out, err = run(t, dir, "cat-dump", dump)
	require.NoError(t, err)
	assert.Equal(t, "rid\tid\tname\tscore\tok\n1:0\t1\tada\t9.5\ttrue\n1:1\t2\thopper\t8.25\ttrue\n", out)

	_, err = run(t, dir, "delete", "people", "1:0")
	require.NoError(t, err)
	_, err = run(t, dir, "get", "people", "1:0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get 1:0 from people")

	out, err = run(t, dir, "drop", "people")
	require.NoError(t, err)
	assert.Equal(t, "dropped people\n", out)
	_, err = run(t, dir, "info", "people")
	assert.Error(t, err)
}

func TestCommandErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "create", "t", "a:int")
	require.NoError(t, err)

	_, err = run(t, dir, "insert", "t", "1", "2")
	assert.Error(t, err)
	_, err = run(t, dir, "insert", "t", "x")
	assert.Error(t, err)
	_, err = run(t, dir, "get", "t", "nope")
	assert.Error(t, err)
	_, err = run(t, dir, "scan", "t", "--where", "b=1")
	assert.Error(t, err)

	// a page past the end of the table is reported as not found
	_, err = run(t, dir, "get", "t", "9:0")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err), errors.ErrorStack(err))
	assert.Contains(t, err.Error(), "get 9:0 from t")

	out, err := run(t, dir, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "cs525 "))
}

func TestParseSchema(t *testing.T) {
	schema, err := parseSchema([]string{"a:int", "b:string:4", "c:bool"}, []string{"b"})
	require.NoError(t, err)
	want, err := basic.NewSchema(
		[]string{"a", "b", "c"},
		[]basic.DataType{basic.DT_INT, basic.DT_STRING, basic.DT_BOOL},
		[]int{0, 4, 0}, []int{1})
	require.NoError(t, err)
	assert.True(t, want.Equal(schema))

	for _, bad := range [][]string{
		{"a"},
		{":int"},
		{"a:blob"},
		{"a:string"},
		{"a:int:4"},
		{"a:string:0"},
		{"a:int", "a:bool"},
	} {
		_, err := parseSchema(bad, nil)
		assert.Error(t, err, "%v", bad)
	}
	_, err = parseSchema([]string{"a:int"}, []string{"z"})
	assert.Error(t, err)
}

func TestParseRID(t *testing.T) {
	rid, err := parseRID("3:7")
	require.NoError(t, err)
	assert.Equal(t, basic.RID{Page: 3, Slot: 7}, rid)

	for _, bad := range []string{"", "3", "a:1", "1:b"} {
		_, err := parseRID(bad)
		assert.Error(t, err, bad)
	}
}

func TestClassify(t *testing.T) {
	assert.Nil(t, classify(nil))

	exhausted := buffer_pool.NewError("pin", perrors.Wrap(basic.ErrNoFreeFrame, "all 2 frames pinned"))
	assert.True(t, errors.IsQuotaLimitExceeded(classify(exhausted)))

	missing := perrors.Wrapf(basic.ErrPageNotFound, "rid %s", basic.RID{Page: 4, Slot: 0})
	err := errors.Annotate(classify(missing), "get")
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, "get: rid 4:0: page not found", err.Error())

	io := buffer_pool.NewError("pin", basic.ErrReadFailed)
	assert.Contains(t, classify(io).Error(), "page store I/O")

	other := perrors.Wrap(basic.ErrTypeMismatch, "attr")
	assert.Equal(t, other, classify(other))
}
