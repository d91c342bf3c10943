package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesetl/internal/config"
	apperrors "salesetl/internal/errors"
)

func loaderNames(r *Runner) []string {
	names := make([]string, 0, len(r.loaders))
	for _, l := range r.loaders {
		names = append(names, l.Name())
	}
	return names
}

func TestBuild_Defaults(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Pipeline.InputDir = filepath.Join(base, "in")
	cfg.Output.OutputDir = filepath.Join(base, "out")

	runner, closeFn, err := Build(context.Background(), cfg, nil, nil, nil)
	require.NoError(t, err)
	defer closeFn()

	assert.Equal(t, []string{"table", "csv", "json"}, loaderNames(runner))
	assert.Nil(t, runner.lock)
	assert.DirExists(t, filepath.Join(base, "in"))
	assert.DirExists(t, filepath.Join(base, "out"))

	report, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.FailedLoaders())
	assert.FileExists(t, filepath.Join(base, "out", "processed_sales.db"))
	require.NoError(t, closeFn())
}

func TestBuild_OptionalLoadersAndLock(t *testing.T) {
	mr := miniredis.RunT(t)
	base := t.TempDir()
	cfg := config.Default()
	cfg.Pipeline.InputDir = filepath.Join(base, "in")
	cfg.Output.OutputDir = filepath.Join(base, "out")
	cfg.Output.DBDriver = ""
	cfg.Output.XLSXFile = "processed_sales.xlsx"
	cfg.Lock.RedisAddr = mr.Addr()

	runner, closeFn, err := Build(context.Background(), cfg, nil, nil, nil)
	require.NoError(t, err)
	defer closeFn()

	assert.Equal(t, []string{"csv", "json", "xlsx"}, loaderNames(runner))
	assert.NotNil(t, runner.lock)

	_, err = runner.Run(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(base, "out", "processed_sales.xlsx"))
}

func TestBuild_UnreachableRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := config.Default()
	cfg.Pipeline.InputDir = filepath.Join(t.TempDir(), "in")
	cfg.Output.OutputDir = filepath.Join(t.TempDir(), "out")
	cfg.Lock.RedisAddr = addr

	_, closeFn, err := Build(context.Background(), cfg, nil, nil, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeLock))
	assert.NoError(t, closeFn())
}
