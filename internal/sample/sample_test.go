package sample_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesetl/internal/config"
	"salesetl/internal/extract"
	"salesetl/internal/sample"
	"salesetl/internal/shared/testutil"
)

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	cfg := config.Default()
	cfg.Pipeline.InputDir = filepath.Join(t.TempDir(), "input")
	paths, err := cfg.Paths()
	require.NoError(t, err)
	return paths
}

func TestEnsureInputs_CreatesReadableFiles(t *testing.T) {
	paths := testPaths(t)
	logger, logs := testutil.NewTestLogger(t)

	created, err := sample.EnsureInputs(paths, logger)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, paths.InputsExist())
	assert.True(t, logs.ContainsMessage("Sample data created"))

	sales, err := extract.NewSalesExtractor(paths.SalesFile, 0, nil).ReadSales(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testutil.RawSales(), sales)

	customers, err := extract.NewCustomersExtractor(paths.CustomersFile, nil).ReadCustomers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testutil.Customers(), customers)
}

func TestEnsureInputs_KeepsExistingInputs(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, os.MkdirAll(paths.InputDir, 0755))
	require.NoError(t, os.WriteFile(paths.SalesFile, []byte("mine"), 0644))
	require.NoError(t, os.WriteFile(paths.CustomersFile, []byte("[]"), 0644))

	created, err := sample.EnsureInputs(paths, nil)
	require.NoError(t, err)
	assert.False(t, created)

	content, err := os.ReadFile(paths.SalesFile)
	require.NoError(t, err)
	assert.Equal(t, "mine", string(content))
}

func TestEnsureInputs_ReplacesLoneInput(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, os.MkdirAll(paths.InputDir, 0755))
	require.NoError(t, os.WriteFile(paths.SalesFile, []byte("stale"), 0644))

	created, err := sample.EnsureInputs(paths, nil)
	require.NoError(t, err)
	assert.True(t, created)

	sales, err := extract.NewSalesExtractor(paths.SalesFile, 0, nil).ReadSales(context.Background())
	require.NoError(t, err)
	assert.Len(t, sales, 5)
}

func TestWriteCustomers_KeepsNonASCII(t *testing.T) {
	path := filepath.Join(t.TempDir(), "customers.json")
	require.NoError(t, sample.WriteCustomers(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"city": "São Paulo"`)
	assert.Contains(t, string(content), "\n  {\n    \"customer_id\": \"C001\",")
}
