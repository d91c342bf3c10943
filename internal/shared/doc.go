// Package shared holds helpers used by more than one pipeline package.
//
// The testutil subpackage provides demo fixtures (the five sales and four
// customers shipped as sample input) and a buffered slog handler for
// asserting on log output:
//
//	logger, logs := testutil.NewTestLogger(t)
//	tr := transform.New(domain.DateLayout, logger)
//	tr.Transform(ctx, testutil.RawSales(), testutil.Customers())
//	testutil.AssertLogContains(t, logs, slog.LevelWarn, "Rejected sale")
package shared
