package load

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	apperrors "salesetl/internal/errors"
	"salesetl/pkg/contracts/domain"
)

// TableName is the table written by TableLoader.
const TableName = "processed_sales"

// Dialect selects the SQL flavour and database/sql driver.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ParseDialect maps a configured driver name to a Dialect
func ParseDialect(name string) (Dialect, error) {
	switch Dialect(strings.ToLower(name)) {
	case DialectSQLite:
		return DialectSQLite, nil
	case DialectPostgres:
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", name)
	}
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	return string(d)
}

func (d Dialect) placeholder(n int) string {
	if d == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

const createTableSQL = `CREATE TABLE IF NOT EXISTS processed_sales (
	sale_id TEXT PRIMARY KEY,
	sale_date DATE NOT NULL,
	customer_id TEXT NOT NULL,
	customer_name TEXT,
	product TEXT,
	quantity INTEGER NOT NULL,
	unit_price DECIMAL(10,2) NOT NULL,
	total_value DECIMAL(10,2) NOT NULL,
	category TEXT,
	region TEXT,
	customer_state TEXT,
	customer_segment TEXT,
	day_of_week TEXT,
	month TEXT,
	year INTEGER
)`

// upsertSQL builds the per-row statement: insert, or overwrite every
// column of an existing sale_id.
func upsertSQL(d Dialect) string {
	placeholders := make([]string, len(domain.Columns))
	for i := range domain.Columns {
		placeholders[i] = d.placeholder(i + 1)
	}

	updates := make([]string, 0, len(domain.Columns)-1)
	for _, col := range domain.Columns[1:] {
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (sale_id) DO UPDATE SET %s",
		TableName,
		strings.Join(domain.Columns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "))
}

// TableLoader upserts processed sales into the processed_sales table.
type TableLoader struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

// NewTableLoader wraps an open database handle
func NewTableLoader(db *sql.DB, dialect Dialect, logger *slog.Logger) *TableLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &TableLoader{
		db:      db,
		dialect: dialect,
		logger:  logger.With(slog.String("dialect", string(dialect))),
	}
}

// OpenTableLoader opens the database for driver and dsn. The driver packages
// must be registered by the caller.
func OpenTableLoader(driver, dsn string, logger *slog.Logger) (*TableLoader, error) {
	dialect, err := ParseDialect(driver)
	if err != nil {
		return nil, apperrors.NewStorageError("invalid table loader configuration", err)
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open database", err).WithContext("driver", driver)
	}
	if dialect == DialectSQLite {
		// one writer
		db.SetMaxOpenConns(1)
	}
	return NewTableLoader(db, dialect, logger), nil
}

func (l *TableLoader) Name() string { return "table" }

// Close releases the database handle
func (l *TableLoader) Close() error {
	return l.db.Close()
}

// EnsureSchema creates the table when it does not exist
func (l *TableLoader) EnsureSchema(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, createTableSQL); err != nil {
		return apperrors.NewStorageError("failed to create table", err).WithContext("table", TableName)
	}
	return nil
}

// Load upserts every sale inside one transaction. Any failure rolls the
// whole batch back.
func (l *TableLoader) Load(ctx context.Context, sales []domain.ProcessedSale) error {
	if err := l.EnsureSchema(ctx); err != nil {
		return err
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStorageError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertSQL(l.dialect))
	if err != nil {
		return apperrors.NewStorageError("failed to prepare upsert", err)
	}
	defer stmt.Close()

	for _, sale := range sales {
		if _, err := stmt.ExecContext(ctx, rowArgs(sale)...); err != nil {
			return apperrors.NewLoadError("failed to upsert sale", err).WithContext("sale_id", sale.SaleID)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStorageError("failed to commit transaction", err)
	}

	l.logger.DebugContext(ctx, "Upserted sales",
		slog.String("table", TableName),
		slog.Int("count", len(sales)))
	return nil
}

// rowArgs binds a sale in domain.Columns order. Money is bound as
// fixed-point text.
func rowArgs(s domain.ProcessedSale) []any {
	return []any{
		s.SaleID,
		s.SaleDate.Format(domain.DateLayout),
		s.CustomerID,
		s.CustomerName,
		s.Product,
		s.Quantity,
		s.UnitPrice.StringFixed(domain.MoneyPlaces),
		s.TotalValue.StringFixed(domain.MoneyPlaces),
		s.Category,
		s.Region,
		s.CustomerState,
		s.CustomerSegment,
		s.DayOfWeek,
		s.Month,
		s.Year,
	}
}
