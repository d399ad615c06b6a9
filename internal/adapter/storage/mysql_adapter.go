package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/rl1809/sofa-configurator/internal/core/catalog"
	"github.com/rl1809/sofa-configurator/internal/core/domain"
)

//go:embed schema.sql
var schemaSQL string

// ErrEmptyCatalog is returned by Load when no rows have been stored yet.
var ErrEmptyCatalog = errors.New("catalog tables are empty")

// MySQLAdapter reads the catalog tables. Allowed colors are stored as a
// comma-separated column.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Seed replaces the stored tables with the contents of c.
func (m *MySQLAdapter) Seed(ctx context.Context, c *catalog.Catalog) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"materials", "sizes", "addons"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, mat := range c.Materials() {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO materials (name, position, price_multiplier, allowed_colors, max_width_cm, description, days_in_stock, stock_level)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			mat.Name, i, mat.PriceMultiplier, strings.Join(mat.AllowedColors, ","), mat.MaxWidthCm,
			mat.Description, mat.DaysInStock, string(mat.StockLevel),
		)
		if err != nil {
			return fmt.Errorf("insert material %s: %w", mat.Name, err)
		}
	}

	for i, s := range c.Sizes() {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sizes (name, position, seats, width_cm, price_multiplier, description)
			VALUES (?, ?, ?, ?, ?, ?)`,
			s.Name, i, s.Seats, s.WidthCm, s.PriceMultiplier, s.Description,
		)
		if err != nil {
			return fmt.Errorf("insert size %s: %w", s.Name, err)
		}
	}

	for i, a := range c.Addons() {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO addons (name, position, price, description)
			VALUES (?, ?, ?, ?)`,
			a.Name, i, a.Price, a.Description,
		)
		if err != nil {
			return fmt.Errorf("insert addon %s: %w", a.Name, err)
		}
	}

	return tx.Commit()
}

func (m *MySQLAdapter) Load(ctx context.Context) (*catalog.Catalog, error) {
	materials, err := m.loadMaterials(ctx)
	if err != nil {
		return nil, err
	}
	sizes, err := m.loadSizes(ctx)
	if err != nil {
		return nil, err
	}
	addons, err := m.loadAddons(ctx)
	if err != nil {
		return nil, err
	}
	if len(materials) == 0 && len(sizes) == 0 && len(addons) == 0 {
		return nil, ErrEmptyCatalog
	}

	c, err := catalog.New(materials, sizes, addons)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	return c, nil
}

func (m *MySQLAdapter) loadMaterials(ctx context.Context) ([]domain.Material, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT name, price_multiplier, allowed_colors, max_width_cm, description, days_in_stock, stock_level
		FROM materials ORDER BY position, name`)
	if err != nil {
		return nil, fmt.Errorf("query materials: %w", err)
	}
	defer rows.Close()

	var out []domain.Material
	for rows.Next() {
		var (
			mat    domain.Material
			colors string
			level  string
		)
		if err := rows.Scan(&mat.Name, &mat.PriceMultiplier, &colors, &mat.MaxWidthCm, &mat.Description, &mat.DaysInStock, &level); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		mat.AllowedColors = splitColors(colors)
		mat.StockLevel = domain.StockLevel(level)
		out = append(out, mat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate materials: %w", err)
	}
	return out, nil
}

func (m *MySQLAdapter) loadSizes(ctx context.Context) ([]domain.Size, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT name, seats, width_cm, price_multiplier, description
		FROM sizes ORDER BY position, name`)
	if err != nil {
		return nil, fmt.Errorf("query sizes: %w", err)
	}
	defer rows.Close()

	var out []domain.Size
	for rows.Next() {
		var s domain.Size
		if err := rows.Scan(&s.Name, &s.Seats, &s.WidthCm, &s.PriceMultiplier, &s.Description); err != nil {
			return nil, fmt.Errorf("scan size: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sizes: %w", err)
	}
	return out, nil
}

func (m *MySQLAdapter) loadAddons(ctx context.Context) ([]domain.Addon, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT name, price, description
		FROM addons ORDER BY position, name`)
	if err != nil {
		return nil, fmt.Errorf("query addons: %w", err)
	}
	defer rows.Close()

	var out []domain.Addon
	for rows.Next() {
		var a domain.Addon
		if err := rows.Scan(&a.Name, &a.Price, &a.Description); err != nil {
			return nil, fmt.Errorf("scan addon: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate addons: %w", err)
	}
	return out, nil
}

func splitColors(raw string) []string {
	var out []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
