package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cartec/catalog/internal/core/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS cars (
	id         VARCHAR(36)  NOT NULL PRIMARY KEY,
	name       VARCHAR(255) NOT NULL,
	price      BIGINT       NOT NULL,
	model      VARCHAR(64)  NOT NULL,
	fuel_type  VARCHAR(16)  NOT NULL,
	image_url  TEXT         NOT NULL,
	created_at DATETIME(3)  NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	INDEX idx_cars_created_at (created_at)
)`

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// Migrate creates the cars table if it does not exist.
func (m *MySQLAdapter) Migrate(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create cars table: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) ListCars(ctx context.Context) ([]domain.Car, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, name, price, model, fuel_type, image_url, created_at
		FROM cars ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query cars: %w", err)
	}
	defer rows.Close()

	var cars []domain.Car
	for rows.Next() {
		var c domain.Car
		if err := rows.Scan(&c.ID, &c.Name, &c.Price, &c.Model, &c.FuelType, &c.ImageURL, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan car: %w", err)
		}
		cars = append(cars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cars: %w", err)
	}

	return cars, nil
}

func (m *MySQLAdapter) GetCar(ctx context.Context, id string) (*domain.Car, error) {
	var c domain.Car
	err := m.db.QueryRowContext(ctx, `
		SELECT id, name, price, model, fuel_type, image_url, created_at
		FROM cars WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Price, &c.Model, &c.FuelType, &c.ImageURL, &c.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query car: %w", err)
	}

	return &c, nil
}

func (m *MySQLAdapter) CreateCar(ctx context.Context, car domain.Car) (string, error) {
	id := uuid.NewString()

	_, err := m.db.ExecContext(ctx, `
		INSERT INTO cars (id, name, price, model, fuel_type, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP(3))`,
		id, car.Name, car.Price, car.Model, string(car.FuelType), car.ImageURL,
	)
	if err != nil {
		return "", fmt.Errorf("insert car: %w", err)
	}

	return id, nil
}

func (m *MySQLAdapter) DeleteCar(ctx context.Context, id string) error {
	result, err := m.db.ExecContext(ctx, `DELETE FROM cars WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete car: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Seed inserts cars with their own ids and timestamps, skipping ids that
// already exist.
func (m *MySQLAdapter) Seed(ctx context.Context, cars []domain.Car) (int, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	for _, c := range cars {
		result, err := tx.ExecContext(ctx, `
			INSERT IGNORE INTO cars (id, name, price, model, fuel_type, image_url, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.Price, c.Model, string(c.FuelType), c.ImageURL, c.CreatedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("insert car %s: %w", c.ID, err)
		}
		if n, _ := result.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}
