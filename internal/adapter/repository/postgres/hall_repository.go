package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/satrio28/hallbook/internal/core/domain"
)

type HallRepository struct {
	db *sql.DB
}

func NewHallRepository(db *sql.DB) *HallRepository {
	return &HallRepository{db: db}
}

func (r *HallRepository) GetByID(ctx context.Context, hallID uuid.UUID) (*domain.Hall, error) {
	query := `SELECT id, manager_id, name, capacity FROM halls WHERE id = $1`

	var h domain.Hall
	err := r.db.QueryRowContext(ctx, query, hallID).Scan(&h.ID, &h.ManagerID, &h.Name, &h.Capacity)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrHallNotFound
		}
		return nil, err
	}

	return &h, nil
}
