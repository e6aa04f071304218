package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/totegamma/i18n-store/internal/domain"
	"github.com/totegamma/i18n-store/internal/infra/database/models"
)

type ExportRepository struct {
	db *gorm.DB
}

func NewExportRepository(db *gorm.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

// Scan walks every translation in id order over a database cursor, reading
// only the exported columns. Returning an error from fn stops the scan.
func (r *ExportRepository) Scan(ctx context.Context, fn func(domain.ExportRow) error) error {
	rows, err := r.db.WithContext(ctx).
		Model(&models.Translation{}).
		Select([]string{"locale", "group", "key", "value"}).
		Order("id").
		Rows()
	if err != nil {
		return errors.Wrap(err, "failed to query translations")
	}
	defer rows.Close()

	for rows.Next() {
		var row domain.ExportRow
		if err := rows.Scan(&row.Locale, &row.Group, &row.Key, &row.Value); err != nil {
			return errors.Wrap(err, "failed to scan translation")
		}

		if err := fn(row); err != nil {
			return err
		}
	}

	return errors.Wrap(rows.Err(), "failed to iterate translations")
}
