package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/i18n-store/internal/domain"
	"github.com/totegamma/i18n-store/internal/infra/database/models"
)

const (
	batchSize = 500
)

type TranslationRepository struct {
	db *gorm.DB
}

func NewTranslationRepository(db *gorm.DB) *TranslationRepository {
	return &TranslationRepository{db: db}
}

func (r *TranslationRepository) List(ctx context.Context, filter domain.TranslationFilter, page, perPage int) (domain.Page[domain.Translation], error) {

	scoped := func() *gorm.DB {
		return applyFilter(r.db.WithContext(ctx).Model(&models.Translation{}), filter)
	}

	var total int64
	err := scoped().Count(&total).Error
	if err != nil {
		return domain.Page[domain.Translation]{}, errors.Wrap(err, "failed to count translations")
	}

	var rows []models.Translation
	err = scoped().
		Order(clause.OrderByColumn{Column: clause.Column{Table: clause.CurrentTable, Name: "id"}}).
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&rows).Error
	if err != nil {
		return domain.Page[domain.Translation]{}, errors.Wrap(err, "failed to list translations")
	}

	ids := make([]uint64, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	tags, err := loadTags(ctx, r.db, ids)
	if err != nil {
		return domain.Page[domain.Translation]{}, err
	}

	data := make([]domain.Translation, len(rows))
	for i, row := range rows {
		data[i] = toDomainTranslation(row, tags[row.ID])
	}

	return domain.NewPage(data, total, page, perPage), nil
}

func (r *TranslationRepository) Get(ctx context.Context, id uint64) (domain.Translation, error) {
	return getTranslation(ctx, r.db, id)
}

// Create stores the translation and, when tags is non-nil, syncs its tag set
// in the same transaction.
func (r *TranslationRepository) Create(ctx context.Context, translation domain.Translation, tags *[]string) (domain.Translation, error) {

	row := models.Translation{
		Group:  translation.Group,
		Key:    translation.Key,
		Locale: translation.Locale,
		Value:  translation.Value,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return errors.Wrap(err, "failed to create translation")
		}

		if tags != nil {
			return syncTags(tx, row.ID, *tags)
		}

		return nil
	})
	if err != nil {
		return domain.Translation{}, err
	}

	return getTranslation(ctx, r.db, row.ID)
}

// Update overwrites group, key, locale and value. A nil tags leaves the
// associations as they are; an empty slice detaches every tag.
func (r *TranslationRepository) Update(ctx context.Context, translation domain.Translation, tags *[]string) (domain.Translation, error) {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := takeTranslation(tx, translation.ID)
		if err != nil {
			return err
		}

		row.Group = translation.Group
		row.Key = translation.Key
		row.Locale = translation.Locale
		row.Value = translation.Value

		if err := tx.Save(&row).Error; err != nil {
			return errors.Wrap(err, "failed to update translation")
		}

		if tags != nil {
			return syncTags(tx, row.ID, *tags)
		}

		return nil
	})
	if err != nil {
		return domain.Translation{}, err
	}

	return getTranslation(ctx, r.db, translation.ID)
}

// Delete removes the association rows before the translation itself; the
// join table has no cascading delete.
func (r *TranslationRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := takeTranslation(tx, id); err != nil {
			return err
		}

		if err := tx.Where("translation_id = ?", id).Delete(&models.TranslationTag{}).Error; err != nil {
			return errors.Wrap(err, "failed to detach tags")
		}

		if err := tx.Delete(&models.Translation{ID: id}).Error; err != nil {
			return errors.Wrap(err, "failed to delete translation")
		}

		return nil
	})
}

// ResolveTags returns the tags with the given names, creating missing ones.
func (r *TranslationRepository) ResolveTags(ctx context.Context, names []string) ([]domain.Tag, error) {
	var resolved []models.Tag
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		resolved, err = resolveTags(tx, names)
		return err
	})
	if err != nil {
		return nil, err
	}

	tags := make([]domain.Tag, len(resolved))
	for i, tag := range resolved {
		tags[i] = toDomainTag(tag)
	}
	return tags, nil
}

// CreateBatch bulk inserts translations together with the tag links carried
// in each translation's Tags (only the tag IDs are used).
func (r *TranslationRepository) CreateBatch(ctx context.Context, translations []domain.Translation) error {
	if len(translations) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows := make([]models.Translation, len(translations))
		for i, t := range translations {
			rows[i] = models.Translation{
				Group:  t.Group,
				Key:    t.Key,
				Locale: t.Locale,
				Value:  t.Value,
			}
		}

		if err := tx.CreateInBatches(&rows, batchSize).Error; err != nil {
			return errors.Wrap(err, "failed to insert translations")
		}

		var links []models.TranslationTag
		for i, t := range translations {
			for _, tag := range t.Tags {
				links = append(links, models.TranslationTag{
					TranslationID: rows[i].ID,
					TagID:         tag.ID,
				})
			}
		}

		if len(links) == 0 {
			return nil
		}

		if err := tx.Omit(clause.Associations).CreateInBatches(&links, batchSize).Error; err != nil {
			return errors.Wrap(err, "failed to insert tag links")
		}

		return nil
	})
}

func applyFilter(db *gorm.DB, filter domain.TranslationFilter) *gorm.DB {
	if filter.Tag != nil {
		db = db.Where(
			"EXISTS (SELECT 1 FROM translation_tag tt JOIN tags t ON t.id = tt.tag_id WHERE tt.translation_id = translations.id AND t.name = ?)",
			*filter.Tag,
		)
	}

	if filter.Key != nil {
		db = db.Where(clause.Like{
			Column: clause.Column{Table: "translations", Name: "key"},
			Value:  "%" + *filter.Key + "%",
		})
	}

	if filter.Content != nil {
		db = db.Where(clause.Like{
			Column: clause.Column{Table: "translations", Name: "value"},
			Value:  "%" + *filter.Content + "%",
		})
	}

	return db
}

func takeTranslation(db *gorm.DB, id uint64) (models.Translation, error) {
	var row models.Translation
	err := db.Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Translation{}, domain.NotFoundError{Resource: "translation"}
	}
	if err != nil {
		return models.Translation{}, errors.Wrap(err, "failed to get translation")
	}
	return row, nil
}

func getTranslation(ctx context.Context, db *gorm.DB, id uint64) (domain.Translation, error) {
	row, err := takeTranslation(db.WithContext(ctx), id)
	if err != nil {
		return domain.Translation{}, err
	}

	tags, err := loadTags(ctx, db, []uint64{id})
	if err != nil {
		return domain.Translation{}, err
	}

	return toDomainTranslation(row, tags[id]), nil
}

// syncTags replaces the tag set of a translation with exactly names.
func syncTags(tx *gorm.DB, translationID uint64, names []string) error {
	tags, err := resolveTags(tx, names)
	if err != nil {
		return err
	}

	if err := tx.Where("translation_id = ?", translationID).Delete(&models.TranslationTag{}).Error; err != nil {
		return errors.Wrap(err, "failed to detach tags")
	}

	if len(tags) == 0 {
		return nil
	}

	links := make([]models.TranslationTag, len(tags))
	for i, tag := range tags {
		links[i] = models.TranslationTag{
			TranslationID: translationID,
			TagID:         tag.ID,
		}
	}

	if err := tx.Omit(clause.Associations).Create(&links).Error; err != nil {
		return errors.Wrap(err, "failed to attach tags")
	}

	return nil
}

// resolveTags is get-or-create by name backed by the unique index on
// tags.name, so concurrent writers converge on a single row per name.
func resolveTags(tx *gorm.DB, names []string) ([]models.Tag, error) {
	unique := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
	}

	if len(unique) == 0 {
		return nil, nil
	}

	candidates := make([]models.Tag, len(unique))
	for i, name := range unique {
		candidates[i] = models.Tag{Name: name}
	}

	// IDs written back into candidates are unreliable when some rows conflict
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&candidates).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to create tags")
	}

	var tags []models.Tag
	err = tx.Where("name IN ?", unique).Order("id").Find(&tags).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load tags")
	}

	if len(tags) != len(unique) {
		return nil, errors.Errorf("resolved %d of %d tags", len(tags), len(unique))
	}

	return tags, nil
}

type tagLink struct {
	TranslationID uint64
	models.Tag
}

func loadTags(ctx context.Context, db *gorm.DB, translationIDs []uint64) (map[uint64][]domain.Tag, error) {
	result := make(map[uint64][]domain.Tag, len(translationIDs))
	if len(translationIDs) == 0 {
		return result, nil
	}

	var links []tagLink
	err := db.WithContext(ctx).
		Table("tags").
		Select("translation_tag.translation_id AS translation_id, tags.id AS id, tags.name AS name, tags.created_at AS created_at, tags.updated_at AS updated_at").
		Joins("JOIN translation_tag ON translation_tag.tag_id = tags.id").
		Where("translation_tag.translation_id IN ?", translationIDs).
		Order("tags.id").
		Scan(&links).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load tags")
	}

	seen := make(map[[2]uint64]struct{}, len(links))
	for _, link := range links {
		pair := [2]uint64{link.TranslationID, link.ID}
		if _, ok := seen[pair]; ok {
			continue
		}
		seen[pair] = struct{}{}
		result[link.TranslationID] = append(result[link.TranslationID], toDomainTag(link.Tag))
	}

	return result, nil
}

func toDomainTranslation(row models.Translation, tags []domain.Tag) domain.Translation {
	if tags == nil {
		tags = []domain.Tag{}
	}
	return domain.Translation{
		ID:        row.ID,
		Group:     row.Group,
		Key:       row.Key,
		Locale:    row.Locale,
		Value:     row.Value,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		Tags:      tags,
	}
}

func toDomainTag(tag models.Tag) domain.Tag {
	return domain.Tag{
		ID:        tag.ID,
		Name:      tag.Name,
		CreatedAt: tag.CreatedAt,
		UpdatedAt: tag.UpdatedAt,
	}
}
