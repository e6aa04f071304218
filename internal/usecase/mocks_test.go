package usecase

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/totegamma/i18n-store/internal/domain"
	"github.com/totegamma/i18n-store/internal/infra/telemetry"
)

func newMetrics() *telemetry.Metrics {
	return telemetry.NewMetrics(prometheus.NewRegistry())
}

func ptr[T any](v T) *T { return &v }

type mockTranslationRepo struct {
	stored    map[uint64]domain.Translation
	lastTags  *[]string
	lastPage  int
	lastPer   int
	lastQuery domain.TranslationFilter
	created   int
	updated   int
	deleted   []uint64
	err       error
}

func newMockTranslationRepo() *mockTranslationRepo {
	return &mockTranslationRepo{stored: map[uint64]domain.Translation{}}
}

func (m *mockTranslationRepo) List(ctx context.Context, filter domain.TranslationFilter, page, perPage int) (domain.Page[domain.Translation], error) {
	m.lastQuery = filter
	m.lastPage = page
	m.lastPer = perPage
	return domain.NewPage([]domain.Translation{}, 0, page, perPage), m.err
}

func (m *mockTranslationRepo) Get(ctx context.Context, id uint64) (domain.Translation, error) {
	t, ok := m.stored[id]
	if !ok {
		return domain.Translation{}, domain.NotFoundError{Resource: "translation"}
	}
	return t, nil
}

func (m *mockTranslationRepo) Create(ctx context.Context, t domain.Translation, tags *[]string) (domain.Translation, error) {
	if m.err != nil {
		return domain.Translation{}, m.err
	}
	m.created++
	m.lastTags = tags
	t.ID = uint64(len(m.stored) + 1)
	m.stored[t.ID] = t
	return t, nil
}

func (m *mockTranslationRepo) Update(ctx context.Context, t domain.Translation, tags *[]string) (domain.Translation, error) {
	if m.err != nil {
		return domain.Translation{}, m.err
	}
	m.updated++
	m.lastTags = tags
	m.stored[t.ID] = t
	return t, nil
}

func (m *mockTranslationRepo) Delete(ctx context.Context, id uint64) error {
	if _, ok := m.stored[id]; !ok {
		return domain.NotFoundError{Resource: "translation"}
	}
	delete(m.stored, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockExportRepo struct {
	rows []domain.ExportRow
	err  error
}

func (m *mockExportRepo) Scan(ctx context.Context, fn func(domain.ExportRow) error) error {
	for _, row := range m.rows {
		if err := fn(row); err != nil {
			return err
		}
	}
	return m.err
}

type mockUserRepo struct {
	users map[uint64]domain.User
	gets  int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[uint64]domain.User{}}
}

func (m *mockUserRepo) Get(ctx context.Context, id uint64) (domain.User, error) {
	m.gets++
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	return u, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.NotFoundError{Resource: "user"}
}

func (m *mockUserRepo) Upsert(ctx context.Context, user domain.User) (domain.User, error) {
	for id, u := range m.users {
		if u.Email == user.Email {
			user.ID = id
			m.users[id] = user
			return user, nil
		}
	}
	user.ID = uint64(len(m.users) + 1)
	m.users[user.ID] = user
	return user, nil
}

type mockSeedRepo struct {
	tags    []domain.Tag
	batches [][]domain.Translation
}

func (m *mockSeedRepo) ResolveTags(ctx context.Context, names []string) ([]domain.Tag, error) {
	m.tags = make([]domain.Tag, len(names))
	for i, name := range names {
		m.tags[i] = domain.Tag{ID: uint64(i + 1), Name: name}
	}
	return m.tags, nil
}

func (m *mockSeedRepo) CreateBatch(ctx context.Context, translations []domain.Translation) error {
	m.batches = append(m.batches, translations)
	return nil
}
