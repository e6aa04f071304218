package domain

import "time"

// Translation is a single localized string.
type Translation struct {
	ID        uint64    `json:"id"`
	Group     *string   `json:"group"`
	Key       string    `json:"key"`
	Locale    string    `json:"locale"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Tags      []Tag     `json:"tags"`
}

// Tag is a free-form label shared between translations.
type Tag struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TranslationFilter narrows a listing. Nil fields are not applied.
type TranslationFilter struct {
	Tag     *string
	Key     *string
	Content *string
}

// Page is one offset-based page of a filtered result set.
type Page[T any] struct {
	Data        []T
	Total       int64
	CurrentPage int
	PerPage     int
	LastPage    int
	From        *int
	To          *int
}

// NewPage fills in the derived paging fields.
func NewPage[T any](data []T, total int64, page, perPage int) Page[T] {
	if data == nil {
		data = []T{}
	}

	lastPage := 1
	if perPage > 0 && total > 0 {
		lastPage = int((total + int64(perPage) - 1) / int64(perPage))
	}

	p := Page[T]{
		Data:        data,
		Total:       total,
		CurrentPage: page,
		PerPage:     perPage,
		LastPage:    lastPage,
	}

	if len(data) > 0 {
		from := (page-1)*perPage + 1
		to := from + len(data) - 1
		p.From = &from
		p.To = &to
	}

	return p
}
