package domain

import (
	"bytes"

	"github.com/totegamma/i18n-store/internal/utils"
)

// ExportRow is the projection read by the export scan.
type ExportRow struct {
	Locale string
	Group  *string
	Key    string
	Value  string
}

// ExportTree maps locale -> group -> key -> value.
type ExportTree map[string]map[string]map[string]string

// Put stores a row, replacing any earlier value for the same locale, group and key.
func (t ExportTree) Put(row ExportRow) {
	group := DefaultGroup
	if row.Group != nil {
		group = *row.Group
	}

	groups, ok := t[row.Locale]
	if !ok {
		groups = make(map[string]map[string]string)
		t[row.Locale] = groups
	}

	keys, ok := groups[group]
	if !ok {
		keys = make(map[string]string)
		groups[group] = keys
	}

	keys[row.Key] = row.Value
}

// MarshalJSON renders the tree with every level sorted by key.
func (t ExportTree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	err := utils.WriteObject(&buf, t, func(buf *bytes.Buffer, groups map[string]map[string]string) error {
		return utils.WriteObject(buf, groups, func(buf *bytes.Buffer, keys map[string]string) error {
			return utils.WriteObject(buf, keys, utils.WriteString)
		})
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
