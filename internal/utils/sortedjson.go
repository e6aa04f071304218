package utils

import (
	"bytes"
	"encoding/json"
	"sort"
)

// WriteObject writes m as a JSON object with keys in ascending byte order,
// the same order encoding/json uses for maps.
func WriteObject[T any](buf *bytes.Buffer, m map[string]T, writeValue func(*bytes.Buffer, T) error) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		err := WriteString(buf, k)
		if err != nil {
			return err
		}
		buf.WriteByte(':')

		err = writeValue(buf, m[k])
		if err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func WriteString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
