package services

import (
	"reflect"
	"strings"
)

// changeSet копит изменённые колонки для UPDATE и diff для журнала.
type changeSet struct {
	fields map[string]any
	diff   map[string]any
}

func newChangeSet() *changeSet {
	return &changeSet{fields: map[string]any{}, diff: map[string]any{}}
}

// add сравнивает значения в журнальном представлении и записывает колонку,
// только если они различаются. newValue уходит в SQL как есть.
func (c *changeSet) add(column string, oldValue, newValue any) {
	oldNorm, newNorm := normalizeValue(oldValue), normalizeValue(newValue)
	if reflect.DeepEqual(oldNorm, newNorm) {
		return
	}
	c.fields[column] = newValue
	c.diff[column] = map[string]any{"old": oldNorm, "new": newNorm}
}

// addDiff добавляет запись в diff без колонки (например, набор тегов).
func (c *changeSet) addDiff(key string, oldValue, newValue any) {
	c.diff[key] = map[string]any{"old": normalizeValue(oldValue), "new": normalizeValue(newValue)}
}

func (c *changeSet) changed(column string) bool {
	_, ok := c.fields[column]
	return ok
}

func (c *changeSet) empty() bool {
	return len(c.diff) == 0
}

// emptyToNil: пустая строка очищает необязательное текстовое поле.
func emptyToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
