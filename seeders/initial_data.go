package seeders

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "it-inventory/pkg/errors"
)

// InitialItem - одна запись канонического справочника.
type InitialItem struct {
	Slug        string `yaml:"slug"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// Prefix используется только для типов активов.
	Prefix string `yaml:"prefix,omitempty"`
}

// InitialData - содержимое файла начальных данных.
type InitialData struct {
	AssetTypes     []InitialItem `yaml:"asset_types"`
	DeviceStatuses []InitialItem `yaml:"device_statuses"`
	Departments    []InitialItem `yaml:"departments"`
	Locations      []InitialItem `yaml:"locations"`
}

// LoadInitialData читает и разбирает файл начальных данных.
func LoadInitialData(path string) (*InitialData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть файл начальных данных %s: %w", path, err)
	}
	defer f.Close()
	return ParseInitialData(f)
}

// ParseInitialData разбирает YAML. Неизвестные ключи считаются ошибкой,
// slug и name обязательны у каждой записи.
func ParseInitialData(r io.Reader) (*InitialData, error) {
	var data InitialData
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&data); err != nil {
		if errors.Is(err, io.EOF) {
			return &data, nil
		}
		return nil, fmt.Errorf("ошибка разбора файла начальных данных: %w", err)
	}

	sections := []struct {
		key   string
		items []InitialItem
	}{
		{"asset_types", data.AssetTypes},
		{"device_statuses", data.DeviceStatuses},
		{"departments", data.Departments},
		{"locations", data.Locations},
	}
	fields := map[string]string{}
	for _, section := range sections {
		for i, item := range section.items {
			prefix := fmt.Sprintf("%s[%d]", section.key, i)
			if strings.TrimSpace(item.Slug) == "" {
				fields[prefix+".slug"] = "обязательное поле"
			}
			if strings.TrimSpace(item.Name) == "" {
				fields[prefix+".name"] = "обязательное поле"
			}
		}
	}
	if len(fields) > 0 {
		return nil, &apperrors.ValidationError{Fields: fields}
	}
	return &data, nil
}
