package utils

import "encoding/json"

// ProvidedFields возвращает ключи верхнего уровня из JSON-тела запроса.
// Нужен, чтобы отличать отсутствующее поле от явного null.
func ProvidedFields(rawRequestBody []byte) (map[string]bool, error) {
	var sentFields map[string]json.RawMessage
	if err := json.Unmarshal(rawRequestBody, &sentFields); err != nil {
		return nil, err
	}
	provided := make(map[string]bool, len(sentFields))
	for key := range sentFields {
		provided[key] = true
	}
	return provided, nil
}
