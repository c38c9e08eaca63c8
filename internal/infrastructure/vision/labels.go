package vision

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"segmentation-bot/internal/domain/entity"
)

// previewParamsKey ключ метаданных модели, где лежит JSON с метками.
const previewParamsKey = "com.apple.coreml.model.preview.params"

// LoadLabels читает таблицу меток из файла.
//
// Поддерживаются JSON ({"labels": [...]} или метаданные модели, где этот
// объект лежит строкой под previewParamsKey) и текст по метке в строке.
func LoadLabels(path string) ([]string, error) {
	if path == "" {
		return nil, errors.Wrap(entity.ErrModelLoad, "labels path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, entity.WithKind(entity.ErrModelLoad, errors.Wrap(err, "read labels"))
	}

	var labels []string
	if strings.EqualFold(filepath.Ext(path), ".json") {
		labels, err = ParseLabelsJSON(data)
	} else {
		labels, err = ParseLabelsText(data)
	}
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, errors.Wrapf(entity.ErrModelLoad, "no labels in %s", path)
	}
	return labels, nil
}

// ParseLabelsJSON разбирает метки из JSON.
func ParseLabelsJSON(data []byte) ([]string, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, entity.WithKind(entity.ErrModelLoad, errors.Wrap(err, "parse labels json"))
	}

	if raw, ok := doc["labels"]; ok {
		var labels []string
		if err := json.Unmarshal(raw, &labels); err != nil {
			return nil, entity.WithKind(entity.ErrModelLoad, errors.Wrap(err, "parse labels"))
		}
		return labels, nil
	}

	if raw, ok := doc[previewParamsKey]; ok {
		// параметры превью хранятся строкой с вложенным JSON
		var params string
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, entity.WithKind(entity.ErrModelLoad, errors.Wrap(err, "parse preview params"))
		}
		return ParseLabelsJSON([]byte(params))
	}

	return nil, errors.Wrap(entity.ErrModelLoad, "labels not found in metadata")
}

// ParseLabelsText разбирает метки по одной в строке, пустые строки пропускаются.
func ParseLabelsText(data []byte) ([]string, error) {
	var labels []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		labels = append(labels, line)
	}
	if err := sc.Err(); err != nil {
		return nil, entity.WithKind(entity.ErrModelLoad, errors.Wrap(err, "scan labels"))
	}
	return labels, nil
}
