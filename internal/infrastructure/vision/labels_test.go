package vision

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"segmentation-bot/internal/domain/entity"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadLabels_JSON(t *testing.T) {
	path := writeFile(t, "labels.json", `{"labels": ["sky", "road", "tree"]}`)

	labels, err := LoadLabels(path)
	require.NoError(t, err)
	require.Equal(t, []string{"sky", "road", "tree"}, labels)
}

func TestLoadLabels_ModelMetadata(t *testing.T) {
	path := writeFile(t, "metadata.JSON",
		`{"com.apple.coreml.model.preview.params": "{\"labels\": [\"--\", \"person\"]}"}`)

	labels, err := LoadLabels(path)
	require.NoError(t, err)
	require.Equal(t, []string{"--", "person"}, labels)
}

func TestLoadLabels_Text(t *testing.T) {
	path := writeFile(t, "labels.txt", "sky\n\n  road \nwall\n")

	labels, err := LoadLabels(path)
	require.NoError(t, err)
	require.Equal(t, []string{"sky", "road", "wall"}, labels)
}

func TestLoadLabels_Errors(t *testing.T) {
	_, err := LoadLabels("")
	require.True(t, errors.Is(err, entity.ErrModelLoad))

	_, err = LoadLabels(filepath.Join(t.TempDir(), "missing.txt"))
	require.True(t, errors.Is(err, entity.ErrModelLoad))

	_, err = LoadLabels(writeFile(t, "empty.txt", "\n\n"))
	require.True(t, errors.Is(err, entity.ErrModelLoad))

	_, err = LoadLabels(writeFile(t, "broken.json", `{"labels": [1, 2]}`))
	require.True(t, errors.Is(err, entity.ErrModelLoad))

	_, err = LoadLabels(writeFile(t, "other.json", `{"classes": []}`))
	require.True(t, errors.Is(err, entity.ErrModelLoad))
}

func TestGoCVModelLoader_MissingLabels(t *testing.T) {
	loader := NewGoCVModelLoader("model.onnx", "", filepath.Join(t.TempDir(), "none.txt"))

	_, _, err := loader.Load(context.Background())
	require.True(t, errors.Is(err, entity.ErrModelLoad))
}
