package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLabelsKeyboard_Layout(t *testing.T) {
	kb := labelsKeyboard([]string{"sky", "road", "tree", "car", "person"}, "tree")

	require.Len(t, kb.InlineKeyboard, 2)
	require.Len(t, kb.InlineKeyboard[0], 3)
	require.Len(t, kb.InlineKeyboard[1], 2)

	selected := kb.InlineKeyboard[0][2]
	require.Equal(t, "✅ tree", selected.Text)
	require.NotNil(t, selected.CallbackData)
	require.Equal(t, "label:tree", *selected.CallbackData)
	require.Equal(t, "sky", kb.InlineKeyboard[0][0].Text)
}

func TestLabelsKeyboard_SkipsLongLabels(t *testing.T) {
	long := strings.Repeat("x", 80)
	kb := labelsKeyboard([]string{long, "sky"}, "")

	require.Len(t, kb.InlineKeyboard, 1)
	require.Len(t, kb.InlineKeyboard[0], 1)
	require.Equal(t, "sky", kb.InlineKeyboard[0][0].Text)
}

func TestParseLabelData(t *testing.T) {
	label, ok := parseLabelData("label:traffic light")
	require.True(t, ok)
	require.Equal(t, "traffic light", label)

	_, ok = parseLabelData("other:sky")
	require.False(t, ok)
}

func TestParseTap(t *testing.T) {
	x, y, err := parseTap("0.5 0.9")
	require.NoError(t, err)
	require.Equal(t, 0.5, x)
	require.Equal(t, 0.9, y)

	x, y, err = parseTap(" 1, 0 ")
	require.NoError(t, err)
	require.Equal(t, 1.0, x)
	require.Equal(t, 0.0, y)

	// вне диапазона разбирается, отклоняет сервис
	x, _, err = parseTap("1.1 0")
	require.NoError(t, err)
	require.Equal(t, 1.1, x)

	_, _, err = parseTap("0.5")
	require.Error(t, err)
	_, _, err = parseTap("a b")
	require.Error(t, err)
}
