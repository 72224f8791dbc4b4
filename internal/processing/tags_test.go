package processing_test

import (
	"testing"

	"github.com/epluris/epluris/backend/internal/processing"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	in := "<b>Climate &amp; Energy</b> report: https://example.gov/r.pdf  (final)"
	require.Equal(t, "b Climate Energy b report final", processing.CleanText(in))
	require.Equal(t, "", processing.CleanText(""))
}

func TestSuggestTags(t *testing.T) {
	text := "Tariff schedule update. Tariff rates for imports, tariff codes and imports data."
	tags := processing.SuggestTags(text, 3, 4)

	require.Len(t, tags, 3)
	require.Equal(t, "tariff", tags[0])
	require.Equal(t, "imports", tags[1])
}

func TestSuggestTagsSkipsStopwordsAndShortWords(t *testing.T) {
	tags := processing.SuggestTags("the of and to in for a", 5, 4)
	require.Empty(t, tags)

	tags = processing.SuggestTags("EPA EPA EPA regulation", 5, 4)
	require.Equal(t, []string{"regulation"}, tags)
}

func TestNormalizeTags(t *testing.T) {
	got := processing.NormalizeTags([]string{" Energy ", "energy", "", "Climate"})
	require.Equal(t, []string{"energy", "climate"}, got)

	require.Nil(t, processing.NormalizeTags(nil))
	require.Nil(t, processing.NormalizeTags([]string{"", "  "}))
}
