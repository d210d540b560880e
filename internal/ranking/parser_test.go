package ranking

import (
	"testing"

	"github.com/boardroom-ai/boardroom/internal/models"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "numbered list after marker",
			text: "FINAL RANKING:\n1. Response C\n2. Response A",
			want: []string{"Response C", "Response A"},
		},
		{
			name: "marker is case-insensitive",
			text: "final ranking:\n1. Response B\n2. Response A",
			want: []string{"Response B", "Response A"},
		},
		{
			name: "bare mentions without marker, duplicate dropped",
			text: "Response A\nResponse A\nResponse B",
			want: []string{"Response A", "Response B"},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
		{
			name: "no labels at all",
			text: "I cannot rank these responses.",
			want: nil,
		},
		{
			name: "prose before marker is ignored",
			text: "Response B is weak. Response A is strong.\n\nFINAL RANKING:\n1. Response A\n2. Response B",
			want: []string{"Response A", "Response B"},
		},
		{
			name: "bare labels after marker when list is unnumbered",
			text: "FINAL RANKING:\nResponse C, then Response A, then Response B",
			want: []string{"Response C", "Response A", "Response B"},
		},
		{
			name: "numbered entries win over surrounding bare mentions",
			text: "FINAL RANKING:\nBest was Response D overall.\n1. Response B\n2. Response A",
			want: []string{"Response B", "Response A"},
		},
		{
			name: "marker with nothing after yields empty ranking",
			text: "Response A beats Response B.\nFINAL RANKING:\n",
			want: nil,
		},
		{
			name: "duplicate in numbered list keeps first position",
			text: "FINAL RANKING:\n1. Response A\n2. Response B\n3. Response A",
			want: []string{"Response A", "Response B"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Parse(tc.text))
		})
	}
}

func TestFilter(t *testing.T) {
	labelMap := models.LabelMap{
		"Response A": {MemberID: "m1", Title: "One", Model: "x/a"},
		"Response B": {MemberID: "m2", Title: "Two", Model: "x/b"},
	}

	t.Run("hallucinated labels are dropped silently", func(t *testing.T) {
		got := Filter([]string{"Response A", "Response Z", "Response B"}, labelMap)
		require.Equal(t, []string{"Response A", "Response B"}, got)
	})

	t.Run("empty input", func(t *testing.T) {
		require.Empty(t, Filter(nil, labelMap))
	})
}
