package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/douscan/douscan/internal/textutil"
)

func TestDescriptionFirstMatchingSelectorWins(t *testing.T) {
	t.Parallel()

	html := `
<html><body>
  <div class="b-typo vacancy-section"><p>Primary section.</p></div>
  <div class="l-vacancy"><p>Should not be used.</p></div>
</body></html>`

	got, err := Description([]byte(html), 1000)
	require.NoError(t, err)
	require.Equal(t, "Primary section.", got)
}

func TestDescriptionFallsThroughEmptySections(t *testing.T) {
	t.Parallel()

	html := `
<html><body>
  <div class="b-typo vacancy-section">   </div>
  <div class="l-vacancy"><p>We build rockets.</p><p>Apply now.</p></div>
</body></html>`

	got, err := Description([]byte(html), 1000)
	require.NoError(t, err)
	require.Equal(t, "We build rockets.\nApply now.", got)
}

func TestDescriptionNoMatchIsEmptyNotError(t *testing.T) {
	t.Parallel()

	got, err := Description([]byte("<html><body><p>plain</p></body></html>"), 1000)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestDescriptionTruncated(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("word ", 100)
	html := `<html><body><div class="b-typo">` + long + `</div></body></html>`

	got, err := Description([]byte(html), 50)
	require.NoError(t, err)
	require.LessOrEqual(t, len([]rune(got)), 50)
	require.True(t, strings.HasSuffix(got, textutil.Ellipsis))
}
