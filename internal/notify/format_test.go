package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/douscan/douscan/internal/vacancy"
)

func TestFormatFullListing(t *testing.T) {
	t.Parallel()

	got := Format(vacancy.Listing{
		Category:    "Python",
		Title:       "Backend Engineer",
		Company:     "Acme",
		Cities:      "Kyiv",
		Description: "Build services.",
		URL:         "https://jobs.example.com/vacancies/1/",
	})

	lines := strings.Split(got, "\n")
	require.Equal(t, "Backend Engineer", lines[0])
	require.Equal(t, "Acme | Kyiv | Python", lines[1])
	require.Equal(t, "", lines[2])
	require.Equal(t, "Build services.", lines[3])
	require.Equal(t, "", lines[4])
	require.Equal(t, "https://jobs.example.com/vacancies/1/", lines[5])
}

func TestFormatOmitsEmptyMetadata(t *testing.T) {
	t.Parallel()

	got := Format(vacancy.Listing{
		Title:  "QA Lead",
		Cities: "Lviv",
		URL:    "https://jobs.example.com/vacancies/2/",
	})
	require.Contains(t, got, "QA Lead\nLviv\n\n")
	require.NotContains(t, got, "|")
}

func TestFormatIncludesExperience(t *testing.T) {
	t.Parallel()

	got := Format(vacancy.Listing{
		Title:      "Junior Dev",
		Company:    "Acme",
		Experience: "1–3 роки",
		Category:   "Python",
		URL:        "https://x/3",
	})
	require.Contains(t, got, "Acme | 1–3 роки | Python")
}

func TestFormatCutsDescriptionByRunes(t *testing.T) {
	t.Parallel()

	// Multibyte text makes a byte cut and a rune cut disagree.
	long := strings.Repeat("ї", 600)
	got := Format(vacancy.Listing{
		Title:       "Backend Engineer",
		Description: long,
		URL:         "https://x/4",
	})

	lines := strings.Split(got, "\n")
	desc := lines[2]
	require.Equal(t, 350, len([]rune(desc)))
	require.True(t, strings.HasSuffix(desc, "…"))
	// The URL survives the cut untouched.
	require.Equal(t, "https://x/4", lines[len(lines)-1])
}

func TestFormatEnforcesHardCeiling(t *testing.T) {
	t.Parallel()

	got := Format(vacancy.Listing{
		Title: strings.Repeat("я", 5000),
		URL:   "https://x/5",
	})
	require.LessOrEqual(t, len([]rune(got)), 3900)
	require.True(t, strings.HasSuffix(got, "…"))
}
