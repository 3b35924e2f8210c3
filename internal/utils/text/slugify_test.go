package text

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{
			name:  "vietnamese diacritics folded",
			title: "Bitcoin vượt mốc 100.000 USD",
			want:  "bitcoin-vuot-moc-100000-usd",
		},
		{
			name:  "d with stroke",
			title: "Đồng tiền điện tử",
			want:  "dong-tien-dien-tu",
		},
		{
			name:  "punctuation dropped",
			title: "ETF Bitcoin: SEC 'phê duyệt'!",
			want:  "etf-bitcoin-sec-phe-duyet",
		},
		{
			name:  "repeated whitespace collapsed",
			title: "a   b \t c",
			want:  "a-b-c",
		},
		{
			name:  "already ascii",
			title: "Hello World",
			want:  "hello-world",
		},
		{
			name:  "empty",
			title: "",
			want:  "",
		},
		{
			name:  "only punctuation",
			title: "!!!",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.title))
		})
	}
}

func TestSlugify_Truncation(t *testing.T) {
	long := strings.Repeat("crypto ", 20)
	slug := Slugify(long)

	assert.LessOrEqual(t, len(slug), maxSlugLength)
	assert.False(t, strings.HasSuffix(slug, "-"), "truncation must not leave a trailing hyphen")
}

func TestUniqueSlug(t *testing.T) {
	slugShape := regexp.MustCompile(`^[a-z0-9-]+$`)

	got := UniqueSlug("Bitcoin tăng giá")
	assert.True(t, strings.HasPrefix(got, "bitcoin-tang-gia-"), "got %q", got)
	assert.Regexp(t, slugShape, got)

	// Empty base still yields a usable suffix-only slug.
	assert.Regexp(t, slugShape, UniqueSlug(""))

	// Collisions are practically impossible within one run.
	seen := make(map[string]bool)
	for range 10 {
		s := UniqueSlug("same title")
		assert.False(t, seen[s], "duplicate slug %q", s)
		seen[s] = true
	}
}
