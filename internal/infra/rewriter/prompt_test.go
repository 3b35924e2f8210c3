package rewriter

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt_ContainsTitleAndBody(t *testing.T) {
	prompt := buildPrompt("Bitcoin vượt mốc", "<p>Giá Bitcoin lập đỉnh mới.</p>")

	assert.Contains(t, prompt, "Tiêu đề gốc: Bitcoin vượt mốc")
	assert.Contains(t, prompt, "<p>Giá Bitcoin lập đỉnh mới.</p>")
	assert.Contains(t, prompt, `{"title"`)
}

func TestBuildPrompt_TruncatesLongBodyOnRunes(t *testing.T) {
	// Multi-byte runes: a byte-offset cut would split one in half.
	body := strings.Repeat("ề", maxBodyRunes+50)

	prompt := buildPrompt("tiêu đề", body)

	require.True(t, utf8.ValidString(prompt))
	assert.Contains(t, prompt, strings.Repeat("ề", maxBodyRunes)+"...")
	assert.NotContains(t, prompt, strings.Repeat("ề", maxBodyRunes+1))
}

func TestBuildPrompt_ShortBodyUntouched(t *testing.T) {
	prompt := buildPrompt("tiêu đề", "ngắn gọn")
	assert.NotContains(t, prompt, "ngắn gọn...")
	assert.Contains(t, prompt, "ngắn gọn")
}
