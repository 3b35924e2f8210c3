package rewriter

import (
	"fmt"
	"log/slog"

	"cryptopress/internal/utils/text"
)

// maxBodyRunes caps the source body sent to the backend to stay well inside
// token limits. Rune-counted so truncation never splits a multi-byte
// character.
const maxBodyRunes = 10000

// buildPrompt constructs the rewrite instruction for one article. The
// backend must answer with a single JSON object carrying exactly two string
// fields, which the parsing pipeline depends on.
func buildPrompt(title, body string) string {
	if n := text.CountRunes(body); n > maxBodyRunes {
		slog.Warn("source body truncated for rewrite backend",
			slog.Int("original_length", n),
			slog.Int("truncated_length", maxBodyRunes))
		body = string([]rune(body)[:maxBodyRunes]) + "..."
	}

	return fmt.Sprintf(`Bạn là một biên tập viên tin tức crypto chuyên nghiệp. Hãy viết lại bài báo sau bằng tiếng Việt.

Tiêu đề gốc: %s

Nội dung gốc:
%s

Yêu cầu:
1. Viết lại hoàn toàn bằng tiếng Việt, tự nhiên và chuyên nghiệp, không dịch máy móc từng câu.
2. Giữ nguyên cấu trúc các phần của bài gốc, không áp đặt một khuôn mẫu cố định.
3. Nội dung chỉ được dùng các thẻ HTML sau: <h2>, <h3>, <p>, <strong>, <ul>, <li>, <blockquote>.
4. KHÔNG dùng cú pháp markdown (**, __, #).
5. KHÔNG lặp lại tiêu đề bài viết làm heading đầu tiên của nội dung.
6. Trả lời CHỈ bằng một đối tượng JSON duy nhất, không có văn bản nào khác:
{"title": "tiêu đề tiếng Việt", "content": "nội dung HTML tiếng Việt"}`, title, body)
}
