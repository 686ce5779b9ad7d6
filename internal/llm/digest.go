package llm

import (
	"context"
	"fmt"
	"unicode/utf8"
)

// MaxDigestLength caps the digest returned to clients, in characters.
const MaxDigestLength = 10_000

const digestPrompt = `You are an AI assistant specializing in Indian financial and tax regulations. Please provide a concise summary of recent (last 7-14 days) significant developments in Indian financial laws, tax regulations, government notifications, and compliance requirements.

Focus on:
- Key regulatory changes or announcements
- Government/regulatory bodies involved (RBI, SEBI, CBDT, GST Council, etc.)
- Announcement or effective dates
- Major implications for businesses, taxpayers, or financial advisors

Format your response as a chronological bullet list (newest first), with each point covering one development. Use this format:
- [Brief headline]: [Key details including regulatory body, date if known, and primary implication]

Provide 5-8 bullet points. Keep tone formal, concise, and information-dense. Only include actual regulatory/compliance news, not market commentary or opinions.`

// Digest asks gen for a bullet list of recent Indian regulatory news.
func Digest(ctx context.Context, gen Generator) (string, error) {
	text, err := gen.Generate(ctx, digestPrompt)
	if err != nil {
		return "", fmt.Errorf("generate digest: %w", err)
	}
	return truncate(text, MaxDigestLength), nil
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
