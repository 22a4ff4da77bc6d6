package templates

import (
	"strings"
)

// EscapeMarkdown escapes special characters for Telegram Markdown format
func EscapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"]", "\\]",
		"(", "\\(",
		")", "\\)",
		"~", "\\~",
		"`", "\\`",
		">", "\\>",
		"#", "\\#",
		"+", "\\+",
		"-", "\\-",
		"=", "\\=",
		"|", "\\|",
		"{", "\\{",
		"}", "\\}",
		".", "\\.",
		"!", "\\!",
	)
	return replacer.Replace(text)
}

// EscapeMarkdownV2 escapes the characters Telegram's MarkdownV2 parser
// treats as markup outside code and link entities.
func EscapeMarkdownV2(text string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\", // Backslash must be escaped first
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"]", "\\]",
		"(", "\\(",
		")", "\\)",
		"~", "\\~",
		"`", "\\`",
		">", "\\>",
		"#", "\\#",
		"+", "\\+",
		"-", "\\-",
		"=", "\\=",
		"|", "\\|",
		"{", "\\{",
		"}", "\\}",
		".", "\\.",
		"!", "\\!",
	)
	return replacer.Replace(text)
}

// EscapeMarkdownV2Code escapes special characters inside code/pre blocks
// Inside code and pre entities, only '`' and '\' must be escaped
func EscapeMarkdownV2Code(code string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"`", "\\`",
	)
	return replacer.Replace(code)
}

// EscapeMarkdownV2Link escapes special characters inside inline link URLs
// Inside (...) part of inline link, only ')' and '\' must be escaped
func EscapeMarkdownV2Link(url string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		")", "\\)",
	)
	return replacer.Replace(url)
}

// SafeText strips invalid UTF-8 and escapes Markdown markup.
func SafeText(text string) string {
	text = strings.ToValidUTF8(text, "")
	return EscapeMarkdown(text)
}

// SafeTextV2 strips invalid UTF-8 and escapes MarkdownV2 markup.
func SafeTextV2(text string) string {
	text = strings.ToValidUTF8(text, "")
	return EscapeMarkdownV2(text)
}
