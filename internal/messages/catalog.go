// Package messages holds the user-facing strings of the story client and
// registers their translations with x/text/message.
package messages

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys double as the English source text.
const (
	GenerateFailed     = "Failed to generate story: %s"
	UnknownError       = "Unknown error"
	JobFailed          = "Failed to generate story"
	StatusCheckFailed  = "Failed to check story status: %s"
	StoryNotFound      = "Story is not found."
	StoryNotFoundTitle = "Story Not Found"
	StoryLoadFailed    = "Failed to load story"
	Generating         = "Generating your %s story..."
	Loading            = "Loading your story..."
	TryAgain           = "Try Again"
	GoToGenerator      = "Go to Story Generator"
	ThemePrompt        = "Enter a theme for your story: "
	NewStoryHint       = "Start a new story with: storyctl generate"
	NewStoryAction     = "Start New Story"
)

var indonesian = map[string]string{
	GenerateFailed:     "Gagal membuat cerita: %s",
	UnknownError:       "Kesalahan tidak diketahui",
	JobFailed:          "Gagal membuat cerita",
	StatusCheckFailed:  "Gagal memeriksa status cerita: %s",
	StoryNotFound:      "Cerita tidak ditemukan.",
	StoryNotFoundTitle: "Cerita Tidak Ditemukan",
	StoryLoadFailed:    "Gagal memuat cerita",
	Generating:         "Sedang membuat cerita %s...",
	Loading:            "Sedang memuat cerita...",
	TryAgain:           "Coba Lagi",
	GoToGenerator:      "Kembali ke Pembuat Cerita",
	ThemePrompt:        "Masukkan tema cerita: ",
	NewStoryHint:       "Buat cerita baru dengan: storyctl generate",
	NewStoryAction:     "Mulai Cerita Baru",
}

func init() {
	for key, msg := range indonesian {
		if err := message.SetString(language.Indonesian, key, msg); err != nil {
			panic("messages: register " + key + ": " + err.Error())
		}
	}
}

// Printer formats catalog messages for one locale.
type Printer struct {
	locale string
	tag    language.Tag
	p      *message.Printer
}

// NewPrinter returns a printer for the given locale. Unsupported locales fall
// back to English.
func NewPrinter(locale string) *Printer {
	normalized := NormalizeLocale(locale)
	tag := language.English
	if normalized == "id" {
		tag = language.Indonesian
	}
	return &Printer{locale: normalized, tag: tag, p: message.NewPrinter(tag)}
}

// Locale returns the normalized locale code ("en" or "id").
func (p *Printer) Locale() string {
	if p == nil {
		return "en"
	}
	return p.locale
}

// Sprintf formats the message registered under key.
func (p *Printer) Sprintf(key string, args ...any) string {
	if p == nil {
		p = NewPrinter("en")
	}
	return p.p.Sprintf(key, args...)
}

// Theme title-cases a story theme for display.
func (p *Printer) Theme(theme string) string {
	tag := language.English
	if p != nil {
		tag = p.tag
	}
	return cases.Title(tag).String(strings.TrimSpace(theme))
}

// NormalizeLocale maps a locale or Accept-Language style value onto a
// supported locale code.
func NormalizeLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if idx := strings.IndexAny(locale, ",;"); idx >= 0 {
		locale = strings.TrimSpace(locale[:idx])
	}
	if strings.HasPrefix(locale, "id") {
		return "id"
	}
	return "en"
}
