// Package i18n resolves user languages and supplies localized message
// templates for the receptionist.
//
// Supported languages are English, Tamil, Telugu, and Hindi. Detection uses
// Unicode script blocks first (a strong signal), then token/alias matching.
package i18n

import "strings"

// DefaultLanguage is used whenever no preference has been established.
const DefaultLanguage = "en"

// supported is the closed set of language codes the catalog covers.
var supported = map[string]bool{"en": true, "ta": true, "te": true, "hi": true}

// codeAliases maps spoken/ASR language labels to canonical codes.
var codeAliases = map[string]string{
	"en": "en", "eng": "en", "en-us": "en", "en-in": "en", "english": "en",
	"ta": "ta", "tam": "ta", "ta-in": "ta", "tamil": "ta",
	"te": "te", "tel": "te", "te-in": "te", "telugu": "te",
	"hi": "hi", "hin": "hi", "hi-in": "hi", "hindi": "hi",
}

// IsSupported reports whether code is one of the catalog languages.
func IsSupported(code string) bool {
	return supported[code]
}

// SupportedLanguages returns the catalog language codes in a stable order.
func SupportedLanguages() []string {
	return []string{"en", "ta", "te", "hi"}
}

// DetectFromText infers a language from free text. Script detection wins:
// two or more characters in a language's Unicode block identify it. It then
// falls back to alias/keyword matching. Returns "" when nothing matches.
func DetectFromText(text string) string {
	if text == "" {
		return ""
	}

	if lang := detectScript(text); lang != "" {
		return lang
	}

	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return ""
	}

	// "ta-IN" style locale tags resolve by their primary subtag.
	if primary, _, found := strings.Cut(normalized, "-"); found {
		if code, ok := codeAliases[primary]; ok {
			return code
		}
	}

	for _, token := range strings.FieldsFunc(normalized, isPunctOrSpace) {
		if code, ok := codeAliases[token]; ok {
			return code
		}
	}

	for keyword, code := range map[string]string{
		"english": "en", "tamil": "ta", "telugu": "te", "hindi": "hi",
	} {
		if strings.Contains(normalized, keyword) {
			return code
		}
	}

	return ""
}

// detectScript identifies a language by Unicode block membership. A minimum
// of two characters in a block is required so a stray codepoint in an
// otherwise-English utterance does not flip the language.
func detectScript(text string) string {
	counts := map[string]int{}
	for _, r := range text {
		switch {
		case r >= 0x0900 && r <= 0x097F: // Devanagari
			counts["hi"]++
		case r >= 0x0B80 && r <= 0x0BFF: // Tamil
			counts["ta"]++
		case r >= 0x0C00 && r <= 0x0C7F: // Telugu
			counts["te"]++
		}
	}
	for _, lang := range []string{"ta", "te", "hi"} {
		if counts[lang] >= 2 {
			return lang
		}
	}
	return ""
}

func isPunctOrSpace(r rune) bool {
	if r == ' ' || r == '\t' || r == '\n' {
		return true
	}
	return strings.ContainsRune(`!"#$%&'()*+,-./:;<=>?@[\]^_`+"`"+`{|}~`, r)
}

// ResolveLanguage maps an arbitrary label or utterance to a supported
// language code, defaulting to English.
func ResolveLanguage(label string) string {
	if lang := DetectFromText(label); IsSupported(lang) {
		return lang
	}
	return DefaultLanguage
}

// Message returns the localized template for key, falling back to English
// when the language or key has no entry.
func Message(key, lang string) string {
	if !IsSupported(lang) {
		lang = DefaultLanguage
	}
	bucket, ok := messages[key]
	if !ok {
		return ""
	}
	if msg, ok := bucket[lang]; ok {
		return msg
	}
	return bucket[DefaultLanguage]
}

// MessageWith returns the localized template for key with {placeholder}
// variables substituted.
func MessageWith(key, lang string, vars map[string]string) string {
	msg := Message(key, lang)
	for name, value := range vars {
		msg = strings.ReplaceAll(msg, "{"+name+"}", value)
	}
	return msg
}

// NormalizeTranscript cleans common ASR artifacts for the given language
// using the per-language replacement table, and lowercases the text.
func NormalizeTranscript(text, lang string) string {
	if !IsSupported(lang) {
		lang = DefaultLanguage
	}
	normalized := strings.ToLower(text)
	for source, target := range normalizations[lang] {
		normalized = strings.ReplaceAll(normalized, source, target)
	}
	return normalized
}

// WakePhrases returns the wake phrases for a language.
func WakePhrases(lang string) []string {
	if !IsSupported(lang) {
		lang = DefaultLanguage
	}
	return wakePhrases[lang]
}

// SleepPhrases returns the sleep phrases for a language.
func SleepPhrases(lang string) []string {
	if !IsSupported(lang) {
		lang = DefaultLanguage
	}
	return sleepPhrases[lang]
}

// AnyPhraseIn reports whether any of the phrases occurs in text
// (case-insensitive substring match).
func AnyPhraseIn(text string, phrases []string) bool {
	lowered := strings.ToLower(text)
	for _, phrase := range phrases {
		if phrase != "" && strings.Contains(lowered, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}
