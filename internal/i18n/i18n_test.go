package i18n

import (
	"strings"
	"testing"
)

func TestDetectFromTextScripts(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"tamil script", "நான் ஊழியர்", "ta"},
		{"telugu script", "నేను ఉద్యోగిని", "te"},
		{"devanagari script", "मैं कर्मचारी हूँ", "hi"},
		{"english word", "I prefer English please", "en"},
		{"language name", "tamil", "ta"},
		{"locale tag", "te-IN", "te"},
		{"alias token", "could you switch to hindi", "hi"},
		{"no match", "good morning", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFromText(tt.text); got != tt.want {
				t.Errorf("DetectFromText(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestDetectFromTextIgnoresStrayCodepoint(t *testing.T) {
	// A single foreign character in an English sentence must not flip the
	// language.
	if got := DetectFromText("my badge says க here"); got != "" {
		t.Errorf("DetectFromText = %q, want no detection for a lone codepoint", got)
	}
}

func TestResolveLanguageDefaults(t *testing.T) {
	if got := ResolveLanguage("klingon"); got != DefaultLanguage {
		t.Errorf("ResolveLanguage(klingon) = %q, want %q", got, DefaultLanguage)
	}
	if got := ResolveLanguage("Tamil"); got != "ta" {
		t.Errorf("ResolveLanguage(Tamil) = %q, want ta", got)
	}
}

func TestMessageFallsBackToEnglish(t *testing.T) {
	en := Message("wake_intro", "en")
	if en == "" {
		t.Fatal("wake_intro must have an English entry")
	}
	if got := Message("wake_intro", "fr"); got != en {
		t.Errorf("unsupported language should fall back to English, got %q", got)
	}
	if got := Message("no_such_key", "en"); got != "" {
		t.Errorf("unknown key should yield empty string, got %q", got)
	}
}

func TestMessageWithSubstitutesPlaceholders(t *testing.T) {
	got := MessageWith("face_recognition_success", "en", map[string]string{"name": "Asha"})
	if !strings.Contains(got, "Asha") {
		t.Errorf("placeholder not substituted: %q", got)
	}
	if strings.Contains(got, "{name}") {
		t.Errorf("raw placeholder left in message: %q", got)
	}
}

func TestEveryKeyHasEnglishEntry(t *testing.T) {
	for key, bucket := range messages {
		if bucket["en"] == "" {
			t.Errorf("message %q has no English entry", key)
		}
	}
}

func TestWakePhrasesCoverAllLanguages(t *testing.T) {
	for _, lang := range SupportedLanguages() {
		if len(WakePhrases(lang)) == 0 {
			t.Errorf("no wake phrases for %q", lang)
		}
		if len(SleepPhrases(lang)) == 0 {
			t.Errorf("no sleep phrases for %q", lang)
		}
	}
}

func TestAnyPhraseIn(t *testing.T) {
	if !AnyPhraseIn("well HEY CLARA, good morning", WakePhrases("en")) {
		t.Error("wake phrase should match case-insensitively inside a sentence")
	}
	if AnyPhraseIn("hello there", WakePhrases("en")) {
		t.Error("unrelated text should not match a wake phrase")
	}
}
