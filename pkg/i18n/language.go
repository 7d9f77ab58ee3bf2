package i18n

import (
	"os"
	"strings"
)

// DetectLanguage picks the language from AWSMP_LANG, then the system
// locale, then English.
func DetectLanguage() string {
	if lang := os.Getenv("AWSMP_LANG"); lang != "" {
		return NormalizeLanguage(lang)
	}

	if lang, ok := DetectFromSystem(); ok {
		return NormalizeLanguage(lang)
	}

	return "en"
}

// DetectFromSystem detects language from system environment variables
func DetectFromSystem() (string, bool) {
	if lang := os.Getenv("LC_ALL"); lang != "" {
		return lang, true
	}

	if lang := os.Getenv("LANG"); lang != "" {
		return lang, true
	}

	// LANGUAGE is a colon-separated list; take the first
	if lang := os.Getenv("LANGUAGE"); lang != "" {
		parts := strings.Split(lang, ":")
		if parts[0] != "" {
			return parts[0], true
		}
	}

	return "", false
}

// NormalizeLanguage reduces a locale such as "es_MX.UTF-8" to a supported
// base language, falling back to "en".
func NormalizeLanguage(lang string) string {
	lang = strings.ToLower(lang)
	lang = strings.Split(lang, ".")[0]
	lang = strings.Split(lang, "_")[0]
	lang = strings.Split(lang, "-")[0]

	if IsSupported(lang) {
		return lang
	}
	return "en"
}
