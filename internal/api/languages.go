package api

import "strings"

// Language describes one supported reply language.
type Language struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Native string `json:"native"`
}

// supportedLanguages is the fixed catalog of reply languages, ISO 639-1.
var supportedLanguages = []Language{
	{Code: "hi", Name: "Hindi", Native: "हिन्दी"},
	{Code: "en", Name: "English", Native: "English"},
	{Code: "bn", Name: "Bengali", Native: "বাংলা"},
	{Code: "te", Name: "Telugu", Native: "తెలుగు"},
	{Code: "mr", Name: "Marathi", Native: "मराठी"},
	{Code: "ta", Name: "Tamil", Native: "தமிழ்"},
	{Code: "gu", Name: "Gujarati", Native: "ગુજરાતી"},
	{Code: "kn", Name: "Kannada", Native: "ಕನ್ನಡ"},
	{Code: "ml", Name: "Malayalam", Native: "മലയാളം"},
	{Code: "or", Name: "Odia", Native: "ଓଡ଼ିଆ"},
	{Code: "pa", Name: "Punjabi", Native: "ਪੰਜਾਬੀ"},
	{Code: "as", Name: "Assamese", Native: "অসমীয়া"},
	{Code: "ur", Name: "Urdu", Native: "اردو"},
	{Code: "sa", Name: "Sanskrit", Native: "संस्कृतम्"},
	{Code: "ks", Name: "Kashmiri", Native: "कश्मीरी"},
	{Code: "ne", Name: "Nepali", Native: "नेपाली"},
}

// Languages returns the supported language catalog.
func Languages() []Language {
	out := make([]Language, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

// LanguageCode normalizes a language name or code to a supported ISO code.
// Unknown input defaults to "en". Partial name matches are accepted
// ("beng" resolves to "bn").
func LanguageCode(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return "en"
	}

	for _, lang := range supportedLanguages {
		if input == lang.Code {
			return lang.Code
		}
	}
	for _, lang := range supportedLanguages {
		if input == strings.ToLower(lang.Name) {
			return lang.Code
		}
	}
	for _, lang := range supportedLanguages {
		name := strings.ToLower(lang.Name)
		if strings.Contains(name, input) || strings.Contains(input, name) {
			return lang.Code
		}
	}
	return "en"
}
