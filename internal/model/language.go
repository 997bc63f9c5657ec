package model

import (
	"strconv"
	"strings"
)

// Language maps a user-facing language name to its judge id.
type Language struct {
	Name        string
	DisplayName string
	JudgeID     int
	Extension   string
}

var (
	LanguageJava   = Language{Name: "java", DisplayName: "Java", JudgeID: 62, Extension: ".java"}
	LanguagePython = Language{Name: "python", DisplayName: "Python", JudgeID: 71, Extension: ".py"}
)

// Languages lists every language the judge accepts.
var Languages = []Language{LanguageJava, LanguagePython}

// LookupLanguage resolves a language by name, display name, judge id or file extension.
func LookupLanguage(value string) (Language, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return Language{}, false
	}
	for _, lang := range Languages {
		if value == lang.Name || value == strings.ToLower(lang.DisplayName) ||
			value == strconv.Itoa(lang.JudgeID) || value == lang.Extension {
			return lang, true
		}
	}
	return Language{}, false
}

// LanguageID is the string form the submit endpoint expects.
func (l Language) LanguageID() string {
	return strconv.Itoa(l.JudgeID)
}
