package problem

import (
	"fmt"
	"strings"
)

// Language identifies the solution language selected in the arena.
type Language string

const (
	LanguageUnknown Language = ""
	LanguageJava    Language = "java"
	LanguageCPP     Language = "cpp"
	LanguageCSharp  Language = "csharp"
	LanguageVB      Language = "vb"
	LanguagePython  Language = "python"
)

var languageAliases = map[string]Language{
	"java":    LanguageJava,
	"c++":     LanguageCPP,
	"cpp":     LanguageCPP,
	"c#":      LanguageCSharp,
	"csharp":  LanguageCSharp,
	"vb":      LanguageVB,
	"vb.net":  LanguageVB,
	"python":  LanguagePython,
	"python3": LanguagePython,
}

// ParseLanguage maps a user or arena supplied language name to a Language.
func ParseLanguage(value string) (Language, error) {
	key := strings.ToLower(strings.TrimSpace(value))
	if key == "" {
		return LanguageUnknown, nil
	}
	if lang, ok := languageAliases[key]; ok {
		return lang, nil
	}
	return LanguageUnknown, fmt.Errorf("unsupported language %q", value)
}

// SourceExtension returns the conventional solution file extension.
func (l Language) SourceExtension() string {
	switch l {
	case LanguageCPP:
		return ".cpp"
	case LanguageCSharp:
		return ".cs"
	case LanguageVB:
		return ".vb"
	case LanguagePython:
		return ".py"
	default:
		return ".java"
	}
}

func (l Language) String() string {
	if l == LanguageUnknown {
		return "unknown"
	}
	return string(l)
}
