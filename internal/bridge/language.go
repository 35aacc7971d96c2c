package bridge

// Language identifies a source language the engine can analyze. The set is
// closed: membership is checked before any process is spawned.
type Language string

const (
	Haskell    Language = "haskell"
	Python     Language = "python"
	ReScript   Language = "rescript"
	Golang     Language = "golang"
	Rust       Language = "rust"
	TypeScript Language = "typescript"
	PureScript Language = "purescript"
	JavaScript Language = "javascript"
)

// supportedLanguages mirrors the engine's adapter map.
var supportedLanguages = []Language{
	Haskell,
	Python,
	ReScript,
	Golang,
	Rust,
	TypeScript,
	PureScript,
	JavaScript,
}

// SupportedLanguages returns the closed set of languages the engine accepts,
// in a stable order.
func SupportedLanguages() []Language {
	out := make([]Language, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

// IsLanguageSupported reports whether name belongs to the supported set.
func IsLanguageSupported(name string) bool {
	for _, lang := range supportedLanguages {
		if string(lang) == name {
			return true
		}
	}
	return false
}
