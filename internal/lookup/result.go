package lookup

import "strings"

// Sources of a lookup result, ordered by tier.
const (
	SourceLocal    = "local"
	SourceDatabase = "database"
	SourceFallback = "fallback"
)

// Result is the answer of one tier. It is implemented by LocalHit, DatabaseHit and FallbackHit only.
type Result interface {
	Source() string
	// Term is the normalized term that was looked up.
	Term() string
	// DisplayText is the text shown to the user.
	DisplayText() string
	isResult()
}

// LocalHit is an entry of the in-memory dictionary.
type LocalHit struct {
	Word        string
	Translation string
}

func (h LocalHit) Source() string      { return SourceLocal }
func (h LocalHit) Term() string        { return h.Word }
func (h LocalHit) DisplayText() string { return h.Translation }
func (LocalHit) isResult()             {}

// DatabaseHit is an answer of the remote store.
type DatabaseHit struct {
	Word               string
	Translation        string
	Phonetic           string
	Example            string
	ExampleTranslation string
	// Origin is the source reported by the remote store, "local" for its own dictionary or "database".
	Origin string
}

func (h DatabaseHit) Source() string { return SourceDatabase }
func (h DatabaseHit) Term() string   { return h.Word }

func (h DatabaseHit) DisplayText() string {
	var sb strings.Builder
	if h.Phonetic != "" {
		sb.WriteString("[" + h.Phonetic + "]")
	}
	if h.Translation != "" {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(h.Translation)
	}
	if h.Example != "" {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(h.Example)
		if h.ExampleTranslation != "" {
			sb.WriteString(" " + h.ExampleTranslation)
		}
	}
	return sb.String()
}

func (DatabaseHit) isResult() {}

// FallbackHit is a translation of the third-party API.
type FallbackHit struct {
	Word        string
	Translation string
}

func (h FallbackHit) Source() string      { return SourceFallback }
func (h FallbackHit) Term() string        { return h.Word }
func (h FallbackHit) DisplayText() string { return h.Translation }
func (FallbackHit) isResult()             {}
