package narration

import "strings"

// Voice describes one entry of the platform voice catalog.
type Voice struct {
	ID       string // identifier passed back to the synthesizer
	Name     string
	Language string // BCP 47-ish tag as reported by the platform, e.g. "en-GB"
	Gender   string // "female", "male", or "" when unknown
}

// Preference is the descending voice selection order: exact
// language+gender match first, then same language, then same base
// language, then whatever the platform offers first.
type Preference struct {
	Language string
	Gender   string
}

// DefaultPreference matches the narrator voice the product was
// designed around.
var DefaultPreference = Preference{Language: "en-GB", Gender: "female"}

// SelectVoice picks the best available voice for pref. ok is false
// only when the catalog is empty.
func SelectVoice(catalog []Voice, pref Preference) (Voice, bool) {
	if len(catalog) == 0 {
		return Voice{}, false
	}

	lang := strings.ToLower(pref.Language)
	base := lang
	if i := strings.IndexByte(base, '-'); i > 0 {
		base = base[:i]
	}
	gender := strings.ToLower(pref.Gender)

	var sameLang, sameBase *Voice
	for i := range catalog {
		v := &catalog[i]
		vLang := strings.ToLower(v.Language)
		vBase := vLang
		if j := strings.IndexByte(vBase, '-'); j > 0 {
			vBase = vBase[:j]
		}
		switch {
		case vLang == lang && (gender == "" || strings.ToLower(v.Gender) == gender):
			return *v, true
		case vLang == lang && sameLang == nil:
			sameLang = v
		case vBase == base && sameBase == nil:
			sameBase = v
		}
	}
	if sameLang != nil {
		return *sameLang, true
	}
	if sameBase != nil {
		return *sameBase, true
	}
	return catalog[0], true
}
