package langmatch

import (
	"strings"
	"unicode"
)

// Detector reports whether a name shows characters typical of a language.
type Detector func(name string) bool

func containsAny(chars string) Detector {
	return func(name string) bool {
		return strings.ContainsAny(name, chars)
	}
}

func inScript(tables ...*unicode.RangeTable) Detector {
	return func(name string) bool {
		for _, r := range name {
			if unicode.In(r, tables...) {
				return true
			}
		}
		return false
	}
}

func either(detectors ...Detector) Detector {
	return func(name string) bool {
		for _, d := range detectors {
			if d(name) {
				return true
			}
		}
		return false
	}
}

// looksEnglish accepts short plain-ASCII names without special characters.
func looksEnglish(name string) bool {
	if len(name) >= 30 {
		return false
	}
	for _, r := range name {
		if r > unicode.MaxASCII {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune(" '-:&,.!?", r) {
			return false
		}
	}
	return strings.TrimSpace(name) != ""
}

var cyrillic = inScript(unicode.Cyrillic)

// detectors maps a lower-case language name to its detector.
var detectors = map[string]Detector{
	"english":    looksEnglish,
	"german":     containsAny("äöüßÄÖÜẞ"),
	"french":     containsAny("àâæçéèêëîïôœùûüÿÀÂÆÇÉÈÊËÎÏÔŒÙÛÜŸ"),
	"spanish":    containsAny("áéíñóúüÁÉÍÑÓÚÜ¿¡"),
	"italian":    containsAny("àèéìíîòóùúÀÈÉÌÍÎÒÓÙÚ"),
	"portuguese": containsAny("ãõáâàçéêíóôúÃÕÁÂÀÇÉÊÍÓÔÚ"),
	"dutch":      containsAny("ĳĲëïéèöüËÏÉÈÖÜ"),
	"swedish":    containsAny("åäöÅÄÖ"),
	"norwegian":  containsAny("æøåÆØÅ"),
	"danish":     containsAny("æøåÆØÅ"),
	"finnish":    containsAny("äöåÄÖÅ"),
	"icelandic":  containsAny("ðþæöáéíóúýÐÞÆÖÁÉÍÓÚÝ"),
	"polish":     containsAny("ąćęłńóśźżĄĆĘŁŃÓŚŹŻ"),
	"czech":      containsAny("áčďéěíňóřšťúůýžÁČĎÉĚÍŇÓŘŠŤÚŮÝŽ"),
	"slovak":     containsAny("áäčďéíĺľňóôŕšťúýžÁÄČĎÉÍĹĽŇÓÔŔŠŤÚÝŽ"),
	"hungarian":  containsAny("áéíóöőúüűÁÉÍÓÖŐÚÜŰ"),
	"romanian":   containsAny("ăâîșşțţĂÂÎȘŞȚŢ"),
	"lithuanian": containsAny("ąčęėįšųūžĄČĘĖĮŠŲŪŽ"),
	"latvian":    containsAny("āčēģīķļņšūžĀČĒĢĪĶĻŅŠŪŽ"),
	"estonian":   containsAny("äöõüšžÄÖÕÜŠŽ"),
	"russian":    cyrillic,
	"ukrainian":  cyrillic,
	"bulgarian":  cyrillic,
	"serbian":    either(cyrillic, containsAny("čćđšžČĆĐŠŽ")),
	"greek":      inScript(unicode.Greek),
	"turkish":    containsAny("çğıöşüÇĞİÖŞÜ"),
	"chinese":    inScript(unicode.Han),
	"japanese":   inScript(unicode.Hiragana, unicode.Katakana, unicode.Han),
	"korean":     inScript(unicode.Hangul),
	"hebrew":     inScript(unicode.Hebrew),
	"arabic":     inScript(unicode.Arabic),
	"thai":       inScript(unicode.Thai),
}

// DetectorFor returns the detector for a BGG language name such as
// "German" or "Chinese (Simplified)".
func DetectorFor(language string) (Detector, bool) {
	key := normalizeLanguage(language)
	d, ok := detectors[key]
	return d, ok
}

func normalizeLanguage(language string) string {
	key := strings.ToLower(strings.TrimSpace(language))
	if i := strings.Index(key, "("); i > 0 {
		key = strings.TrimSpace(key[:i])
	}
	return key
}

// Languages returns the language names with a detector.
func Languages() []string {
	out := make([]string, 0, len(detectors))
	for k := range detectors {
		out = append(out, k)
	}
	return out
}
