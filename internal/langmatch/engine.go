// Package langmatch pairs game versions with the alternate name that fits
// their language.
package langmatch

import (
	"fmt"
	"sort"
	"strings"

	bgg "github.com/secondturn-games/second-turn-games-sub000/go-bgg"
)

// MatchKind says how a suggestion was found.
type MatchKind string

const (
	MatchExact   MatchKind = "exact"
	MatchPartial MatchKind = "partial"
	MatchNone    MatchKind = "none"
)

// Confidence levels. Suggestions below ConfidenceThreshold are replaced by
// the primary name.
const (
	ConfidenceThreshold   = 0.85
	confidenceScript      = 0.9
	confidenceEnglish     = 0.8
	confidencePartial     = 0.3
	confidencePartialName = 0.2
	confidencePrimary     = 0.1
	confidenceAlternate   = 0.05
)

// LanguageMatchedVersion is a version annotated with a suggested name.
type LanguageMatchedVersion struct {
	bgg.GameVersion
	SuggestedAlternateName string    `json:"suggested_alternate_name,omitempty"`
	LanguageMatch          MatchKind `json:"language_match"`
	Confidence             float64   `json:"confidence"`
	Reasoning              string    `json:"reasoning"`
}

type candidate struct {
	name       string
	confidence float64
}

// Match suggests a name for every version and returns the results ordered
// by confidence, highest first. Inputs are not modified.
func Match(versions []bgg.GameVersion, alternateNames []string, primaryName string, totalVersions int) []LanguageMatchedVersion {
	out := make([]LanguageMatchedVersion, 0, len(versions))
	for _, v := range versions {
		out = append(out, MatchVersion(v, alternateNames, primaryName, totalVersions))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

// MatchVersion suggests a name for a single version.
func MatchVersion(version bgg.GameVersion, alternateNames []string, primaryName string, totalVersions int) LanguageMatchedVersion {
	result := LanguageMatchedVersion{GameVersion: version}
	language := strings.TrimSpace(version.PrimaryLanguage)

	switch {
	case totalVersions == 1:
		return fallback(result, alternateNames, primaryName, "single version")
	case language == "":
		return fallback(result, alternateNames, primaryName, "version has no primary language")
	case len(alternateNames) == 0:
		return fallback(result, alternateNames, primaryName, "game has no alternate names")
	case normalizeLanguage(language) == "english":
		return fallback(result, alternateNames, primaryName, "English version uses the primary name")
	}

	if candidates := exactCandidates(language, alternateNames); len(candidates) > 0 {
		best := candidates[0]
		if best.confidence >= ConfidenceThreshold {
			result.SuggestedAlternateName = best.name
			result.LanguageMatch = MatchExact
			result.Confidence = best.confidence
			result.Reasoning = fmt.Sprintf("name uses characters typical of %s", language)
			return result
		}
		return fallback(result, alternateNames, primaryName,
			fmt.Sprintf("best %s match %.2f is below the confidence threshold", language, best.confidence))
	}

	if version.IsMultilingual {
		if candidates := partialCandidates(version.Languages, alternateNames); len(candidates) > 0 {
			best := candidates[0]
			if best.confidence >= ConfidenceThreshold {
				result.SuggestedAlternateName = best.name
				result.LanguageMatch = MatchPartial
				result.Confidence = best.confidence
				result.Reasoning = "partial match for multilingual version"
				return result
			}
			return fallback(result, alternateNames, primaryName,
				fmt.Sprintf("best partial match %.2f is below the confidence threshold", best.confidence))
		}
	}

	return fallback(result, alternateNames, primaryName, fmt.Sprintf("no alternate name matches %s", language))
}

// exactCandidates scores every alternate name against the language's
// detector, best first.
func exactCandidates(language string, alternateNames []string) []candidate {
	detect, ok := DetectorFor(language)
	if !ok {
		return nil
	}
	confidence := confidenceScript
	if normalizeLanguage(language) == "english" {
		confidence = confidenceEnglish
	}

	var out []candidate
	for _, name := range alternateNames {
		if detect(name) {
			out = append(out, candidate{name: name, confidence: confidence})
		}
	}
	sortCandidates(out)
	return out
}

// partialCandidates scores every alternate name for a multilingual version.
func partialCandidates(languages, alternateNames []string) []candidate {
	out := make([]candidate, 0, len(alternateNames))
	for _, name := range alternateNames {
		c := candidate{name: name, confidence: confidencePartial}
		lower := strings.ToLower(name)
		for _, lang := range languages {
			if lang = strings.ToLower(strings.TrimSpace(lang)); lang != "" && strings.Contains(lower, lang) {
				c.confidence += confidencePartialName
				break
			}
		}
		out = append(out, c)
	}
	sortCandidates(out)
	return out
}

func sortCandidates(c []candidate) {
	sort.SliceStable(c, func(i, j int) bool {
		return c[i].confidence > c[j].confidence
	})
}

// fallback suggests the primary name, or the first alternate name when the
// game has no primary name.
func fallback(result LanguageMatchedVersion, alternateNames []string, primaryName, reason string) LanguageMatchedVersion {
	result.LanguageMatch = MatchNone
	result.Reasoning = reason
	switch {
	case primaryName != "":
		result.SuggestedAlternateName = primaryName
		result.Confidence = confidencePrimary
	case len(alternateNames) > 0:
		result.SuggestedAlternateName = alternateNames[0]
		result.Confidence = confidenceAlternate
		result.Reasoning = reason + "; no primary name, using first alternate name"
	default:
		result.Confidence = 0
	}
	return result
}
