package feature

import (
	"math"
	"strings"
	"unicode"
)

// StructuralHints carry the shape of the source material into the timeline
// builder: how many events to place and where rests belong.
type StructuralHints struct {
	Words     int   // word count, one note per word
	Syllables int   // total syllable estimate
	Pauses    []int // word indices followed by clause punctuation
}

// Keyword lexicon for sentiment polarity. English plus Romanian stems; matched
// as substrings so inflected forms ("tristă", "caldă") count too.
var (
	positiveWords = []string{
		"sun", "warm", "love", "bright", "calm", "happy", "hope", "light",
		"soare", "cald", "lumina", "fericit", "senin", "bucur",
	}
	negativeWords = []string{
		"dark", "cold", "sad", "storm", "alone", "hate", "anger", "night",
		"rece", "trist", "frig", "intuneric", "singur", "furtun",
	}
)

const vowels = "aeiouyăîâAEIOUYĂÎÂ"

// ExtractText reduces free text to a feature vector plus structural hints.
// Deterministic: the same text always produces the same output. Empty text is
// valid and yields a neutral vector with zero hints; the timeline builder
// turns that into the documented minimal single-note timeline.
func ExtractText(text string) (Vector, StructuralHints, error) {
	trimmed := strings.TrimSpace(text)

	sentiment := SentimentPolarity(trimmed)
	hints := textHints(trimmed)

	vec, err := NewVector(ModalityText, map[Metric]float64{
		MetricSentiment: sentiment,
		MetricEntropy:   textEntropy(trimmed),
	})
	if err != nil {
		return Vector{}, StructuralHints{}, err
	}
	return vec, hints, nil
}

// SentimentPolarity scores text in [-1, 1] from the keyword lexicon,
// squashed through tanh so long texts saturate instead of growing unbounded.
func SentimentPolarity(text string) float64 {
	low := strings.ToLower(text)
	score := 0.0
	for _, w := range positiveWords {
		if strings.Contains(low, w) {
			score += 1.0
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(low, w) {
			score -= 1.0
		}
	}
	return math.Tanh(score)
}

// SyllableCount estimates syllables as vowel-cluster counts, at least one per word
func SyllableCount(word string) int {
	count := 0
	inCluster := false
	for _, r := range word {
		if strings.ContainsRune(vowels, r) {
			if !inCluster {
				count++
			}
			inCluster = true
		} else {
			inCluster = false
		}
	}
	if count < 1 {
		count = 1
	}
	return count
}

func textHints(text string) StructuralHints {
	words := strings.Fields(text)

	hints := StructuralHints{Words: len(words)}
	for i, word := range words {
		hints.Syllables += SyllableCount(strings.TrimFunc(word, unicode.IsPunct))

		last, _ := lastRune(word)
		switch last {
		case ',', '.', ';', ':', '!', '?':
			hints.Pauses = append(hints.Pauses, i)
		}
	}
	return hints
}

func lastRune(s string) (rune, bool) {
	var last rune
	found := false
	for _, r := range s {
		last = r
		found = true
	}
	return last, found
}

// textEntropy computes the Shannon entropy of the letter distribution,
// normalized to [0, 1] by the maximum entropy of the observed alphabet
func textEntropy(text string) float64 {
	counts := make(map[rune]int)
	total := 0
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) {
			counts[r]++
			total++
		}
	}
	if total == 0 || len(counts) < 2 {
		return 0.0
	}

	entropy := 0.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy / math.Log2(float64(len(counts)))
}
