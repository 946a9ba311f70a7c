package sentiment

import "strings"

// Lexical polarity word sets. The two sets are disjoint; a token appearing
// in neither contributes nothing.
var positiveWords = map[string]struct{}{
	"good": {}, "great": {}, "better": {}, "happy": {}, "hopeful": {},
	"calm": {}, "grateful": {}, "proud": {}, "strong": {}, "loved": {},
	"safe": {}, "peaceful": {}, "excited": {}, "confident": {}, "relieved": {},
	"joy": {}, "progress": {}, "healing": {}, "thankful": {}, "optimistic": {},
	"motivated": {}, "supported": {}, "content": {}, "accomplished": {},
}

var negativeWords = map[string]struct{}{
	"bad": {}, "worse": {}, "sad": {}, "angry": {}, "anxious": {},
	"scared": {}, "hopeless": {}, "alone": {}, "lonely": {}, "hurt": {},
	"tired": {}, "worthless": {}, "afraid": {}, "guilty": {}, "ashamed": {},
	"depressed": {}, "overwhelmed": {}, "broken": {}, "lost": {}, "numb": {},
	"empty": {}, "stuck": {}, "exhausted": {}, "miserable": {}, "terrible": {},
}

// normalizationFloor keeps a single strongly-worded short message from
// saturating to +/-1; sustained polarity across many words is required to
// approach the extremes.
const normalizationFloor = 10

// Score returns the lexical polarity of text in [-1, 1]. Empty input and
// input with no matching words score 0. Case-insensitive, deterministic,
// no side effects.
func Score(text string) float64 {
	if text == "" {
		return 0
	}

	var total, matched int
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,!?;:'\"()")
		if _, ok := positiveWords[token]; ok {
			total++
			matched++
			continue
		}
		if _, ok := negativeWords[token]; ok {
			total--
			matched++
		}
	}

	if matched == 0 {
		return 0
	}

	floor := matched
	if floor < normalizationFloor {
		floor = normalizationFloor
	}

	score := float64(total) / float64(floor)
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}
