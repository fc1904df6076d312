package docdetect

import "regexp"

// keywordWeight is one (keyword, weight) scoring entry. The tables are
// ordered lists rather than maps so the scoring explanation is stable.
type keywordWeight struct {
	Keyword string
	Weight  int
}

// passportKeywords score whole-image OCR text toward the passport family.
var passportKeywords = []keywordWeight{
	{"passport", 3},
	{"given names", 2},
	{"surname", 2},
	{"nationality", 2},
	{"authority", 2},
	{"place of birth", 2},
	{"date of birth", 1},
}

// drivingKeywords score whole-image OCR text toward the license family.
var drivingKeywords = []keywordWeight{
	{"driver", 3},
	{"driving", 3},
	{"license", 3},
	{"dl", 2},
	{"dmv", 2},
	{"identification", 2},
	{"state", 2},
	{"endors", 1},
	{"restrict", 1},
}

// Document-number shapes per family, matched against upper-cased OCR text.
var (
	passportNoPattern = regexp.MustCompile(`[A-Z]{1,2}[0-9]{6,8}`)
	drivingNoPattern  = regexp.MustCompile(`[A-Z]{1,3}[0-9]{4,10}|[0-9]{7,12}`)
)

// Classifier decision constants.
const (
	// confidenceMargin is how far one detector's best confidence must
	// exceed the other's before the confidence signal votes.
	confidenceMargin = 0.1

	// boxCountMargin is the box-count lead required before the count
	// signal votes.
	boxCountMargin = 2

	// keywordMargin is the keyword-score lead required before the
	// keyword signal votes.
	keywordMargin = 3

	// lowConfidenceThreshold triggers the unreliable-result warning
	// when neither detector beats it.
	lowConfidenceThreshold = 0.3
)

// scoreKeywords sums the weights of table keywords present in text
// (substring match over lower-cased whole-image OCR output).
func scoreKeywords(text string, table []keywordWeight) int {
	score := 0
	for _, kw := range table {
		if containsKeyword(text, kw.Keyword) {
			score += kw.Weight
		}
	}
	return score
}
