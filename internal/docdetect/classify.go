package docdetect

import (
	"fmt"
	"strings"

	"docscan/internal/providers"
)

// Vote records which document family one classifier signal favored.
type Vote struct {
	Signal string
	Choice DocumentType
}

// Classification is the document-type decision with its justification.
type Classification struct {
	DocumentType DocumentType `json:"document_type"`
	Reason       string       `json:"reason"`
	// Warning is non-empty when both detectors' best confidence is low.
	Warning string `json:"warning,omitempty"`
	Votes   []Vote `json:"-"`
}

// WarningLowConfidence is attached when neither detector is confident.
const WarningLowConfidence = "Low detection confidence - results may be unreliable"

// detectorSignal condenses one detector's raw output for classification.
type detectorSignal struct {
	Conf  float64
	Count int
}

func signalFrom(r *providers.DetectResult) detectorSignal {
	if r == nil {
		return detectorSignal{}
	}
	return detectorSignal{Conf: r.MaxConfidence(), Count: len(r.Boxes)}
}

// Classify reconciles both detectors' raw output and the whole-image OCR
// text into a single document-type decision.
//
// Four signals vote independently, each allowed to abstain when its own
// discriminating margin is not met: detector confidence, detector box
// count, keyword score, and document-number pattern count. Simple
// majority wins; ties (including four abstentions) fall back to a raw
// confidence comparison. The comparison uses ">", so an exact confidence
// tie resolves to driving license.
func Classify(passport, license *providers.DetectResult, ocrText string) Classification {
	p := signalFrom(passport)
	d := signalFrom(license)

	text := strings.ToLower(ocrText)
	upper := strings.ToUpper(ocrText)

	pScore := scoreKeywords(text, passportKeywords)
	dScore := scoreKeywords(text, drivingKeywords)

	pMatches := len(passportNoPattern.FindAllString(upper, -1))
	dMatches := len(drivingNoPattern.FindAllString(upper, -1))

	var votes []Vote
	var parts []string

	switch {
	case p.Conf > d.Conf+confidenceMargin:
		votes = append(votes, Vote{"detector_confidence", DocTypePassport})
		parts = append(parts, fmt.Sprintf("detector confidence favors passport (%.2f vs %.2f)", p.Conf, d.Conf))
	case d.Conf > p.Conf+confidenceMargin:
		votes = append(votes, Vote{"detector_confidence", DocTypeDrivingLicense})
		parts = append(parts, fmt.Sprintf("detector confidence favors driving license (%.2f vs %.2f)", d.Conf, p.Conf))
	}

	switch {
	case p.Count > d.Count+boxCountMargin:
		votes = append(votes, Vote{"box_count", DocTypePassport})
		parts = append(parts, fmt.Sprintf("box count favors passport (%d vs %d)", p.Count, d.Count))
	case d.Count > p.Count+boxCountMargin:
		votes = append(votes, Vote{"box_count", DocTypeDrivingLicense})
		parts = append(parts, fmt.Sprintf("box count favors driving license (%d vs %d)", d.Count, p.Count))
	}

	switch {
	case pScore > dScore+keywordMargin:
		votes = append(votes, Vote{"keywords", DocTypePassport})
		parts = append(parts, fmt.Sprintf("keywords favor passport (%d vs %d)", pScore, dScore))
	case dScore > pScore+keywordMargin:
		votes = append(votes, Vote{"keywords", DocTypeDrivingLicense})
		parts = append(parts, fmt.Sprintf("keywords favor driving license (%d vs %d)", dScore, pScore))
	}

	switch {
	case pMatches > dMatches:
		votes = append(votes, Vote{"doc_pattern", DocTypePassport})
		parts = append(parts, fmt.Sprintf("document number pattern favors passport (%d vs %d)", pMatches, dMatches))
	case dMatches > pMatches:
		votes = append(votes, Vote{"doc_pattern", DocTypeDrivingLicense})
		parts = append(parts, fmt.Sprintf("document number pattern favors driving license (%d vs %d)", dMatches, pMatches))
	}

	pVotes, dVotes := 0, 0
	for _, v := range votes {
		if v.Choice == DocTypePassport {
			pVotes++
		} else {
			dVotes++
		}
	}

	var docType DocumentType
	switch {
	case pVotes > dVotes:
		docType = DocTypePassport
		parts = append(parts, fmt.Sprintf("passport wins with %d votes vs %d", pVotes, dVotes))
	case dVotes > pVotes:
		docType = DocTypeDrivingLicense
		parts = append(parts, fmt.Sprintf("driving license wins with %d votes vs %d", dVotes, pVotes))
	case p.Conf > d.Conf:
		docType = DocTypePassport
		parts = append(parts, fmt.Sprintf("tie broken by confidence: passport %.2f > driving %.2f", p.Conf, d.Conf))
	default:
		docType = DocTypeDrivingLicense
		parts = append(parts, fmt.Sprintf("tie broken by confidence: driving %.2f > passport %.2f", d.Conf, p.Conf))
	}

	parts = append(parts,
		fmt.Sprintf("passport conf: %.2f, boxes: %d", p.Conf, p.Count),
		fmt.Sprintf("driving conf: %.2f, boxes: %d", d.Conf, d.Count),
		fmt.Sprintf("passport keywords: %d, driving keywords: %d", pScore, dScore),
	)

	c := Classification{
		DocumentType: docType,
		Reason:       strings.Join(parts, " | "),
		Votes:        votes,
	}
	if p.Conf < lowConfidenceThreshold && d.Conf < lowConfidenceThreshold {
		c.Warning = WarningLowConfidence
	}
	return c
}

// containsKeyword is a plain substring match; keyword tables are already
// lower-case.
func containsKeyword(text, keyword string) bool {
	return strings.Contains(text, keyword)
}
