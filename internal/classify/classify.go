// Package classify assigns a disease label to a report through an ordered
// keyword table with a negation lookback window.
package classify

import "strings"

// Labels returned when no positive condition matches.
const (
	LabelNormal   = "Normal Findings"
	LabelAbnormal = "Radiographic Abnormality"
)

// negationWindow is how many characters before a keyword hit are scanned for
// negation markers.
const negationWindow = 20

type condition struct {
	keyword string
	label   string
}

// conditionTable is scanned in fixed priority order: the first non-negated
// hit wins regardless of where it occurs in the text. Reordering entries
// changes classification behavior.
var conditionTable = []condition{
	{"emphysema", "Emphysema"},
	{"pneumonia", "Pneumonia"},
	{"pleural effusion", "Pleural Effusion"},
	{"atelectasis", "Atelectasis"},
	{"cardiomegaly", "Cardiomegaly"},
	{"pulmonary edema", "Pulmonary Edema"},
	{"pneumothorax", "Pneumothorax"},
	{"consolidation", "Consolidation"},
	{"fibrosis", "Fibrosis"},
	{"nodule", "Nodule"},
	{"mass", "Mass"},
	{"fracture", "Fracture"},
	{"tuberculosis", "Tuberculosis"},
	{"covid-19", "COVID-19"},
	{"bronchitis", "Bronchitis"},
	{"lung cancer", "Lung Cancer"},
	{"pulmonary embolism", "Pulmonary Embolism"},
	{"interstitial markings", "Interstitial Disease"},
	{"hyperinflated", "Emphysema"},
	{"hyperlucency", "Emphysema"},
	{"enlarged heart", "Cardiomegaly"},
	{"cardiac silhouette is enlarged", "Cardiomegaly"},
}

var negationMarkers = []string{"no ", "without ", "absence of", "rule out", "r/o"}

var explicitNormalPhrases = []string{
	"normal chest", "clear lungs", "unremarkable", "no acute",
	"no active disease", "within normal limits", "normal exam",
}

var negativeFindingPhrases = []string{
	"no pneumonia", "no consolidation", "no pleural effusion",
	"no pneumothorax", "no mass", "no nodules", "no fracture",
}

// Classify returns the disease label for a report. Only the first occurrence
// of each keyword is considered; a hit preceded by a negation marker within
// the lookback window is skipped and scanning continues down the table. When
// no positive condition matches, explicit normal language or at least two
// distinct negative-finding phrases yield LabelNormal, LabelAbnormal
// otherwise.
func Classify(reportText string) string {
	text := strings.ToLower(reportText)

	for _, c := range conditionTable {
		pos := strings.Index(text, c.keyword)
		if pos < 0 {
			continue
		}
		start := pos - negationWindow
		if start < 0 {
			start = 0
		}
		if !isNegated(text[start:pos]) {
			return c.label
		}
	}

	for _, phrase := range explicitNormalPhrases {
		if strings.Contains(text, phrase) {
			return LabelNormal
		}
	}
	negatives := 0
	for _, phrase := range negativeFindingPhrases {
		if strings.Contains(text, phrase) {
			negatives++
		}
	}
	if negatives >= 2 {
		return LabelNormal
	}
	return LabelAbnormal
}

func isNegated(window string) bool {
	for _, marker := range negationMarkers {
		if strings.Contains(window, marker) {
			return true
		}
	}
	return false
}
