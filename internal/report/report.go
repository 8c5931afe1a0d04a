// Package report synthesizes a templated narrative radiology report from a
// disease label and the retrieved similar cases.
package report

import (
	"strings"

	"xrayrag/internal/classify"
	"xrayrag/internal/domain"
)

var narratives = map[string]string{
	"Normal Findings": `IMPRESSION: Normal chest radiographic examination.

FINDINGS: The lungs demonstrate clear bilateral fields with normal pulmonary vascularity. Cardiac silhouette appears within normal limits. Mediastinal contours are unremarkable. No evidence of pneumothorax, pleural effusion, or focal consolidation. Bony structures and soft tissues appear intact without acute abnormality.

ASSESSMENT: No acute cardiopulmonary abnormalities identified on this chest radiograph.`,

	"Pneumonia": `IMPRESSION: Findings consistent with pneumonia.

FINDINGS: Areas of increased opacity and consolidation are identified, suggesting acute inflammatory process within the pulmonary parenchyma. Patchy infiltrates may be present with associated air bronchograms. Cardiac silhouette and mediastinal structures evaluated within the context of the inflammatory process.

ASSESSMENT: Radiographic features support clinical suspicion of pneumonia. Correlation with clinical symptoms and laboratory findings recommended.`,

	"Pleural Effusion": `IMPRESSION: Pleural effusion identified.

FINDINGS: Fluid collection within the pleural space demonstrating characteristic meniscus sign and blunting of costophrenic angles. The degree of effusion and impact on adjacent lung expansion is noted. Cardiac and mediastinal structures assessed for displacement or compression.

ASSESSMENT: Pleural effusion present. Clinical correlation recommended to determine underlying etiology and guide appropriate management.`,

	"Cardiomegaly": `IMPRESSION: Cardiac enlargement identified.

FINDINGS: Cardiac silhouette demonstrates increased size with cardiothoracic ratio suggesting cardiomegaly. Pulmonary vascularity patterns evaluated for signs of congestion or redistribution. Lung fields assessed for associated findings such as pulmonary edema or effusions.

ASSESSMENT: Cardiomegaly noted. Clinical correlation with echocardiography and cardiac evaluation recommended for further assessment.`,

	"Pneumothorax": `IMPRESSION: Pneumothorax identified.

FINDINGS: Air collection within the pleural space demonstrating visceral pleural line separation from chest wall. The extent and degree of lung collapse assessed. Mediastinal structures evaluated for potential shift or tension components.

ASSESSMENT: Pneumothorax present. Immediate clinical attention recommended based on size and patient symptoms to determine appropriate intervention.`,

	"Atelectasis": `IMPRESSION: Atelectasis identified.

FINDINGS: Areas of volume loss and increased opacity consistent with collapse of lung segments or lobes. Compensatory changes in adjacent structures noted. Evaluation for potential underlying causes such as obstruction or compression performed.

ASSESSMENT: Atelectasis present. Further evaluation may be warranted to determine underlying cause and guide treatment approach.`,

	"Emphysema": `IMPRESSION: Changes consistent with emphysema.

FINDINGS: Hyperinflation of lung fields with flattened diaphragms and increased anteroposterior chest diameter. Pulmonary vascularity appears attenuated with characteristic hyperlucency. Cardiac silhouette may appear elongated due to positional changes.

ASSESSMENT: Radiographic features consistent with emphysematous changes. Pulmonary function testing and clinical correlation recommended.`,

	"Radiographic Abnormality": `IMPRESSION: Radiographic abnormality identified requiring further evaluation.

FINDINGS: Abnormal radiographic features are present that warrant additional investigation. The findings demonstrate characteristics that deviate from normal chest radiographic anatomy. Further imaging or clinical correlation may be beneficial for definitive characterization.

ASSESSMENT: Abnormal radiographic findings identified. Additional imaging studies or clinical evaluation recommended for comprehensive assessment and diagnosis.`,
}

// correlationScoreFloor is the minimum similarity a case needs before its
// findings contribute to the correlation note.
const correlationScoreFloor = 0.7

// Narrative returns the templated report for a disease label, enhanced with
// a clinical-correlation note when the top similar cases agree with the
// label and carry recognizable pattern markers. Unknown labels fall back to
// the catch-all abnormality template.
func Narrative(disease string, similarCases []domain.SearchResult) string {
	base, ok := narratives[disease]
	if !ok {
		base = narratives[classify.LabelAbnormal]
	}

	var findings []string
	cases := similarCases
	if len(cases) > 2 {
		cases = cases[:2]
	}
	for _, c := range cases {
		if c.Score <= correlationScoreFloor {
			continue
		}
		if classify.Classify(c.Report) != disease {
			continue
		}
		text := strings.ToLower(c.Report)
		if strings.Contains(text, "bilateral") {
			findings = append(findings, "bilateral involvement")
		}
		if strings.Contains(text, "acute") {
			findings = append(findings, "acute presentation")
		}
		if strings.Contains(text, "chronic") {
			findings = append(findings, "chronic changes")
		}
	}

	if len(findings) > 0 {
		base += "\n\nCLINICAL CORRELATION: Based on similar radiographic patterns, findings may demonstrate " +
			strings.Join(dedupe(findings), ", ") +
			". Correlation with patient history and clinical presentation recommended."
	}
	return base
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
