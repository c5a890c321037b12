package directory

import "strings"

// triageRule maps symptom keywords onto a specialization. Rules are checked
// in order and the first keyword found in a symptom decides it.
type triageRule struct {
	spec     Specialization
	keywords []string
}

var triageTable = []triageRule{
	{Cardiologist, []string{"chest", "heart", "palpitation", "shortness of breath", "sweat"}},
	{Dermatologist, []string{"skin", "rash", "acne", "itch", "psoriasis", "eczema"}},
	{Neurologist, []string{"headache", "migraine", "dizzy", "seizure", "numb", "tingle"}},
	{Orthopedic, []string{"bone", "fracture", "joint", "knee", "back", "shoulder", "sprain"}},
	{Pediatrician, []string{"child", "baby", "infant", "pediatric", "pediatrics", "kids"}},
	{ENT, []string{"ear", "nose", "throat", "hearing", "sinus", "tonsil"}},
	{Ophthalmologist, []string{"eye", "vision", "blur", "red eye", "ocular"}},
	{Psychiatrist, []string{"depress", "anxiety", "mood", "stress", "psychiat"}},
	{Surgeon, []string{"abdominal", "appendix", "surgery", "hernia", "bleed"}},
	{GeneralPractitioner, []string{"fever", "cough", "cold", "flu", "infection", "pain"}},
}

// TriageSymptom returns the specialization suggested by a single symptom
// description. This is a keyword heuristic, not clinical advice.
func TriageSymptom(symptom string) (Specialization, bool) {
	s := strings.ToLower(symptom)
	if strings.TrimSpace(s) == "" {
		return "", false
	}
	for _, rule := range triageTable {
		for _, k := range rule.keywords {
			if strings.Contains(s, k) {
				return rule.spec, true
			}
		}
	}
	return "", false
}

// InferSpecializations collects the distinct specializations suggested by
// symptoms, in first-seen order. When nothing matches the result is
// General Practitioner alone.
func InferSpecializations(symptoms []string) []Specialization {
	seen := make(map[Specialization]bool)
	var out []Specialization
	for _, sym := range symptoms {
		spec, ok := TriageSymptom(sym)
		if !ok || seen[spec] {
			continue
		}
		seen[spec] = true
		out = append(out, spec)
	}
	if len(out) == 0 {
		out = []Specialization{GeneralPractitioner}
	}
	return out
}
