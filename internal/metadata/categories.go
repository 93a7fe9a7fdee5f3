package metadata

import "strings"

// Category groups diseases that share generic care advice.
type Category string

const (
	Cardiovascular   Category = "cardiovascular"
	Diabetes         Category = "diabetes"
	Respiratory      Category = "respiratory"
	Neurological     Category = "neurological"
	Musculoskeletal  Category = "musculoskeletal"
	MentalHealth     Category = "mental_health"
	Gastrointestinal Category = "gastrointestinal"
	Infectious       Category = "infectious"
	Endocrine        Category = "endocrine"
	General          Category = "general"
)

// Guidance is the generic advice attached to a category.
type Guidance struct {
	Precautions []string `json:"precautions"`
	Medications []string `json:"medications"`
	Exercises   []string `json:"exercises"`
}

// Checked in order; the first keyword contained in the name decides.
var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{Cardiovascular, []string{"coronary atherosclerosis", "hypertensive heart disease", "heart block",
		"mitral valve disease", "hypertrophic obstructive cardiomyopathy", "pericarditis",
		"thoracic aortic aneurysm", "vasculitis", "heart", "cardiac", "vascular",
		"hypertension", "blood pressure"}},
	{Diabetes, []string{"type 2 diabetes", "gestational diabetes", "hypoglycemia", "insulin",
		"diabetes", "diabetic", "glucose", "hyperglycemia", "metabolic"}},
	{Respiratory, []string{"bronchitis", "pneumonia", "emphysema", "cystic fibrosis", "asthma",
		"pulmonary", "lung", "respiratory", "breathing", "cough", "broncho"}},
	{Neurological, []string{"parkinson", "alzheimer", "epilepsy", "seizure", "migraine", "headache",
		"neuropathy", "encephalitis", "myasthenia gravis", "multiple sclerosis",
		"neurological", "nerve", "brain", "paralysis"}},
	{Musculoskeletal, []string{"arthritis", "osteoporosis", "fracture", "bone", "joint", "muscle",
		"rheumatoid", "osteo", "muscular", "skeletal", "spine", "back pain"}},
	{MentalHealth, []string{"depression", "anxiety", "panic", "bipolar", "schizophrenia",
		"mental", "psychiatric", "psychological", "mood", "stress"}},
	{Gastrointestinal, []string{"gastroenteritis", "gerd", "ulcer", "colitis", "crohn", "gastro",
		"intestinal", "bowel", "stomach", "digestive", "hepatitis", "liver"}},
	{Infectious, []string{"infection", "bacterial", "viral", "fungal", "parasitic", "sepsis",
		"influenza", "pneumonia", "tuberculosis", "meningitis", "abscess"}},
	{Endocrine, []string{"thyroid", "hormone", "pituitary", "adrenal", "endocrine",
		"hypothyroidism", "hyperthyroidism", "cushings", "addison"}},
}

var guidance = map[Category]Guidance{
	Cardiovascular: {
		Precautions: []string{"Monitor blood pressure regularly", "Follow a heart-healthy diet (low sodium, low saturated fat)",
			"Maintain healthy cholesterol levels", "Avoid smoking and excessive alcohol consumption"},
		Medications: []string{"ACE inhibitors (Lisinopril, Enalapril)", "Beta-blockers (Metoprolol, Atenolol)",
			"Calcium channel blockers (Amlodipine)", "Statins (Atorvastatin, Simvastatin)"},
		Exercises: []string{"Moderate aerobic exercise 30 minutes daily", "Walking or light jogging",
			"Swimming or water aerobics", "Cycling on level terrain"},
	},
	Diabetes: {
		Precautions: []string{"Monitor blood glucose levels regularly", "Follow prescribed meal plans and timing",
			"Maintain proper foot care and hygiene", "Keep emergency glucose sources available"},
		Medications: []string{"Metformin for blood sugar control", "Insulin (rapid-acting, long-acting)",
			"Sulfonylureas (Glipizide, Glyburide)", "DPP-4 inhibitors (Sitagliptin)"},
		Exercises: []string{"Regular moderate exercise 30 minutes daily", "Brisk walking after meals",
			"Resistance training 2-3 times per week", "Flexibility and balance exercises"},
	},
	Respiratory: {
		Precautions: []string{"Avoid triggers like allergens and pollutants", "Get annual flu vaccinations",
			"Practice proper hand hygiene", "Use air purifiers when needed"},
		Medications: []string{"Bronchodilators (Albuterol, Salmeterol)", "Corticosteroids (Prednisone, Fluticasone)",
			"Antibiotics for bacterial infections", "Expectorants and mucolytics"},
		Exercises: []string{"Breathing exercises and techniques", "Low-intensity aerobic activities",
			"Pulmonary rehabilitation programs", "Gentle yoga and stretching"},
	},
	Neurological: {
		Precautions: []string{"Take medications consistently as prescribed", "Maintain regular sleep schedule",
			"Avoid known seizure triggers", "Wear medical identification when appropriate"},
		Medications: []string{"Anticonvulsants (Phenytoin, Carbamazepine)", "Dopamine agonists (Levodopa)",
			"Cholinesterase inhibitors (Donepezil)", "Muscle relaxants (Baclofen)"},
		Exercises: []string{"Physical therapy exercises", "Range of motion exercises",
			"Balance and coordination training", "Cognitive rehabilitation activities"},
	},
	Musculoskeletal: {
		Precautions: []string{"Maintain good posture", "Use proper body mechanics",
			"Avoid repetitive strain", "Apply heat/cold therapy as appropriate"},
		Medications: []string{"NSAIDs (Ibuprofen, Naproxen)", "Topical analgesics (Capsaicin cream)",
			"Muscle relaxants (Cyclobenzaprine)", "Disease-modifying antirheumatic drugs (DMARDs)"},
		Exercises: []string{"Low-impact aerobic exercises", "Strengthening exercises",
			"Flexibility and stretching routines", "Water-based exercises"},
	},
	MentalHealth: {
		Precautions: []string{"Maintain regular therapy appointments", "Practice stress management techniques",
			"Maintain social connections", "Monitor mood changes and triggers"},
		Medications: []string{"SSRIs (Sertraline, Fluoxetine)", "SNRIs (Venlafaxine, Duloxetine)",
			"Mood stabilizers (Lithium, Valproate)", "Antipsychotics (Risperidone, Olanzapine)"},
		Exercises: []string{"Regular aerobic exercise", "Yoga and mindfulness practices",
			"Recreational activities and hobbies", "Social and group activities"},
	},
	Gastrointestinal: {
		Precautions: []string{"Follow dietary modifications", "Avoid trigger foods",
			"Maintain proper hydration", "Practice good food hygiene"},
		Medications: []string{"Proton pump inhibitors (Omeprazole)", "H2 receptor blockers (Ranitidine)",
			"Antispasmodics (Dicyclomine)", "Probiotics and digestive enzymes"},
		Exercises: []string{"Light walking after meals", "Gentle abdominal exercises",
			"Stress-reduction activities", "Pelvic floor exercises"},
	},
	Infectious: {
		Precautions: []string{"Complete full course of antibiotics", "Practice proper isolation measures",
			"Maintain good hygiene practices", "Boost immune system with proper nutrition"},
		Medications: []string{"Antibiotics (Amoxicillin, Azithromycin)", "Antivirals (Acyclovir, Oseltamivir)",
			"Antifungals (Fluconazole, Clotrimazole)", "Supportive medications for symptoms"},
		Exercises: []string{"Rest and gradual return to activity", "Light stretching when appropriate",
			"Breathing exercises", "Immune-boosting activities when recovered"},
	},
	Endocrine: {
		Precautions: []string{"Regular hormone level monitoring", "Consistent medication timing",
			"Dietary modifications as prescribed", "Regular medical follow-ups"},
		Medications: []string{"Hormone replacement therapy", "Thyroid medications (Levothyroxine)",
			"Corticosteroids (Hydrocortisone)", "Insulin and glucose-regulating drugs"},
		Exercises: []string{"Regular moderate exercise", "Weight-bearing exercises",
			"Flexibility training", "Stress management activities"},
	},
	General: {
		Precautions: []string{"Follow medical advice and treatment plans", "Maintain regular medical check-ups",
			"Practice good hygiene and health habits", "Monitor symptoms and report changes"},
		Medications: []string{"Over-the-counter pain relievers as needed", "Prescription medications as directed",
			"Vitamins and supplements if recommended", "Topical treatments for local symptoms"},
		Exercises: []string{"Light to moderate physical activity", "Stretching and flexibility exercises",
			"Walking and gentle movements", "Rest and recovery as needed"},
	},
}

// Categorize assigns disease to a category by keyword, falling back to
// General.
func Categorize(disease string) Category {
	name := Key(disease)
	if name == "" {
		return General
	}
	for _, c := range categoryKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(name, kw) {
				return c.category
			}
		}
	}
	return General
}

// Knowledge returns a copy of the guidance for c. Unknown categories get the
// General guidance.
func Knowledge(c Category) Guidance {
	g, ok := guidance[c]
	if !ok {
		g = guidance[General]
	}
	return Guidance{
		Precautions: append([]string(nil), g.Precautions...),
		Medications: append([]string(nil), g.Medications...),
		Exercises:   append([]string(nil), g.Exercises...),
	}
}
