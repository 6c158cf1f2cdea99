package entities

import "fmt"

// FieldKind determines how a raw string answer is coerced for submission
type FieldKind string

const (
	// FieldNumber is parsed as a floating point value
	FieldNumber FieldKind = "number"

	// FieldChoice maps the Yes/No vocabulary to 1/0
	FieldChoice FieldKind = "choice"

	// FieldText passes through as a raw string
	FieldText FieldKind = "text"
)

// Field is one entry of a per-disease form schema
type Field struct {
	Name          string
	Label         string
	Kind          FieldKind
	Required      bool
	ChoiceOptions []string
}

// FieldSchema is the ordered field set for one disease. Static
// configuration, not session state.
type FieldSchema struct {
	Disease string
	Fields  []Field
}

// SchemaRegistry resolves form schemas by disease identifier. Unknown ids
// fail fast unless a default schema was explicitly named; there is no
// implicit fallback.
type SchemaRegistry struct {
	schemas        map[string]FieldSchema
	order          []string
	defaultDisease string
}

// NewSchemaRegistry creates an empty registry
func NewSchemaRegistry() *SchemaRegistry {
	return &SchemaRegistry{schemas: make(map[string]FieldSchema)}
}

// Register adds or replaces the schema for its disease
func (r *SchemaRegistry) Register(schema FieldSchema) {
	if _, exists := r.schemas[schema.Disease]; !exists {
		r.order = append(r.order, schema.Disease)
	}
	r.schemas[schema.Disease] = schema
}

// SetDefault names the schema used for unknown disease ids. The disease must
// already be registered.
func (r *SchemaRegistry) SetDefault(disease string) error {
	if _, ok := r.schemas[disease]; !ok {
		return fmt.Errorf("default schema %q is not registered", disease)
	}
	r.defaultDisease = disease
	return nil
}

// Get resolves the schema for a disease. When the disease is unknown it
// returns the named default if one was set, otherwise ok is false.
func (r *SchemaRegistry) Get(disease string) (FieldSchema, bool) {
	if schema, ok := r.schemas[disease]; ok {
		return schema, true
	}
	if r.defaultDisease != "" {
		return r.schemas[r.defaultDisease], true
	}
	return FieldSchema{}, false
}

// Diseases lists registered diseases in registration order
func (r *SchemaRegistry) Diseases() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

var yesNo = []string{"No", "Yes"}

// BuiltinSchemas returns a registry with the field sets shipped for the
// supported disease datasets.
func BuiltinSchemas() *SchemaRegistry {
	r := NewSchemaRegistry()
	r.Register(FieldSchema{
		Disease: "Heart Disease",
		Fields: []Field{
			{Name: "age", Label: "Age (years)", Kind: FieldNumber, Required: true},
			{Name: "blood_pressure", Label: "Blood Pressure (mmHg)", Kind: FieldNumber, Required: true},
			{Name: "cholesterol", Label: "Cholesterol (mg/dL)", Kind: FieldNumber, Required: true},
			{Name: "bmi", Label: "BMI", Kind: FieldNumber, Required: true},
			{Name: "chest_pain", Label: "Chest Pain Type (0-3)", Kind: FieldNumber},
			{Name: "resting_ecg", Label: "Resting ECG (0-2)", Kind: FieldNumber},
			{Name: "max_heart_rate", Label: "Max Heart Rate", Kind: FieldNumber},
			{Name: "exercise_angina", Label: "Exercise Angina (0-1)", Kind: FieldNumber},
		},
	})
	r.Register(FieldSchema{
		Disease: "Breast Cancer",
		Fields: []Field{
			{Name: "radius_mean", Label: "Radius Mean", Kind: FieldNumber, Required: true},
			{Name: "texture_mean", Label: "Texture Mean", Kind: FieldNumber, Required: true},
			{Name: "perimeter_mean", Label: "Perimeter Mean", Kind: FieldNumber, Required: true},
			{Name: "area_mean", Label: "Area Mean", Kind: FieldNumber, Required: true},
			{Name: "smoothness_mean", Label: "Smoothness Mean", Kind: FieldNumber},
			{Name: "compactness_mean", Label: "Compactness Mean", Kind: FieldNumber},
			{Name: "concavity_mean", Label: "Concavity Mean", Kind: FieldNumber},
			{Name: "symmetry_mean", Label: "Symmetry Mean", Kind: FieldNumber},
		},
	})
	r.Register(FieldSchema{
		Disease: "Lung Cancer",
		Fields: []Field{
			{Name: "age", Label: "Age (years)", Kind: FieldNumber, Required: true},
			{Name: "smoking", Label: "Smoking (Yes/No)", Kind: FieldChoice, Required: true, ChoiceOptions: yesNo},
			{Name: "yellow_fingers", Label: "Yellow Fingers (Yes/No)", Kind: FieldChoice, ChoiceOptions: yesNo},
			{Name: "anxiety", Label: "Anxiety (Yes/No)", Kind: FieldChoice, ChoiceOptions: yesNo},
			{Name: "peer_pressure", Label: "Peer Pressure (Yes/No)", Kind: FieldChoice, ChoiceOptions: yesNo},
			{Name: "chronic_disease", Label: "Chronic Disease (Yes/No)", Kind: FieldChoice, ChoiceOptions: yesNo},
			{Name: "fatigue", Label: "Fatigue (Yes/No)", Kind: FieldChoice, ChoiceOptions: yesNo},
			{Name: "wheezing", Label: "Wheezing (Yes/No)", Kind: FieldChoice, ChoiceOptions: yesNo},
		},
	})
	r.Register(FieldSchema{
		Disease: "Diabetes",
		Fields: []Field{
			{Name: "age", Label: "Age (years)", Kind: FieldNumber, Required: true},
			{Name: "glucose", Label: "Glucose (mg/dL)", Kind: FieldNumber, Required: true},
			{Name: "blood_pressure", Label: "Blood Pressure (mmHg)", Kind: FieldNumber, Required: true},
			{Name: "bmi", Label: "BMI", Kind: FieldNumber, Required: true},
			{Name: "insulin", Label: "Insulin (mu U/ml)", Kind: FieldNumber},
			{Name: "pregnancies", Label: "Pregnancies", Kind: FieldNumber},
			{Name: "skin_thickness", Label: "Skin Thickness (mm)", Kind: FieldNumber},
			{Name: "diabetes_pedigree", Label: "Diabetes Pedigree", Kind: FieldNumber},
		},
	})
	return r
}
