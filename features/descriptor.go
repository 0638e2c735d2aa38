package features

// Descriptor documents one input for client-side form generation.
type Descriptor struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Description string  `json:"description"`
}

// Descriptors is served as published to existing clients, including the
// integer typing of DiabetesPedigreeFunction.
var Descriptors = []Descriptor{
	{Name: "Pregnancies", Type: "integer", Min: 0, Max: 20, Description: "Number of pregnancies"},
	{Name: "Glucose", Type: "integer", Min: 0, Max: 300, Description: "Glucose concentration in mg/dL"},
	{Name: "BloodPressure", Type: "integer", Min: 0, Max: 150, Description: "Blood pressure in mm Hg"},
	{Name: "SkinThickness", Type: "integer", Min: 0, Max: 100, Description: "Skin thickness in mm"},
	{Name: "Insulin", Type: "integer", Min: 0, Max: 900, Description: "Insulin level in mu U/ml"},
	{Name: "BMI", Type: "float", Min: 0, Max: 70, Description: "Body Mass Index"},
	// TODO: confirm with the frontend owners whether this should become "float" with max 2.5.
	{Name: "DiabetesPedigreeFunction", Type: "integer", Min: 0, Max: 10, Description: "Genetic risk score (whole number)"},
	{Name: "Age", Type: "integer", Min: 0, Max: 120, Description: "Age in years"},
}
