package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Complexity levels accepted by the problem generator.
const (
	ComplexityEasy   = "EASY"
	ComplexityMedium = "MEDIUM"
	ComplexityHard   = "HARD"
)

// Complexities lists the generator levels in ascending order.
var Complexities = []string{ComplexityEasy, ComplexityMedium, ComplexityHard}

// BeginnerConcept always gets EASY problems.
const BeginnerConcept = "Basic Programming for Absolute Beginners"

// TestCase is one generated input/output pair. Values are kept raw and
// forwarded to the judge untouched.
type TestCase struct {
	Input  []json.RawMessage `json:"input"`
	Output json.RawMessage   `json:"output"`
}

// InputField describes one parameter of the solution function.
type InputField struct {
	InputField string `json:"Input_Field"`
}

// OutputField describes the solution function's return value.
type OutputField struct {
	OutputField string `json:"Output_Field"`
}

// Structure is the function signature the boilerplate and judge harness share.
type Structure struct {
	ProblemName     string       `json:"problem_name"`
	FunctionName    string       `json:"function_name"`
	InputStructure  []InputField `json:"input_structure"`
	OutputStructure OutputField  `json:"output_structure"`
}

// Problem is the problem generator's response.
type Problem struct {
	Concept           string     `json:"concept"`
	Difficulty        string     `json:"difficulty"`
	ProblemTitle      string     `json:"problem_title"`
	ProblemStatement  string     `json:"problem_statement"`
	TestCases         []TestCase `json:"test_cases"`
	Tags              []string   `json:"tags"`
	Structure         Structure  `json:"structure"`
	JavaBoilerplate   string     `json:"java_boilerplate"`
	PythonBoilerplate string     `json:"python_boilerplate"`
}

// Validate checks the fields later requests depend on.
func (p Problem) Validate() error {
	if strings.TrimSpace(p.ProblemTitle) == "" {
		return fmt.Errorf("missing field problem_title")
	}
	if strings.TrimSpace(p.ProblemStatement) == "" {
		return fmt.Errorf("missing field problem_statement")
	}
	if len(p.TestCases) == 0 {
		return fmt.Errorf("missing field test_cases")
	}
	for i, tc := range p.TestCases {
		if tc.Input == nil {
			return fmt.Errorf("test_cases[%d]: missing input", i)
		}
	}
	return nil
}

// Boilerplate returns the starter code for a language, or "" if none was generated.
func (p Problem) Boilerplate(lang Language) string {
	switch lang.Name {
	case LanguageJava.Name:
		return p.JavaBoilerplate
	case LanguagePython.Name:
		return p.PythonBoilerplate
	default:
		return ""
	}
}

// StructureJSON encodes the structure the way the submit endpoint expects it: as a JSON string.
func (p Problem) StructureJSON() (string, error) {
	data, err := json.Marshal(p.Structure)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// GenerateRequest is the body of the problem generation call.
type GenerateRequest struct {
	Concept    string `json:"concept"`
	Complexity string `json:"complexity"`
}

// NormalizeComplexity upper-cases a complexity and checks it is known.
func NormalizeComplexity(value string) (string, bool) {
	upper := strings.ToUpper(strings.TrimSpace(value))
	for _, c := range Complexities {
		if c == upper {
			return c, true
		}
	}
	return "", false
}
