package testutil

import (
	"encoding/json"

	"codearena/internal/model"
)

// SampleProblem returns a small generated problem with two test cases.
func SampleProblem() model.Problem {
	return model.Problem{
		Concept:          "arrays",
		Difficulty:       "Easy",
		ProblemTitle:     "Sum of Array",
		ProblemStatement: "Return the **sum** of all elements in `nums`.",
		TestCases: []model.TestCase{
			{Input: []json.RawMessage{json.RawMessage(`[1,2,3]`)}, Output: json.RawMessage(`6`)},
			{Input: []json.RawMessage{json.RawMessage(`[]`)}, Output: json.RawMessage(`0`)},
		},
		Tags: []string{"array", "math"},
		Structure: model.Structure{
			ProblemName:     "Sum of Array",
			FunctionName:    "sumArray",
			InputStructure:  []model.InputField{{InputField: "int[] nums"}},
			OutputStructure: model.OutputField{OutputField: "int result"},
		},
		JavaBoilerplate:   "class Solution {\n    public int sumArray(int[] nums) {\n        return 0;\n    }\n}\n",
		PythonBoilerplate: "class Solution:\n    def sumArray(self, nums):\n        return 0\n",
	}
}
