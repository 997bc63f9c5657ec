package mockserver

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strings"

	"codearena/internal/model"
)

type problemTemplate struct {
	title     string
	statement string
	function  string
	input     string
	output    string
	cases     [][2]string
	tags      []string
	java      string
	python    string
}

var templates = []problemTemplate{
	{
		title:     "Sum of Array",
		statement: "Given an integer array `nums`, return the **sum** of its elements.\n\nAn empty array sums to `0`.",
		function:  "sumArray",
		input:     "int[] nums",
		output:    "int result",
		cases:     [][2]string{{`[1,2,3]`, `6`}, {`[]`, `0`}, {`[-4,4,10]`, `10`}},
		tags:      []string{"array", "math"},
		java:      "class Solution {\n    public int sumArray(int[] nums) {\n        // write your code here\n        return 0;\n    }\n}\n",
		python:    "class Solution:\n    def sumArray(self, nums):\n        # write your code here\n        return 0\n",
	},
	{
		title:     "Reverse a String",
		statement: "Given a string `s`, return it with its characters in **reverse** order.",
		function:  "reverseString",
		input:     "String s",
		output:    "String result",
		cases:     [][2]string{{`"hello"`, `"olleh"`}, {`""`, `""`}, {`"ab"`, `"ba"`}},
		tags:      []string{"string", "two-pointers"},
		java:      "class Solution {\n    public String reverseString(String s) {\n        // write your code here\n        return \"\";\n    }\n}\n",
		python:    "class Solution:\n    def reverseString(self, s):\n        # write your code here\n        return \"\"\n",
	},
}

// cannedProblem picks a template by concept so repeated calls are stable.
func cannedProblem(concept, complexity string) model.Problem {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(concept)))
	tpl := templates[int(h.Sum32())%len(templates)]

	cases := make([]model.TestCase, 0, len(tpl.cases))
	for _, tc := range tpl.cases {
		cases = append(cases, model.TestCase{
			Input:  []json.RawMessage{json.RawMessage(tc[0])},
			Output: json.RawMessage(tc[1]),
		})
	}
	return model.Problem{
		Concept:          concept,
		Difficulty:       titleCase(complexity),
		ProblemTitle:     tpl.title,
		ProblemStatement: fmt.Sprintf("%s\n\n_Concept: %s_", tpl.statement, concept),
		TestCases:        cases,
		Tags:             tpl.tags,
		Structure: model.Structure{
			ProblemName:     tpl.title,
			FunctionName:    tpl.function,
			InputStructure:  []model.InputField{{InputField: tpl.input}},
			OutputStructure: model.OutputField{OutputField: tpl.output},
		},
		JavaBoilerplate:   tpl.java,
		PythonBoilerplate: tpl.python,
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
