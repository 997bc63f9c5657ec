package model

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// GuestUserID is used when no user id has been configured.
const GuestUserID = "guest"

// ChatMessage is one entry of a conversation transcript.
type ChatMessage struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SubmissionSummary is the last submission outcome shared with the assistant.
type SubmissionSummary struct {
	Completed bool             `json:"completed"`
	Passed    bool             `json:"passed"`
	Results   []TestCaseResult `json:"results"`
}

// ProblemContext grounds the assistant in the problem being solved.
// It is forwarded verbatim; the client never interprets it.
type ProblemContext struct {
	UserID              string             `json:"userId"`
	Concept             string             `json:"concept,omitempty"`
	Complexity          string             `json:"complexity,omitempty"`
	Keywords            []string           `json:"keywords,omitempty"`
	ProblemTitle        string             `json:"problemTitle,omitempty"`
	ProblemDescription  string             `json:"problemDescription,omitempty"`
	ProgrammingLanguage string             `json:"programmingLanguage,omitempty"`
	CurrentCode         string             `json:"currentCode,omitempty"`
	TestCases           []TestCase         `json:"testCases,omitempty"`
	SubmissionResults   *SubmissionSummary `json:"submissionResults,omitempty"`
}

// ChatRequest is the body of the chat call.
type ChatRequest struct {
	Message string         `json:"message"`
	Context ProblemContext `json:"context"`
}

// NewProblemContext builds a context from a problem and the code being edited.
func NewProblemContext(userID, complexity string, problem Problem, lang Language, code string, last *BatchResult) ProblemContext {
	if userID == "" {
		userID = GuestUserID
	}
	ctx := ProblemContext{
		UserID:              userID,
		Concept:             problem.Concept,
		Complexity:          complexity,
		Keywords:            problem.Tags,
		ProblemTitle:        problem.ProblemTitle,
		ProblemDescription:  problem.ProblemStatement,
		ProgrammingLanguage: lang.DisplayName,
		CurrentCode:         code,
		TestCases:           problem.TestCases,
	}
	if ctx.ProgrammingLanguage == "" {
		ctx.ProgrammingLanguage = LanguageJava.DisplayName
	}
	if last != nil {
		ctx.SubmissionResults = &SubmissionSummary{
			Completed: last.Completed,
			Passed:    last.Passed,
			Results:   last.Results,
		}
	}
	return ctx
}
