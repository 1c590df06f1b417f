package template

import "github.com/stemsi/survey-seeder/internal/model"

func opts(correct int, texts ...string) []model.Option {
	out := make([]model.Option, len(texts))
	for i, t := range texts {
		out[i] = model.Option{Text: t, IsCorrect: i == correct}
	}
	return out
}

// Builtin returns the templates shipped with the seeder. Each call builds
// fresh values, so nothing outside the caller can observe or mutate them.
func Builtin() []model.SurveyTemplate {
	return []model.SurveyTemplate{
		goFundamentals(),
		webSecurityBasics(),
	}
}

func goFundamentals() model.SurveyTemplate {
	return model.SurveyTemplate{
		ID:             "go-fundamentals",
		Title:          "Go Fundamentals Assessment",
		Description:    "Checks working knowledge of the Go type system, error handling and concurrency primitives.",
		Duration:       30,
		TotalQuestions: 6,
		PassingScore:   70,
		MaxAttempts:    3,
		Sections: []model.SectionTemplate{
			{
				Title:          "Language Basics",
				Description:    "Types, zero values and interfaces.",
				QuestionsCount: 3,
				Order:          1,
				Questions: []model.QuestionTemplate{
					{
						Text:        "What is the zero value of a map declared with `var m map[string]int`?",
						Type:        model.QuestionTypeSingleChoice,
						Complexity:  model.ComplexityEasy,
						Options:     opts(1, "An empty, writable map", "nil", "A map with one zero entry", "It does not compile"),
						Explanation: "Maps are reference types; an uninitialised map is nil and panics on write.",
						Points:      1,
					},
					{
						Text:        "Which statements about interfaces are true?",
						Type:        model.QuestionTypeMultipleChoice,
						Complexity:  model.ComplexityMedium,
						Options: []model.Option{
							{Text: "A type satisfies an interface implicitly", IsCorrect: true},
							{Text: "An interface holding a nil pointer is itself nil", IsCorrect: false},
							{Text: "The empty interface is satisfied by every type", IsCorrect: true},
							{Text: "Interfaces must be declared in the implementing package", IsCorrect: false},
						},
						Explanation: "Satisfaction is structural; a typed nil stored in an interface makes the interface non-nil.",
						Points:      2,
					},
					{
						Text:        "What does `errors.Is(err, target)` do?",
						Type:        model.QuestionTypeSingleChoice,
						Complexity:  model.ComplexityMedium,
						Options:     opts(2, "Compares error strings", "Checks the dynamic type of err", "Walks the wrap chain looking for target", "Converts err into target"),
						Explanation: "errors.Is unwraps err repeatedly and reports whether any error in the chain matches target.",
						Points:      2,
					},
				},
			},
			{
				Title:          "Concurrency",
				Description:    "Goroutines, channels and synchronisation.",
				QuestionsCount: 3,
				Order:          2,
				Questions: []model.QuestionTemplate{
					{
						Text:        "What happens when you send on a closed channel?",
						Type:        model.QuestionTypeSingleChoice,
						Complexity:  model.ComplexityEasy,
						Options:     opts(0, "The program panics", "The send blocks forever", "The value is dropped", "The channel is reopened"),
						Explanation: "Sending on a closed channel always panics; receiving yields the zero value.",
						Points:      1,
					},
					{
						Text:        "Which tools bound the number of goroutines running at once?",
						Type:        model.QuestionTypeMultipleChoice,
						Complexity:  model.ComplexityHard,
						Options: []model.Option{
							{Text: "A buffered channel used as a semaphore", IsCorrect: true},
							{Text: "errgroup.Group with SetLimit", IsCorrect: true},
							{Text: "runtime.Gosched", IsCorrect: false},
							{Text: "sync.Once", IsCorrect: false},
						},
						Explanation: "Semaphores and errgroup limits cap concurrency; Gosched and Once do not.",
						Points:      3,
					},
					{
						Text:        "What does `context.WithTimeout` return besides the derived context?",
						Type:        model.QuestionTypeSingleChoice,
						Complexity:  model.ComplexityMedium,
						Options:     opts(3, "A channel", "An error", "A deadline", "A cancel function"),
						Explanation: "The cancel function must be called to release resources even if the timeout fires.",
						Points:      2,
					},
				},
			},
		},
	}
}

func webSecurityBasics() model.SurveyTemplate {
	return model.SurveyTemplate{
		ID:             "web-security-basics",
		Title:          "Web Security Basics",
		Description:    "Common web vulnerabilities and the controls that prevent them.",
		Duration:       20,
		TotalQuestions: 5,
		PassingScore:   60,
		MaxAttempts:    2,
		Sections: []model.SectionTemplate{
			{
				Title:          "Injection",
				Description:    "SQL injection and cross-site scripting.",
				QuestionsCount: 2,
				Order:          1,
				Questions: []model.QuestionTemplate{
					{
						Text:        "Which practice prevents SQL injection most reliably?",
						Type:        model.QuestionTypeSingleChoice,
						Complexity:  model.ComplexityEasy,
						Options:     opts(2, "Escaping quotes by hand", "Hiding database errors", "Parameterised queries", "Using POST instead of GET"),
						Explanation: "Placeholders keep data out of the SQL grammar entirely.",
						Points:      1,
					},
					{
						Text:        "Which measures reduce the impact of stored XSS?",
						Type:        model.QuestionTypeMultipleChoice,
						Complexity:  model.ComplexityMedium,
						Options: []model.Option{
							{Text: "Context-aware output encoding", IsCorrect: true},
							{Text: "A restrictive Content-Security-Policy", IsCorrect: true},
							{Text: "Longer session timeouts", IsCorrect: false},
						},
						Explanation: "Encoding stops script injection and CSP limits what injected script can do.",
						Points:      2,
					},
				},
			},
			{
				Title:          "Authentication",
				Description:    "Credentials, sessions and tokens.",
				QuestionsCount: 2,
				Order:          2,
				Questions: []model.QuestionTemplate{
					{
						Text:        "How should passwords be stored?",
						Type:        model.QuestionTypeSingleChoice,
						Complexity:  model.ComplexityEasy,
						Options:     opts(1, "Encrypted with AES", "Hashed with a slow, salted algorithm", "Base64 encoded", "In plain text behind a firewall"),
						Explanation: "bcrypt, scrypt or argon2 make offline guessing expensive.",
						Points:      1,
					},
					{
						Text:        "Which JWT claim limits how long a token is accepted?",
						Type:        model.QuestionTypeSingleChoice,
						Complexity:  model.ComplexityMedium,
						Options:     opts(0, "exp", "sub", "iss", "jti"),
						Explanation: "exp is the expiry time after which the token must be rejected.",
						Points:      1,
					},
				},
			},
			{
				Title:          "Transport",
				Description:    "Protecting data in transit.",
				QuestionsCount: 1,
				Order:          3,
				Questions: []model.QuestionTemplate{
					{
						Text:        "What does the HSTS header instruct a browser to do?",
						Type:        model.QuestionTypeSingleChoice,
						Complexity:  model.ComplexityHard,
						Options:     opts(3, "Cache responses longer", "Block third-party cookies", "Disable JavaScript", "Only use HTTPS for the host"),
						Explanation: "Strict-Transport-Security pins the host to HTTPS for max-age seconds.",
						Points:      2,
					},
				},
			},
		},
	}
}
