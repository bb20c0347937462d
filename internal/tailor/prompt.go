package tailor

import (
	"strings"

	_ "embed"
)

//go:embed prompt.md
var promptTemplate string

// buildPrompt renders the master template for one attempt. Feedback from
// the previous attempt is injected so the model fixes what was scored down,
// not just regenerates.
func buildPrompt(in Input, feedback []string) string {
	constraintRules := "None."
	if rules := in.Profile.Rules(); len(rules) > 0 {
		constraintRules = "- " + strings.Join(rules, "\n- ")
	}

	feedbackBlock := "None, this is the first draft."
	if len(feedback) > 0 {
		feedbackBlock = "- " + strings.Join(feedback, "\n- ")
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{JOB_TITLE}}", in.JobTitle)
	prompt = strings.ReplaceAll(prompt, "{{EMPLOYER}}", in.Employer)
	prompt = strings.ReplaceAll(prompt, "{{JOB_DESCRIPTION}}", in.JobDescription)
	prompt = strings.ReplaceAll(prompt, "{{BASE_CV}}", in.BaseCV)
	prompt = strings.ReplaceAll(prompt, "{{CONSTRAINTS}}", constraintRules)
	prompt = strings.ReplaceAll(prompt, "{{FEEDBACK}}", feedbackBlock)
	return prompt
}
