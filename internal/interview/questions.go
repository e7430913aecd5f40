// Package interview generates practice interview questions from a fixed
// template bank, tailored by position, experience level and skills.
package interview

import "strings"

const (
	CategoryGeneral    = "General"
	CategoryBehavioral = "Behavioral"
	CategoryTechnical  = "Technical"
	CategoryIndustry   = "Industry-Specific"
	CategoryCompanyFit = "Company Fit"
)

const maxSkills = 3

type Request struct {
	Position   string `json:"position"`
	Experience string `json:"experience"`
	Skills     string `json:"skills"`
}

type Question struct {
	ID       int    `json:"id"`
	Category string `json:"category"`
	Question string `json:"question"`
	Tips     string `json:"tips"`
}

type Response struct {
	Questions []Question `json:"questions"`
}

type template struct {
	category string
	question string
	tips     string
}

var experienceLabels = map[string]string{
	"entry":  "an entry-level",
	"mid":    "a mid-level",
	"senior": "a senior",
	"lead":   "a lead or manager",
}

var baseTemplates = []template{
	{CategoryGeneral, "Tell me about yourself and why you are interested in the {position} role.",
		"Keep it to two minutes: current role, relevant achievements, and why this position is the next step."},
	{CategoryGeneral, "What do you know about the responsibilities of a {position}?",
		"Show you researched the role. Tie two or three responsibilities to work you have already done."},
	{CategoryBehavioral, "Describe a time you handled a difficult situation at work.",
		"Use the STAR method: Situation, Task, Action, Result. Finish with what you learned."},
	{CategoryBehavioral, "Tell me about a mistake you made and how you fixed it.",
		"Own the mistake, focus on the recovery, and mention the process change that prevents it now."},
	{CategoryIndustry, "Which trends do you think will shape the work of a {position} over the next few years?",
		"Name one or two concrete trends and explain how you are preparing for them."},
	{CategoryCompanyFit, "Why do you want to work for our company?",
		"Connect the company's mission or products to your own goals. Avoid answers about salary or perks."},
	{CategoryCompanyFit, "What kind of work environment helps you do your best work?",
		"Be honest but flexible. Give an example of how you adapted to a team's way of working."},
}

var experienceTemplates = map[string]template{
	"entry": {CategoryBehavioral, "How do you approach learning something new when you have little experience with it?",
		"Describe a recent example and the resources you used. Employers value curiosity at this level."},
	"mid": {CategoryBehavioral, "Describe a project you owned from start to finish as {level} {position}.",
		"Highlight the decisions you made yourself and the measurable outcome."},
	"senior": {CategoryBehavioral, "How have you mentored other people as {level} {position}?",
		"Give a specific person or team you helped grow and what changed for them."},
	"lead": {CategoryBehavioral, "How do you set priorities and make trade-offs for a team as {level} {position}?",
		"Explain your framework, then walk through one real trade-off and how you communicated it."},
}

var skillTemplate = template{CategoryTechnical, "How have you applied {skill} in your work as a {position}?",
	"Pick one project where {skill} made a visible difference and describe your personal contribution."}

var fallbackTechnical = template{CategoryTechnical, "Which tools or skills are most important for a {position}, and how have you used them?",
	"Name the tools listed in the job posting that you know well and back each one with an example."}

// Generate returns the question set for req. The same request always yields
// the same questions, numbered from 1.
func Generate(req Request) []Question {
	position := strings.TrimSpace(req.Position)
	experience := strings.ToLower(strings.TrimSpace(req.Experience))
	level := experienceLabels[experience]

	var picked []template
	picked = append(picked, baseTemplates[:4]...)
	if t, ok := experienceTemplates[experience]; ok {
		picked = append(picked, t)
	}

	skills := ParseSkills(req.Skills)
	if len(skills) == 0 {
		picked = append(picked, fallbackTechnical)
	}
	picked = append(picked, baseTemplates[4:]...)

	questions := make([]Question, 0, len(picked)+len(skills))
	add := func(t template, skill string) {
		fill := strings.NewReplacer("{position}", position, "{level}", level, "{skill}", skill)
		questions = append(questions, Question{
			ID:       len(questions) + 1,
			Category: t.category,
			Question: fill.Replace(t.question),
			Tips:     fill.Replace(t.tips),
		})
	}
	for i, t := range picked {
		add(t, "")
		// Skill questions follow the general block.
		if i == 1 {
			for _, s := range skills {
				add(skillTemplate, s)
			}
		}
	}
	return questions
}

// ParseSkills splits a comma or newline separated list, dropping blanks and
// duplicates, and keeps at most three entries.
func ParseSkills(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '\n' || r == ';' })
	seen := make(map[string]bool)
	var skills []string
	for _, f := range fields {
		s := strings.TrimSpace(f)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		skills = append(skills, s)
		if len(skills) == maxSkills {
			break
		}
	}
	return skills
}
