// Package study turns recent misses into LLM-written study plans.
package study

import (
	"fmt"
	"strings"

	"jeopardy-trainer-go/internal/models"
)

// ExamplesPerCategory bounds how many misses of one category reach the prompt.
const ExamplesPerCategory = 10

const Uncategorized = "Uncategorized"

const SystemPrompt = `You are a Jeopardy! training analyst channeling the wit and clarity of Ken Jennings. You produce error-free JSON only (no Markdown, no prose outside JSON). You transform the user's missed clues into a precise study plan with high-signal recommendations.

Constraints and behavior guidelines:
- Output must be valid JSON matching the provided schema exactly.
- Be concrete, specific, and Jeopardy!-aware: clue archetypes, wordplay, eponyms, before-and-after, homophones, hidden capitals, lateral hints, "pivot" facts that unlock families of clues.
- Group related topics into 3 to 6 crisp, memorable umbrellas.
- Use a brisk, insightful, slightly playful tone, but keep it practical and kind.
- Sources: prefer trustworthy, compact, high-yield texts. Only list sources that actually exist. Provide at least one free source per topic if possible. Wikipedia links: 1 to 2 canonical pages.
- Study strategy: concrete drills, mnemonics tuned to Jeopardy! clue styles, buzzer discipline and retrieval speed practice, cross-category bridges.
- Pattern analysis: identify clue-level failure modes such as misreading pivot words, ignoring dates, missing wordplay, mixing adjacent domains.
- Keep recommendations manageable: high-ROI only.

Validation:
- Return JSON that validates against the schema provided by the user.
- No extra keys. No comments. No trailing commas. No Markdown.`

const responseSchema = `{
  "analysis": "Overall pattern summary (2-3 sentences) - identify clue-level failure modes",
  "topics": [
    {
      "topic": "Memorable topic name (3-6 crisp umbrellas total)",
      "explanation": "Why this is a knowledge gap and Jeopardy!-specific patterns",
      "readings": ["Specific source 1 (must exist, high-yield)", "Specific source 2"],
      "wikipedia": ["https://en.wikipedia.org/wiki/CanonicalPage1"],
      "strategies": ["Concrete drill or mnemonic for Jeopardy! clue styles", "Buzzer/retrieval practice"]
    }
  ]
}`

type categoryGroup struct {
	name   string
	missed []models.MissedClue
}

// groupByCategory keeps categories in order of first appearance.
func groupByCategory(missed []models.MissedClue) []categoryGroup {
	index := map[string]int{}
	groups := []categoryGroup{}
	for _, m := range missed {
		name := Uncategorized
		if m.ClassifierCategory != nil && strings.TrimSpace(*m.ClassifierCategory) != "" {
			name = *m.ClassifierCategory
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, categoryGroup{name: name})
		}
		groups[i].missed = append(groups[i].missed, m)
	}
	return groups
}

// BuildPrompt renders the user message for the analyzer.
func BuildPrompt(missed []models.MissedClue, days int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The user answered %d Jeopardy! clues incorrectly in the past %d day(s).\n", len(missed), days)
	b.WriteString("Here are the missed clues, grouped by category:\n")
	for _, group := range groupByCategory(missed) {
		fmt.Fprintf(&b, "\n## %s (%d questions)\n", group.name, len(group.missed))
		for i, m := range group.missed {
			if i == ExamplesPerCategory {
				break
			}
			fmt.Fprintf(&b, "%d. Clue: %q\n   Response: %q\n   Original Category: %s\n",
				i+1, deref(m.Clue), deref(m.Response), deref(m.Category))
		}
		if extra := len(group.missed) - ExamplesPerCategory; extra > 0 {
			fmt.Fprintf(&b, "   ... and %d more questions\n", extra)
		}
	}
	b.WriteString("\nReturn your response as JSON in this exact format:\n")
	b.WriteString(responseSchema)
	return b.String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
