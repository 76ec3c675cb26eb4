package writer

import (
	"fmt"
	"strings"
)

var facetInstructions = map[Facet]string{
	FacetConcept:      "Explain what the term means: a precise definition followed by the core idea in plain language.",
	FacetExample:      "Illustrate the term with concrete, realistic examples a reader can relate to.",
	FacetRelatedTerms: "Introduce closely related terms and explain how each one connects to or differs from this term.",
	FacetImportance:   "Explain why the term matters: who it affects, where it shows up, and what decisions depend on it.",
	FacetInDepth:      "Explore the term in depth: mechanisms, history, debates and common misconceptions.",
}

func piecePrompt(s Subject, facet Facet, grounding, language string) string {
	var sb strings.Builder
	sb.WriteString("Write a short article about the term below.\n")
	sb.WriteString("Focus: ")
	sb.WriteString(facetInstructions[facet])
	sb.WriteString("\n\nTerm: ")
	sb.WriteString(s.Name)
	if d := strings.TrimSpace(s.Description); d != "" {
		sb.WriteString("\nDescription: ")
		sb.WriteString(d)
	}
	writeLanguage(&sb, language)
	sb.WriteString("\n\nReference documents (JSON array of {title, content}). Use only these for facts:\n")
	if strings.TrimSpace(grounding) == "" {
		sb.WriteString("[]")
	} else {
		sb.WriteString(grounding)
	}
	sb.WriteString("\n\nReturn an object with a \"title\" and a Markdown \"content\" of 300 to 600 words.")
	return sb.String()
}

func summaryPrompt(p Piece, language string) string {
	var sb strings.Builder
	sb.WriteString("Summarize the following article in two or three sentences. Output only the summary text.")
	writeLanguage(&sb, language)
	sb.WriteString("\n\nTitle: ")
	sb.WriteString(p.Title)
	sb.WriteString("\n\n")
	sb.WriteString(p.Content)
	return sb.String()
}

func quizPrompt(s Subject, p Piece, n int, language string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Write %d multiple-choice questions that test understanding of the article below about %q.", n, s.Name))
	sb.WriteString("\nEach question has four options, exactly one correct; \"answer\" is the zero-based index of the correct option.")
	writeLanguage(&sb, language)
	sb.WriteString("\n\nTitle: ")
	sb.WriteString(p.Title)
	sb.WriteString("\n\n")
	sb.WriteString(p.Content)
	sb.WriteString("\n\nReturn an object with a \"quizzes\" array.")
	return sb.String()
}

func writeLanguage(sb *strings.Builder, language string) {
	if language != "" {
		sb.WriteString("\nWrite in language: ")
		sb.WriteString(language)
	}
}
