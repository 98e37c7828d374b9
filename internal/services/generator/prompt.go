package generator

import (
	"fmt"
	"strings"

	"copydesk/internal/revision"
)

const basePrompt = "You write publication-ready content derived from a spoken transcript. " +
	"Work only from what the transcript says. Return the finished text with no preamble or commentary."

var typePrompts = map[string]string{
	"linkedin_v2": basePrompt + " Produce a LinkedIn post: a strong one-line hook, short " +
		"paragraphs, a concrete takeaway, under 1300 characters.",
	"blog_post": basePrompt + " Produce a blog post in Markdown with a title line, an " +
		"opening that states the core idea, and section headings.",
	"quotes": basePrompt + " Extract the five most striking verbatim quotes, one per line, " +
		"each attributed to the speaker.",
	"title_ideas": basePrompt + " Propose ten title options, one per line, ranging from " +
		"plain to provocative.",
	"summary": basePrompt + " Produce a neutral summary in at most five sentences.",
}

func generatePrompt(analysisType string) string {
	if prompt, ok := typePrompts[analysisType]; ok {
		return prompt
	}
	return basePrompt + fmt.Sprintf(" Produce content of kind %q.", strings.ReplaceAll(analysisType, "_", " "))
}

const rewriteSystemPrompt = "You revise a content draft using a reviewer's scored feedback. " +
	"Keep what the reviewer praised, fix what the reviewer flagged, and stay faithful to the " +
	"source transcript. Return only the revised draft."

func rewriteUserPrompt(transcript, previousDraft string, feedback revision.JudgeResult) string {
	var b strings.Builder
	b.WriteString("TRANSCRIPT:\n")
	b.WriteString(strings.TrimSpace(transcript))
	b.WriteString("\n\nCURRENT DRAFT:\n")
	b.WriteString(previousDraft)
	fmt.Fprintf(&b, "\n\nREVIEWER SCORE: %.1f/10\n", feedback.Overall)
	if len(feedback.Improvements) > 0 {
		b.WriteString("IMPROVE:\n")
		for _, item := range feedback.Improvements {
			b.WriteString("- " + item + "\n")
		}
	}
	if len(feedback.Strengths) > 0 {
		b.WriteString("KEEP:\n")
		for _, item := range feedback.Strengths {
			b.WriteString("- " + item + "\n")
		}
	}
	if hook := strings.TrimSpace(feedback.RewrittenHook); hook != "" {
		b.WriteString("SUGGESTED HOOK:\n" + hook + "\n")
	}
	return b.String()
}
