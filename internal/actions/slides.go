package actions

import "strings"

// BuildSlides splits draft content into carousel slides: one slide per
// paragraph, first line of a paragraph promoted to the slide title when the
// paragraph has more than one line. Paragraphs beyond the cap fold into the
// final slide so no content is dropped.
func BuildSlides(content string, maxSlides int) []Slide {
	if maxSlides < 2 {
		maxSlides = 2
	}

	paragraphs := splitParagraphs(content)
	if len(paragraphs) == 0 {
		return nil
	}

	slides := make([]Slide, 0, len(paragraphs))
	for _, paragraph := range paragraphs {
		title, body := splitTitle(paragraph)
		slides = append(slides, Slide{Title: title, Body: body})
	}

	if len(slides) > maxSlides {
		overflow := slides[maxSlides-1:]
		parts := make([]string, 0, len(overflow))
		for _, slide := range overflow {
			text := slide.Body
			if slide.Title != "" {
				text = slide.Title + "\n" + text
			}
			parts = append(parts, text)
		}
		slides = slides[:maxSlides-1]
		slides = append(slides, Slide{Body: strings.Join(parts, "\n\n")})
	}

	for i := range slides {
		slides[i].Index = i
	}
	return slides
}

func splitParagraphs(content string) []string {
	var out []string
	for _, block := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			out = append(out, block)
		}
	}
	return out
}

func splitTitle(paragraph string) (title, body string) {
	first, rest, found := strings.Cut(paragraph, "\n")
	if !found {
		return "", paragraph
	}
	return strings.TrimSpace(first), strings.TrimSpace(rest)
}
