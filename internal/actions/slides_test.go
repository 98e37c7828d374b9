package actions_test

import (
	"strings"
	"testing"

	"copydesk/internal/actions"
)

func TestBuildSlidesSplitsParagraphs(t *testing.T) {
	content := "The Hook\n\nFirst point\nwith detail\n\nSecond point"
	slides := actions.BuildSlides(content, 8)
	if len(slides) != 3 {
		t.Fatalf("slides = %d", len(slides))
	}
	if slides[0].Body != "The Hook" || slides[0].Title != "" {
		t.Fatalf("slide 0 = %+v", slides[0])
	}
	if slides[1].Title != "First point" || slides[1].Body != "with detail" {
		t.Fatalf("slide 1 = %+v", slides[1])
	}
	for i, slide := range slides {
		if slide.Index != i {
			t.Fatalf("slide %d index = %d", i, slide.Index)
		}
	}
}

func TestBuildSlidesFoldsOverflow(t *testing.T) {
	content := "a\n\nb\n\nc\n\nd\n\ne"
	slides := actions.BuildSlides(content, 3)
	if len(slides) != 3 {
		t.Fatalf("slides = %d", len(slides))
	}
	last := slides[2].Body
	for _, want := range []string{"c", "d", "e"} {
		if !strings.Contains(last, want) {
			t.Fatalf("overflow slide missing %q: %q", want, last)
		}
	}
}

func TestBuildSlidesEmptyContent(t *testing.T) {
	if slides := actions.BuildSlides("   \n\n  ", 5); slides != nil {
		t.Fatalf("slides = %+v", slides)
	}
}
