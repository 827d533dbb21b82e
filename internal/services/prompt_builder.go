package services

import (
	"fmt"

	"infographic-service/internal/models"
)

// sizeSpec describes the canvas and layout guidance for one output format
type sizeSpec struct {
	label  string
	canvas string
	layout string
}

var sizeSpecs = map[models.Size]sizeSpec{
	models.Size16x9: {
		label:  "16:9 presentation slide",
		canvas: "1280x720 pixels, landscape",
		layout: "Arrange content in horizontal bands or a grid of cards. Keep a clear visual hierarchy with one headline area and 3-5 content blocks.",
	},
	models.SizeA4Landscape: {
		label:  "A4 landscape document",
		canvas: "1123x794 pixels (A4 at 96dpi, landscape)",
		layout: "Use a printable multi-column layout with generous margins. Avoid elements that would be cut at page edges.",
	},
	models.SizeA4Portrait: {
		label:  "A4 portrait document",
		canvas: "794x1123 pixels (A4 at 96dpi, portrait)",
		layout: "Use a printable single-column flow from top to bottom with section dividers. Avoid elements that would be cut at page edges.",
	},
	models.SizeMobile: {
		label:  "750px-wide mobile graphic",
		canvas: "750 pixels wide, height as needed",
		layout: "Stack sections vertically for scrolling on a phone. Use large type and compact cards.",
	},
	models.SizeStory: {
		label:  "1080px-wide social graphic",
		canvas: "1080x1920 pixels, portrait",
		layout: "Design for a full-screen vertical story: bold headline on top, a small number of punchy visual blocks below.",
	},
}

var modeClauses = map[models.Mode]string{
	models.ModeFull:    "Cover all the key points of the text. Preserve concrete facts, figures and structure; do not drop sections.",
	models.ModeSummary: "Distill the text to its essential message. Pick only the few most important points and present them boldly.",
}

// BuildPrompt deterministically maps a submission to the single prompt sent to
// the completion API. Same input, same prompt.
func BuildPrompt(content string, mode models.Mode, size models.Size) string {
	spec, ok := sizeSpecs[size]
	if !ok {
		spec = sizeSpecs[models.Size16x9]
	}
	clause, ok := modeClauses[mode]
	if !ok {
		clause = modeClauses[models.ModeFull]
	}

	return fmt.Sprintf(`Create an infographic as a single self-contained HTML document.

OUTPUT FORMAT: %s
Canvas: %s
%s

CONTENT TREATMENT: %s

REQUIREMENTS:
- Respond with ONLY the HTML document. No markdown, no code fences, no explanatory text.
- Inline all CSS in a <style> block; do not reference external stylesheets, scripts or fonts.
- Use semantic structure (headings, lists, figures) and a coherent color palette.
- Numbers and comparisons from the text should become visual elements (bars, big numerals, icons drawn with CSS) where that helps comprehension.
- The document must render correctly inside a sandboxed iframe with no network access.

SOURCE TEXT:
%s`, spec.label, spec.canvas, spec.layout, clause, content)
}
