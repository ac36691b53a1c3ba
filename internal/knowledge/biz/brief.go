package biz

import (
	"html"
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"

	"github.com/lk2023060901/knowcast-backend/internal/knowledge/types"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/result"
)

var (
	reLineBreak    = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</li>|</pre>|</blockquote>`)
	reHeadingClose = regexp.MustCompile(`(?i)</h[1-6]>`)
	reTag          = regexp.MustCompile(`<[^>]+>`)
	reBlankRun     = regexp.MustCompile(`\n{3,}`)
)

// FormatForPodcast reshapes an extraction into script generator input. The answer is
// markdown; the brief carries it as plain text so the model does not read out markup.
func (e *Extractor) FormatForPodcast(res *types.ExtractionResult) *types.PodcastBrief {
	brief := &types.PodcastBrief{Sources: []types.Source{}}
	if res == nil {
		brief.Status = result.Failed(nil)
		return brief
	}
	if !res.OK() {
		brief.Status = result.Failed(res.Err())
		return brief
	}

	brief.Status = result.Succeeded()
	brief.Topic = res.Query
	brief.Content = MarkdownToText(res.Answer)
	if res.Sources != nil {
		brief.Sources = res.Sources
	}
	brief.Metadata = types.BriefMetadata{
		OriginalQuery:    res.Query,
		ExtractionMethod: string(e.provider.GetID()) + "_answer",
	}
	return brief
}

// MarkdownToText renders Markdown to HTML and then strips the tags
func MarkdownToText(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}

	rendered := string(blackfriday.Run([]byte(md)))
	rendered = reLineBreak.ReplaceAllString(rendered, "\n")
	rendered = reHeadingClose.ReplaceAllString(rendered, "\n\n")
	text := html.UnescapeString(reTag.ReplaceAllString(rendered, ""))

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		kept = append(kept, strings.TrimSpace(line))
	}
	text = reBlankRun.ReplaceAllString(strings.Join(kept, "\n"), "\n\n")
	return strings.TrimSpace(text)
}
