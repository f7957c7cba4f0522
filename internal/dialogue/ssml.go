package dialogue

import (
	"strings"
)

var ssmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// RenderSSML wraps the transcript in speech markup: one voice element per
// line, a short break between speakers, the whole script in a speak root.
func RenderSSML(lines []Line) []byte {
	var b strings.Builder
	b.WriteString("<speak>\n")
	for i, l := range lines {
		if i > 0 {
			b.WriteString("  <break time=\"400ms\"/>\n")
		}
		b.WriteString("  <voice name=\"")
		b.WriteString(ssmlEscaper.Replace(l.Persona))
		b.WriteString("\"><p>")
		b.WriteString(ssmlEscaper.Replace(l.Text))
		b.WriteString("</p></voice>\n")
	}
	b.WriteString("</speak>\n")
	return []byte(b.String())
}
