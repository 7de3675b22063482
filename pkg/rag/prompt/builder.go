package prompt

import (
	"strings"

	"portfolio-assistant-be/pkg/rag/search"
)

// SystemBuilder assembles the system message for one chat turn.
type SystemBuilder struct {
	documents []*search.Document
}

func NewSystemBuilder(documents []*search.Document) *SystemBuilder {
	return &SystemBuilder{documents: documents}
}

// Build produces the full system message: persona, retrieved context, and
// the output contract the model must honor.
func (b *SystemBuilder) Build() string {
	var prompt strings.Builder

	b.writePersona(&prompt)
	b.writeContext(&prompt)
	b.writeRules(&prompt)

	return prompt.String()
}

func (b *SystemBuilder) writePersona(prompt *strings.Builder) {
	prompt.WriteString("<role>\n")
	prompt.WriteString("You are the assistant on Jordan's portfolio site. ")
	prompt.WriteString("You answer visitor questions about Jordan's projects, skills, and background.\n")
	prompt.WriteString("</role>\n\n")
}

func (b *SystemBuilder) writeContext(prompt *strings.Builder) {
	block := FormatContext(b.documents)
	if block == "" {
		prompt.WriteString("<context>\n")
		prompt.WriteString("No documented context was retrieved for this question.\n")
		prompt.WriteString("</context>\n\n")
		return
	}

	prompt.WriteString("<context>\n")
	prompt.WriteString(block)
	prompt.WriteString("</context>\n\n")
}

func (b *SystemBuilder) writeRules(prompt *strings.Builder) {
	prompt.WriteString("<rules>\n")
	prompt.WriteString("1. Only state facts present in the context above. Never invent project details. If the context does not cover the question, say so.\n")
	prompt.WriteString("2. Respond in semantic HTML using only these tags: <p>, <strong>, <em>, <ul>, <ol>, <li>, <h3>, <a>.\n")
	prompt.WriteString("3. Never wrap the response in markdown code fences.\n")
	prompt.WriteString("4. Link to a project exactly as <a href=\"/work/{slug}\">{name}</a>, using the slug from the context.\n")
	prompt.WriteString("5. Never include <img> tags or image URLs; illustrations are rendered separately.\n")
	prompt.WriteString("</rules>\n")
}
