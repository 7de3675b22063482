package prompt

import (
	"strings"

	"portfolio-assistant-be/internal/constant"
	"portfolio-assistant-be/pkg/rag/search"
)

// FormatContext renders retrieved documents into the block the system
// message embeds. Pure and order-preserving: documents arrive rank-ordered
// from the orchestrator and are rendered as-is. Empty input yields "".
func FormatContext(documents []*search.Document) string {
	if len(documents) == 0 {
		return ""
	}

	var block strings.Builder
	for i, doc := range documents {
		if i > 0 {
			block.WriteString("\n")
		}
		switch doc.ContentType {
		case constant.ContentTypeProject:
			writeProject(&block, doc.Project)
		case constant.ContentTypeGeneralInfo:
			writeGeneralInfo(&block, doc.GeneralInfo)
		}
	}
	return block.String()
}

func writeProject(block *strings.Builder, project *search.ProjectContent) {
	if project == nil {
		return
	}
	block.WriteString("PROJECT: " + project.Name + "\n")
	if project.Slug != "" {
		block.WriteString("Slug: " + project.Slug + "\n")
	}
	if project.Summary != "" {
		block.WriteString("Summary: " + project.Summary + "\n")
	}
	writeList(block, "Features", project.Features)
	writeList(block, "Tools", project.Tools)
	writeList(block, "Tags", project.Tags)
}

func writeGeneralInfo(block *strings.Builder, info *search.GeneralInfoContent) {
	if info == nil {
		return
	}
	block.WriteString("ABOUT: " + info.Title + "\n")
	if info.Content != "" {
		block.WriteString(info.Content + "\n")
	}
}

func writeList(block *strings.Builder, label string, values []string) {
	if len(values) == 0 {
		return
	}
	block.WriteString(label + ": " + strings.Join(values, ", ") + "\n")
}
