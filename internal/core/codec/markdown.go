package codec

import (
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/colonyops/taskgraph/internal/core/task"
	"github.com/colonyops/taskgraph/pkg/tmpl"
)

// checklistLine matches "- [ ] title", "* [x] title", with any indentation.
var checklistLine = regexp.MustCompile(`^\s*[-*]\s+\[( |x|X)\]\s+(.+)$`)

const markdownBody = `# {{ .Title }}
{{ range .Sections }}
## {{ .Label }}
{{ range .Tasks }}
- {{ checkbox .Done }} {{ oneline .Title }}
{{- with .Description }}
  > {{ oneline . }}
{{- end }}
{{- with .Meta }}
  {{ . }}
{{- end }}
{{- end }}
{{ end }}
{{- if not .Sections }}
_No tasks._
{{ end -}}
`

var markdownTemplate = template.Must(tmpl.Parse("markdown", markdownBody))

type markdownTask struct {
	Title       string
	Description string
	Done        bool
	Meta        string
}

type markdownSection struct {
	Label string
	Tasks []markdownTask
}

type markdownData struct {
	Title    string
	Sections []markdownSection
}

func encodeMarkdown(doc Document) ([]byte, error) {
	title := doc.ListName
	if title == "" {
		title = "All Tasks"
	}

	fm, err := renderFrontmatter(Frontmatter{
		Title:      title,
		ListID:     doc.ListID,
		ExportedAt: doc.ExportedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("encode markdown front matter: %w", err)
	}

	data := markdownData{Title: oneLine(title)}
	for _, status := range task.Statuses {
		var section markdownSection
		for _, t := range doc.Tasks {
			if t.Status != status {
				continue
			}
			section.Tasks = append(section.Tasks, markdownTask{
				Title:       t.Title,
				Description: t.Description,
				Done:        t.Status == task.StatusCompleted,
				Meta:        metaLine(t),
			})
		}
		if len(section.Tasks) > 0 {
			section.Label = status.Label()
			data.Sections = append(data.Sections, section)
		}
	}

	body, err := tmpl.Execute(markdownTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("encode markdown: %w", err)
	}

	return []byte(fm + body), nil
}

// metaLine renders priority, due date, and tags as one line.
func metaLine(t task.Task) string {
	parts := []string{"priority: " + string(t.Priority)}
	if t.DueDate != nil {
		parts = append(parts, "due: "+t.DueDate.Format("2006-01-02"))
	}
	if len(t.Tags) > 0 {
		parts = append(parts, "tags: "+strings.Join(t.Tags, ", "))
	}
	return strings.Join(parts, " · ")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// decodeMarkdown turns every checklist line into a task input. Checked items
// are imported as completed, everything else as pending. Lines that are not
// checklist items are ignored, so decoding never fails.
func decodeMarkdown(data []byte) []task.Input {
	_, body := ParseFrontmatter(string(data))

	var out []task.Input
	for line := range strings.Lines(body) {
		m := checklistLine.FindStringSubmatch(strings.TrimRight(line, "\r\n"))
		if m == nil {
			continue
		}

		title := strings.TrimSpace(m[2])
		if title == "" {
			continue
		}

		status := task.StatusPending
		if strings.EqualFold(m[1], "x") {
			status = task.StatusCompleted
		}
		out = append(out, task.Input{Title: title, Status: status})
	}
	return out
}
