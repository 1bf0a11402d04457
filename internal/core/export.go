package core

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/valter-silva-au/tempo/pkg/models"
)

// ExportMarkdown renders the collection as a flat markdown checklist,
// sorted by manual order. Each task is one checkbox line carrying its
// category, tags, due date, and estimate markers, with notes and subtasks
// indented beneath.
func ExportMarkdown(tasks []models.Task) string {
	sorted := make([]models.Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})

	var b strings.Builder
	for _, task := range sorted {
		b.WriteString(markdownLine(task))
		b.WriteString("\n")

		if task.Notes != "" {
			for _, line := range strings.Split(task.Notes, "\n") {
				fmt.Fprintf(&b, "  %s\n", line)
			}
		}
		for _, st := range task.Subtasks {
			fmt.Fprintf(&b, "  - %s %s\n", checkbox(st.Completed), st.Text)
		}
	}
	return b.String()
}

func markdownLine(task models.Task) string {
	parts := []string{"-", checkbox(task.Completed)}

	if task.Category != "" {
		parts = append(parts, "@"+string(task.Category))
	}
	for _, tag := range task.Tags {
		parts = append(parts, "#"+tag)
	}
	if task.DueDate != "" {
		parts = append(parts, fmt.Sprintf("(due: %s)", task.DueDate))
	}
	if task.TimeEstimate > 0 {
		parts = append(parts, fmt.Sprintf("(est: %dm)", task.TimeEstimate))
	}

	parts = append(parts, task.Text)

	if task.Completed && task.CompletedAt != nil {
		parts = append(parts, fmt.Sprintf("(done: %s)", task.CompletedAt.Format(dueDateLayout)))
	}

	return strings.Join(parts, " ")
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// ExportJSON serializes the collection verbatim, pretty-printed.
func ExportJSON(tasks []models.Task) (string, error) {
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshalling tasks: %w", err)
	}
	return string(data), nil
}

// ExportYAML serializes the collection as a YAML document.
func ExportYAML(tasks []models.Task) (string, error) {
	data, err := yaml.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("marshalling tasks: %w", err)
	}
	return string(data), nil
}

// ImportJSON strictly parses a task-array payload. Any parse failure is
// returned without producing a partial result; callers only replace their
// collection on a nil error.
func ImportJSON(text string) ([]models.Task, error) {
	var tasks []models.Task
	if err := json.Unmarshal([]byte(text), &tasks); err != nil {
		return nil, fmt.Errorf("parsing task list: %w", err)
	}
	return tasks, nil
}
