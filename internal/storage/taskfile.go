// Package storage implements the flat-file persistence collaborator: tasks
// are written as a human-readable markdown document and read back with a
// tolerant parser.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/valter-silva-au/tempo/pkg/models"
)

// TaskRepository is the persistence contract consumed by the task store.
// Load yields an empty list for a missing file; Save failures are reported
// to the caller, who treats them as non-fatal.
type TaskRepository interface {
	Load() ([]models.Task, error)
	Save(tasks []models.Task) error
}

// fileTaskRepository persists tasks to a markdown file.
type fileTaskRepository struct {
	basePath string
	fileName string
}

// NewTaskRepository creates a TaskRepository writing fileName inside
// basePath.
func NewTaskRepository(basePath, fileName string) TaskRepository {
	return &fileTaskRepository{basePath: basePath, fileName: fileName}
}

func (r *fileTaskRepository) filePath() string {
	return filepath.Join(r.basePath, r.fileName)
}

const timestampLayout = time.RFC3339

// Save writes the full collection. Each task is a titled checkbox block
// followed by one "- **Field:** value" line per populated optional field;
// active and completed tasks are grouped under separate headings. Subtasks
// and tags are JSON-encoded inside their value strings, and notes have
// embedded newlines escaped, keeping the document one line per field.
func (r *fileTaskRepository) Save(tasks []models.Task) error {
	if err := os.MkdirAll(r.basePath, 0o750); err != nil {
		return fmt.Errorf("saving tasks: creating directory: %w", err)
	}

	unlock, err := lockFile(r.filePath() + ".lock")
	if err != nil {
		return fmt.Errorf("saving tasks: %w", err)
	}
	defer unlock()

	var b strings.Builder
	b.WriteString("# tempo tasks\n")

	b.WriteString("\n## Active\n")
	for _, t := range tasks {
		if !t.Completed {
			writeTaskBlock(&b, t)
		}
	}

	b.WriteString("\n## Completed\n")
	for _, t := range tasks {
		if t.Completed {
			writeTaskBlock(&b, t)
		}
	}

	if err := os.WriteFile(r.filePath(), []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("saving tasks: writing file: %w", err)
	}
	return nil
}

func writeTaskBlock(b *strings.Builder, t models.Task) {
	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}
	fmt.Fprintf(b, "\n## %s %s\n", box, t.Text)

	writeField(b, "ID", strconv.FormatInt(t.ID, 10))
	writeField(b, "Created", t.CreatedAt.Format(timestampLayout))
	if t.CompletedAt != nil {
		writeField(b, "CompletedAt", t.CompletedAt.Format(timestampLayout))
	}
	if t.Priority != "" {
		writeField(b, "Priority", string(t.Priority))
	}
	if t.Category != "" {
		writeField(b, "Category", string(t.Category))
	}
	if t.DueDate != "" {
		writeField(b, "Due", t.DueDate)
	}
	writeField(b, "Order", strconv.Itoa(t.Order))
	if t.Recurring != "" {
		writeField(b, "Recurring", string(t.Recurring))
	}
	if len(t.Subtasks) > 0 {
		if data, err := json.Marshal(t.Subtasks); err == nil {
			writeField(b, "Subtasks", string(data))
		}
	}
	if t.Notes != "" {
		writeField(b, "Notes", escapeNotes(t.Notes))
	}
	if len(t.Tags) > 0 {
		if data, err := json.Marshal(t.Tags); err == nil {
			writeField(b, "Tags", string(data))
		}
	}
	if t.TimeEstimate > 0 {
		writeField(b, "Estimate", strconv.Itoa(t.TimeEstimate))
	}
	if t.PomodoroStart != nil {
		writeField(b, "PomodoroStart", t.PomodoroStart.Format(timestampLayout))
		writeField(b, "PomodoroDuration", strconv.FormatInt(t.PomodoroDuration, 10))
		writeField(b, "PomodoroPaused", strconv.FormatBool(t.PomodoroPaused))
		if t.PomodoroRemaining > 0 {
			writeField(b, "PomodoroRemaining", strconv.FormatInt(t.PomodoroRemaining, 10))
		}
		writeField(b, "PomodoroBreak", strconv.FormatBool(t.PomodoroIsBreak))
	}
	if t.PomodoroCount > 0 {
		writeField(b, "PomodoroCount", strconv.Itoa(t.PomodoroCount))
	}
}

func writeField(b *strings.Builder, name, value string) {
	fmt.Fprintf(b, "- **%s:** %s\n", name, value)
}

// Load reads the task file back. A missing file yields an empty list, not
// an error. Unknown or malformed lines are skipped; a field that fails to
// parse is defaulted rather than aborting the whole load.
func (r *fileTaskRepository) Load() ([]models.Task, error) {
	f, err := os.Open(r.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	defer func() { _ = f.Close() }()

	var tasks []models.Task
	var current *models.Task

	flush := func() {
		if current != nil {
			tasks = append(tasks, *current)
			current = nil
		}
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "## [ ] "):
			flush()
			current = &models.Task{Text: strings.TrimPrefix(line, "## [ ] ")}
		case strings.HasPrefix(line, "## [x] "):
			flush()
			current = &models.Task{
				Text:      strings.TrimPrefix(line, "## [x] "),
				Completed: true,
			}
		case current != nil && strings.HasPrefix(line, "- **"):
			name, value, ok := parseFieldLine(line)
			if ok {
				applyField(current, name, value)
			}
		}
		// Anything else (headings, blanks, unknown lines) is ignored.
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("loading tasks: scanning file: %w", err)
	}
	return tasks, nil
}

// parseFieldLine splits "- **Name:** value" into its parts.
func parseFieldLine(line string) (name, value string, ok bool) {
	rest := strings.TrimPrefix(line, "- **")
	idx := strings.Index(rest, ":** ")
	if idx < 0 {
		// Field with empty value ("- **Name:**").
		if trimmed, found := strings.CutSuffix(rest, ":**"); found {
			return trimmed, "", true
		}
		return "", "", false
	}
	return rest[:idx], rest[idx+len(":** "):], true
}

// applyField sets one parsed field on the task. Malformed values leave the
// field at its zero value.
func applyField(t *models.Task, name, value string) {
	switch name {
	case "ID":
		if id, err := strconv.ParseInt(value, 10, 64); err == nil {
			t.ID = id
		}
	case "Created":
		if at, err := time.Parse(timestampLayout, value); err == nil {
			t.CreatedAt = at
		}
	case "CompletedAt":
		if at, err := time.Parse(timestampLayout, value); err == nil {
			t.CompletedAt = &at
		}
	case "Priority":
		if p := models.Priority(value); models.ValidPriorities[p] {
			t.Priority = p
		}
	case "Category":
		if c := models.Category(value); models.ValidCategories[c] {
			t.Category = c
		}
	case "Due":
		t.DueDate = value
	case "Order":
		if n, err := strconv.Atoi(value); err == nil {
			t.Order = n
		}
	case "Recurring":
		if rec := models.Recurrence(value); models.ValidRecurrences[rec] {
			t.Recurring = rec
		}
	case "Subtasks":
		var subtasks []models.Subtask
		if err := json.Unmarshal([]byte(value), &subtasks); err == nil {
			t.Subtasks = subtasks
		}
	case "Notes":
		t.Notes = unescapeNotes(value)
	case "Tags":
		var tags []string
		if err := json.Unmarshal([]byte(value), &tags); err == nil {
			t.Tags = tags
		}
	case "Estimate":
		if n, err := strconv.Atoi(value); err == nil {
			t.TimeEstimate = n
		}
	case "PomodoroStart":
		if at, err := time.Parse(timestampLayout, value); err == nil {
			t.PomodoroStart = &at
		}
	case "PomodoroDuration":
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			t.PomodoroDuration = n
		}
	case "PomodoroPaused":
		t.PomodoroPaused = value == "true"
	case "PomodoroRemaining":
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			t.PomodoroRemaining = n
		}
	case "PomodoroBreak":
		t.PomodoroIsBreak = value == "true"
	case "PomodoroCount":
		if n, err := strconv.Atoi(value); err == nil {
			t.PomodoroCount = n
		}
	}
}

// escapeNotes keeps multi-line notes on a single field line.
func escapeNotes(notes string) string {
	escaped := strings.ReplaceAll(notes, `\`, `\\`)
	return strings.ReplaceAll(escaped, "\n", `\n`)
}

func unescapeNotes(value string) string {
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		if value[i] == '\\' && i+1 < len(value) {
			switch value[i+1] {
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			}
		}
		b.WriteByte(value[i])
	}
	return b.String()
}

// DeduplicateByID keeps the first record seen for each identifier. The
// presentation layer runs every load result through this to protect
// against a double-invoked startup load.
func DeduplicateByID(tasks []models.Task) []models.Task {
	seen := make(map[int64]struct{}, len(tasks))
	out := tasks[:0]
	for _, t := range tasks {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}
