// Package mcp provides an MCP (Model Context Protocol) server that exposes
// tempo's task store as MCP tools for AI coding assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/valter-silva-au/tempo/internal/core"
	"github.com/valter-silva-au/tempo/pkg/models"
)

// Server wraps the task store and exposes it as MCP tools.
type Server struct {
	server *gomcp.Server
	store  core.TaskStore
}

// NewServer creates an MCP server backed by the given task store.
func NewServer(store core.TaskStore, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{store: store}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "tempo", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client
// disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type getTaskInput struct {
	TaskID int64 `json:"task_id" jsonschema:"required,the numeric task identifier"`
}

type taskOutput struct {
	ID            int64    `json:"id"`
	Text          string   `json:"text"`
	Completed     bool     `json:"completed"`
	CreatedAt     string   `json:"created_at"`
	CompletedAt   string   `json:"completed_at,omitempty"`
	DueDate       string   `json:"due_date,omitempty"`
	Priority      string   `json:"priority,omitempty"`
	Recurring     string   `json:"recurring,omitempty"`
	Category      string   `json:"category,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	TimeEstimate  int      `json:"time_estimate,omitempty"`
	SubtaskCount  int      `json:"subtask_count,omitempty"`
	PomodoroCount int      `json:"pomodoro_count,omitempty"`
	TimerState    string   `json:"timer_state"`
}

type listTasksInput struct {
	State string `json:"state,omitempty" jsonschema:"filter tasks by state (active, completed). Defaults to all."`
}

type listTasksOutput struct {
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
}

type addTaskInput struct {
	Text     string `json:"text" jsonschema:"required,the task text"`
	DueDate  string `json:"due_date,omitempty" jsonschema:"due date in YYYY-MM-DD form. Defaults to today."`
	Priority string `json:"priority,omitempty" jsonschema:"priority (high, medium, low)"`
	Category string `json:"category,omitempty" jsonschema:"category (work, personal, shopping, health, learning, other)"`
}

type completeTaskInput struct {
	TaskID int64 `json:"task_id" jsonschema:"required,the numeric task identifier"`
}

type completeTaskOutput struct {
	Message string `json:"message"`
}

type getStatsInput struct{}

type statsOutput struct {
	Total             int            `json:"total"`
	Active            int            `json:"active"`
	Completed         int            `json:"completed"`
	CompletionRate    int            `json:"completion_rate"`
	CompletedToday    int            `json:"completed_today"`
	CompletedThisWeek int            `json:"completed_this_week"`
	TotalPomodoros    int            `json:"total_pomodoros"`
	PomodoroMinutes   int            `json:"pomodoro_minutes"`
	Overdue           int            `json:"overdue"`
	ByPriority        map[string]int `json:"by_priority"`
	ByCategory        map[string]int `json:"by_category"`
	ByTag             map[string]int `json:"by_tag"`
}

type startPomodoroInput struct {
	TaskID int64 `json:"task_id" jsonschema:"required,the numeric task identifier"`
}

type startPomodoroOutput struct {
	Message string `json:"message"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_task",
		Description: "Get task details by ID, including due date, tags, and timer state.",
	}, s.handleGetTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks with an optional state filter (active, completed).",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "add_task",
		Description: "Create a new task. Empty text is rejected.",
	}, s.handleAddTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "complete_task",
		Description: "Toggle a task's completion. Completing a recurring task with a due date spawns its successor.",
	}, s.handleCompleteTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_stats",
		Description: "Get derived statistics: counts, completion rate, pomodoro totals, overdue tasks, and breakdowns.",
	}, s.handleGetStats)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "start_pomodoro",
		Description: "Start a 25-minute focus session on a task.",
	}, s.handleStartPomodoro)
}

// --- Tool handlers ---

func (s *Server) handleGetTask(_ context.Context, _ *gomcp.CallToolRequest, input getTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	task, ok := s.store.Get(input.TaskID)
	if !ok {
		return errorResult(fmt.Sprintf("task %d not found", input.TaskID)), taskOutput{}, nil
	}
	return nil, taskToOutput(task), nil
}

func (s *Server) handleListTasks(_ context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	if input.State != "" && input.State != "active" && input.State != "completed" {
		return errorResult(fmt.Sprintf("invalid state %q: must be active or completed", input.State)), listTasksOutput{}, nil
	}

	out := listTasksOutput{Tasks: []taskOutput{}}
	for _, task := range s.store.Tasks() {
		if input.State == "active" && task.Completed {
			continue
		}
		if input.State == "completed" && !task.Completed {
			continue
		}
		out.Tasks = append(out.Tasks, taskToOutput(task))
	}
	out.Count = len(out.Tasks)

	return nil, out, nil
}

func (s *Server) handleAddTask(_ context.Context, _ *gomcp.CallToolRequest, input addTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	task := s.store.Add(input.Text, core.AddOptions{
		DueDate:  input.DueDate,
		Priority: models.Priority(input.Priority),
		Category: models.Category(input.Category),
	})
	if task == nil {
		return errorResult("task text must not be empty"), taskOutput{}, nil
	}
	return nil, taskToOutput(*task), nil
}

func (s *Server) handleCompleteTask(_ context.Context, _ *gomcp.CallToolRequest, input completeTaskInput) (*gomcp.CallToolResult, completeTaskOutput, error) {
	task := s.store.ToggleComplete(input.TaskID)
	if task == nil {
		return errorResult(fmt.Sprintf("task %d not found", input.TaskID)), completeTaskOutput{}, nil
	}

	state := "reopened"
	if task.Completed {
		state = "completed"
	}
	return nil, completeTaskOutput{
		Message: fmt.Sprintf("task %d %s", input.TaskID, state),
	}, nil
}

func (s *Server) handleGetStats(_ context.Context, _ *gomcp.CallToolRequest, _ getStatsInput) (*gomcp.CallToolResult, statsOutput, error) {
	stats := s.store.Stats()

	out := statsOutput{
		Total:             stats.Total,
		Active:            stats.Active,
		Completed:         stats.Completed,
		CompletionRate:    stats.CompletionRate,
		CompletedToday:    stats.CompletedToday,
		CompletedThisWeek: stats.CompletedThisWeek,
		TotalPomodoros:    stats.TotalPomodoros,
		PomodoroMinutes:   stats.PomodoroMinutes,
		Overdue:           stats.Overdue,
		ByPriority:        make(map[string]int, len(stats.ByPriority)),
		ByCategory:        make(map[string]int, len(stats.ByCategory)),
		ByTag:             stats.ByTag,
	}
	for p, n := range stats.ByPriority {
		out.ByPriority[string(p)] = n
	}
	for c, n := range stats.ByCategory {
		out.ByCategory[string(c)] = n
	}

	return nil, out, nil
}

func (s *Server) handleStartPomodoro(_ context.Context, _ *gomcp.CallToolRequest, input startPomodoroInput) (*gomcp.CallToolResult, startPomodoroOutput, error) {
	if !s.store.StartPomodoro(input.TaskID) {
		return errorResult(fmt.Sprintf("task %d not found", input.TaskID)), startPomodoroOutput{}, nil
	}
	return nil, startPomodoroOutput{
		Message: fmt.Sprintf("started a %s focus session on task %d", core.FormatTime(core.FocusDuration.Milliseconds()), input.TaskID),
	}, nil
}

// --- Helpers ---

func taskToOutput(t models.Task) taskOutput {
	out := taskOutput{
		ID:            t.ID,
		Text:          t.Text,
		Completed:     t.Completed,
		CreatedAt:     t.CreatedAt.Format(time.RFC3339),
		DueDate:       t.DueDate,
		Priority:      string(t.Priority),
		Recurring:     string(t.Recurring),
		Category:      string(t.Category),
		Tags:          t.Tags,
		TimeEstimate:  t.TimeEstimate,
		SubtaskCount:  len(t.Subtasks),
		PomodoroCount: t.PomodoroCount,
		TimerState:    "idle",
	}
	if t.CompletedAt != nil {
		out.CompletedAt = t.CompletedAt.Format(time.RFC3339)
	}
	if t.TimerRunning() {
		out.TimerState = "running"
	} else if t.TimerPaused() {
		out.TimerState = "paused"
	}
	return out
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
