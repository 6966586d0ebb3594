package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/julianstephens/soulsync/internal/assistant"
	"github.com/julianstephens/soulsync/internal/constants"
	"github.com/julianstephens/soulsync/internal/insights"
	"github.com/julianstephens/soulsync/internal/models"
	"github.com/julianstephens/soulsync/internal/records"
)

var (
	summaryTool = mcp.NewTool("summary",
		mcp.WithDescription("Returns counts of goals by status, the most recent mood and the number of journal entries."),
	)

	listGoalsTool = mcp.NewTool("list_goals",
		mcp.WithDescription("Lists the user's goals."),
		mcp.WithString("status", mcp.Description("Optional comma-separated statuses to keep, e.g. 'To Do,In Progress'.")),
		mcp.WithString("sort", mcp.Description("Optional order: none, due, due-desc or status.")),
	)

	moodHistoryTool = mcp.NewTool("mood_history",
		mcp.WithDescription("Returns logged moods, newest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of entries (default 10, 0 for all).")),
	)

	journalHistoryTool = mcp.NewTool("journal_history",
		mcp.WithDescription("Returns journal entries, newest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of entries (default 5, 0 for all).")),
	)
)

type summaryResult struct {
	Username string               `json:"username"`
	Goals    insights.GoalSummary `json:"goals"`
	Summary  assistant.Summary    `json:"summary"`
}

type goalResult struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"`
	Status      string  `json:"status"`
}

type moodResult struct {
	At          string `json:"at"`
	Mood        string `json:"mood"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
}

type journalResult struct {
	At      string `json:"at"`
	Content string `json:"content"`
}

type historyResult[T any] struct {
	Entries []T      `json:"entries"`
	Total   int      `json:"total"`
	Skipped []string `json:"skipped,omitempty"`
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize result to JSON: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *SoulSyncMCPServer) record() (models.UserRecord, *mcp.CallToolResult) {
	rec, found, err := s.records.Record(s.username)
	if err != nil {
		return rec, mcp.NewToolResultError(fmt.Sprintf("Failed to load records: %v", err))
	}
	if !found {
		return rec, mcp.NewToolResultError(fmt.Sprintf("User '%s' not found.", s.username))
	}
	return rec, nil
}

// limitArg reads an optional non-negative integer argument.
func limitArg(request mcp.CallToolRequest, def int) (int, error) {
	raw, present := request.Params.Arguments["limit"]
	if !present || raw == nil {
		return def, nil
	}
	n, ok := raw.(float64)
	if !ok || n < 0 || n != float64(int(n)) {
		return 0, fmt.Errorf("'limit' must be a non-negative integer")
	}
	return int(n), nil
}

func firstN[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func skippedReasons(skipped []*models.MalformedRecordError) []string {
	out := make([]string, 0, len(skipped))
	for _, s := range skipped {
		out = append(out, s.Error())
	}
	return out
}

func (s *SoulSyncMCPServer) summaryHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rec, errResult := s.record()
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(summaryResult{
		Username: s.username,
		Goals:    insights.SummarizeGoals(rec.Goals),
		Summary:  assistant.Summarize(rec),
	})
}

func (s *SoulSyncMCPServer) listGoalsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rec, errResult := s.record()
	if errResult != nil {
		return errResult, nil
	}

	var statuses []models.GoalStatus
	if raw, ok := request.Params.Arguments["status"].(string); ok && strings.TrimSpace(raw) != "" {
		for _, part := range strings.Split(raw, ",") {
			status, known := models.ParseGoalStatus(strings.TrimSpace(part))
			if !known {
				return mcp.NewToolResultError(fmt.Sprintf("Unknown goal status '%s'.", strings.TrimSpace(part))), nil
			}
			statuses = append(statuses, status)
		}
	}

	order := records.SortNone
	if raw, ok := request.Params.Arguments["sort"].(string); ok && raw != "" {
		parsed, err := records.ParseGoalSort(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		order = parsed
	}

	goals := records.SortGoals(records.FilterGoals(rec.Goals, statuses), order)
	out := make([]goalResult, 0, len(goals))
	for _, g := range goals {
		out = append(out, goalResult{
			ID:          g.ID,
			Title:       g.Title,
			Description: g.Description,
			DueDate:     g.DueDate,
			Status:      g.Status.Display(),
		})
	}
	return jsonResult(out)
}

func (s *SoulSyncMCPServer) moodHistoryHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, err := limitArg(request, constants.DefaultMoodHistoryCount)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, errResult := s.record()
	if errResult != nil {
		return errResult, nil
	}

	h := records.ResolveMoods(rec.Moods)
	res := historyResult[moodResult]{
		Entries: []moodResult{},
		Total:   len(h.Entries),
		Skipped: skippedReasons(h.Skipped),
	}
	for _, r := range firstN(h.Entries, limit) {
		res.Entries = append(res.Entries, moodResult{
			At:          r.At.Format(constants.DisplayFormat),
			Mood:        r.Entry.Label(),
			Emoji:       r.Entry.Emoji(),
			Description: r.Entry.Description,
		})
	}
	return jsonResult(res)
}

func (s *SoulSyncMCPServer) journalHistoryHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, err := limitArg(request, constants.DefaultJournalHistoryCount)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, errResult := s.record()
	if errResult != nil {
		return errResult, nil
	}

	h := records.ResolveJournals(rec.Journals)
	res := historyResult[journalResult]{
		Entries: []journalResult{},
		Total:   len(h.Entries),
		Skipped: skippedReasons(h.Skipped),
	}
	for _, r := range firstN(h.Entries, limit) {
		res.Entries = append(res.Entries, journalResult{
			At:      r.At.Format(constants.DisplayFormat),
			Content: r.Entry.Content,
		})
	}
	return jsonResult(res)
}
