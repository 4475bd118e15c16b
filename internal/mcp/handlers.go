package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/config"
	"github.com/hpungsan/pocket/internal/errors"
	"github.com/hpungsan/pocket/internal/logger"
	"github.com/hpungsan/pocket/internal/ops"
	"github.com/hpungsan/pocket/internal/store"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	st  *store.Store
	cfg *config.Config
	log *logger.Logger
}

// NewHandlers creates a new Handlers instance. A nil logger discards output.
func NewHandlers(st *store.Store, cfg *config.Config, log *logger.Logger) *Handlers {
	if log == nil {
		log = logger.Nop()
	}
	return &Handlers{st: st, cfg: cfg, log: log.With("component", "mcp")}
}

// Request types for each tool

// ListRequest represents the arguments for capsule_list.
type ListRequest struct {
	Subject string `json:"subject,omitempty"`
	Level   string `json:"level,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Offset  int    `json:"offset,omitempty"`
}

// IDRequest represents the arguments of tools that only take a capsule id.
type IDRequest struct {
	ID string `json:"id"`
}

// SaveRequest represents the arguments for capsule_save.
type SaveRequest struct {
	ID      string          `json:"id,omitempty"`
	Capsule *capsule.Record `json:"capsule"`
}

// AuthorRequest represents the arguments for capsule_author.
type AuthorRequest struct {
	ID          string              `json:"id,omitempty"`
	Title       string              `json:"title"`
	Subject     string              `json:"subject,omitempty"`
	Level       string              `json:"level,omitempty"`
	Description string              `json:"description,omitempty"`
	Notes       string              `json:"notes,omitempty"`
	Flashcards  []capsule.Flashcard `json:"flashcards,omitempty"`
	Quiz        []capsule.Question  `json:"quiz,omitempty"`
}

// ExportRequest represents the arguments for capsule_export.
type ExportRequest struct {
	ID     string `json:"id"`
	Path   string `json:"path,omitempty"`
	ToFile bool   `json:"to_file,omitempty"`
}

// ImportRequest represents the arguments for capsule_import.
type ImportRequest struct {
	Payload string `json:"payload,omitempty"`
	Path    string `json:"path,omitempty"`
}

// ValidateRequest represents the arguments for capsule_validate.
type ValidateRequest struct {
	Payload string `json:"payload"`
}

// SearchNotesRequest represents the arguments for capsule_search_notes.
type SearchNotesRequest struct {
	ID    string `json:"id"`
	Query string `json:"query,omitempty"`
}

// ProgressSaveRequest represents the arguments for progress_save.
type ProgressSaveRequest struct {
	ID              string `json:"id"`
	BestScore       int    `json:"best_score"`
	KnownFlashcards []int  `json:"known_flashcards,omitempty"`
}

// ToggleKnownRequest represents the arguments for progress_toggle_known.
type ToggleKnownRequest struct {
	ID    string `json:"id"`
	Index int    `json:"index"`
	Known *bool  `json:"known,omitempty"`
}

// GradeQuizRequest represents the arguments for progress_grade_quiz.
type GradeQuizRequest struct {
	ID      string `json:"id"`
	Answers []int  `json:"answers"`
}

// HandleList handles the capsule_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Library(h.st, ops.LibraryInput{
		Subject: input.Subject,
		Level:   capsule.Level(input.Level),
		Limit:   input.Limit,
		Offset:  input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleLoad handles the capsule_load tool call.
func (h *Handlers) HandleLoad(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Fetch(h.st, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSave handles the capsule_save tool call.
func (h *Handlers) HandleSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Save(h.st, input.Capsule, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	h.log.Debug("capsule saved", "id", result.ID)
	return successResult(result)
}

// HandleAuthor handles the capsule_author tool call.
func (h *Handlers) HandleAuthor(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AuthorRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	// Agents never touch the browser draft.
	result, err := ops.Author(h.st, ops.AuthorInput{
		ID:          input.ID,
		Title:       input.Title,
		Subject:     input.Subject,
		Level:       capsule.Level(input.Level),
		Description: input.Description,
		NotesText:   input.Notes,
		Flashcards:  input.Flashcards,
		Quiz:        input.Quiz,
		KeepDraft:   true,
	})
	if err != nil {
		return errorResult(err), nil
	}

	h.log.Debug("capsule authored", "id", result.ID, "created", result.Created)
	return successResult(result)
}

// HandleDelete handles the capsule_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Delete(h.st, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExport handles the capsule_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	var result *ops.ExportOutput
	if input.ToFile || input.Path != "" {
		result, err = ops.ExportFile(h.st, h.cfg, ops.ExportInput{ID: input.ID, Path: input.Path})
	} else {
		result, err = ops.ExportJSON(h.st, input.ID)
	}
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleImport handles the capsule_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	hasPayload := strings.TrimSpace(input.Payload) != ""
	hasPath := input.Path != ""
	if hasPayload == hasPath {
		return errorResult(errors.NewInvalidRequest("provide exactly one of payload or path")), nil
	}

	var result *ops.ImportOutput
	if hasPath {
		result, err = ops.ImportFile(h.st, h.cfg, ops.ImportInput{Path: input.Path})
	} else {
		result, err = ops.ImportData(h.st, h.cfg, []byte(input.Payload))
	}
	if err != nil {
		return errorResult(err), nil
	}

	h.log.Info("capsule imported", "id", result.ID)
	return successResult(result)
}

// HandleValidate handles the capsule_validate tool call.
func (h *Handlers) HandleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ValidateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	return successResult(ops.Validate([]byte(input.Payload)))
}

// HandleSearchNotes handles the capsule_search_notes tool call.
func (h *Handlers) HandleSearchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchNotesRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.SearchNotes(h.st, ops.SearchNotesInput{ID: input.ID, Query: input.Query})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleProgressGet handles the progress_get tool call.
func (h *Handlers) HandleProgressGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Progress(h.st, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleProgressSave handles the progress_save tool call.
func (h *Handlers) HandleProgressSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProgressSaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.SaveProgress(h.st, ops.SaveProgressInput{
		ID:              input.ID,
		BestScore:       input.BestScore,
		KnownFlashcards: input.KnownFlashcards,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleToggleKnown handles the progress_toggle_known tool call.
func (h *Handlers) HandleToggleKnown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ToggleKnownRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	var result *ops.KnownOutput
	if input.Known != nil {
		result, err = ops.SetKnown(h.st, ops.KnownInput{ID: input.ID, Index: input.Index, Known: *input.Known})
	} else {
		result, err = ops.ToggleKnown(h.st, ops.KnownInput{ID: input.ID, Index: input.Index})
	}
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleGradeQuiz handles the progress_grade_quiz tool call.
func (h *Handlers) HandleGradeQuiz(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GradeQuizRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.GradeQuiz(h.st, ops.GradeInput{ID: input.ID, Answers: input.Answers})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// errorResult creates an MCP error result from an error.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if pErr, ok := err.(*errors.PocketError); ok {
		errorObj := map[string]any{
			"code":    pErr.Code,
			"message": pErr.Message,
			"status":  pErr.Status,
		}
		// Internal details can carry file paths or SQL text.
		if pErr.Code != errors.ErrInternal && pErr.Details != nil {
			errorObj["details"] = pErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
