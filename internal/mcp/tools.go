package mcp

import "github.com/mark3labs/mcp-go/mcp"

var intItems = mcp.Items(map[string]any{"type": "integer"})

var listToolDef = mcp.NewTool("capsule_list",
	mcp.WithDescription("List capsule summaries (id, title, subject, level, updatedAt), most recently created first."),
	mcp.WithString("subject", mcp.Description("Only capsules with this subject (case-insensitive)")),
	mcp.WithString("level", mcp.Description("Only capsules at this level"), mcp.Enum("Beginner", "Intermediate", "Advanced")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip")),
)

var loadToolDef = mcp.NewTool("capsule_load",
	mcp.WithDescription("Load a capsule with its notes, flashcards, quiz and learner progress."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Capsule id")),
)

var saveToolDef = mcp.NewTool("capsule_save",
	mcp.WithDescription("Save a full capsule record as given. Omit id to create a new capsule; pass id to overwrite one. No authoring checks are applied."),
	mcp.WithString("id", mcp.Description("Existing capsule id to overwrite")),
	mcp.WithObject("capsule", mcp.Required(), mcp.Description("Capsule record: {meta:{title,subject,level,description}, notes:[], flashcards:[{front,back}], quiz:[{question,choices[4],answer,explanation}]}")),
)

var authorToolDef = mcp.NewTool("capsule_author",
	mcp.WithDescription("Create or edit a capsule from author form fields. Requires a title; questions need four choices and an answer index 0-3."),
	mcp.WithString("id", mcp.Description("Capsule id to edit (omit to create)")),
	mcp.WithString("title", mcp.Required(), mcp.Description("Capsule title")),
	mcp.WithString("subject", mcp.Description("Subject, e.g. Biology")),
	mcp.WithString("level", mcp.Description("Difficulty (default Beginner)"), mcp.Enum("Beginner", "Intermediate", "Advanced")),
	mcp.WithString("description", mcp.Description("Short description")),
	mcp.WithString("notes", mcp.Description("Notes, one per line; blank lines are dropped")),
	mcp.WithArray("flashcards", mcp.Description("Flashcards as {front, back}"), mcp.Items(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"front": map[string]any{"type": "string"},
			"back":  map[string]any{"type": "string"},
		},
	})),
	mcp.WithArray("quiz", mcp.Description("Questions as {question, choices[4], answer, explanation}"), mcp.Items(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question":    map[string]any{"type": "string"},
			"choices":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"answer":      map[string]any{"type": "integer"},
			"explanation": map[string]any{"type": "string"},
		},
	})),
)

var deleteToolDef = mcp.NewTool("capsule_delete",
	mcp.WithDescription("Delete a capsule, its index entry and its progress. Deleting an unknown id is not an error."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Capsule id")),
)

var exportToolDef = mcp.NewTool("capsule_export",
	mcp.WithDescription("Export a capsule as {schema, capsule} JSON. Returns the JSON, or writes it to a .json file when path or to_file is set."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Capsule id")),
	mcp.WithString("path", mcp.Description("Destination .json file (default ~/.pocket/exports/<title>.json when to_file is set)")),
	mcp.WithBoolean("to_file", mcp.Description("Write to the default export path")),
)

var importToolDef = mcp.NewTool("capsule_import",
	mcp.WithDescription("Import an exported capsule under a new id. Pass the export JSON as payload, or a .json file path."),
	mcp.WithString("payload", mcp.Description("Export JSON text")),
	mcp.WithString("path", mcp.Description("Path to an export .json file")),
)

var validateToolDef = mcp.NewTool("capsule_validate",
	mcp.WithDescription("Check whether export JSON would import, without storing it."),
	mcp.WithString("payload", mcp.Required(), mcp.Description("Export JSON text")),
)

var searchNotesToolDef = mcp.NewTool("capsule_search_notes",
	mcp.WithDescription("Find a capsule's notes containing a phrase (case-insensitive)."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Capsule id")),
	mcp.WithString("query", mcp.Description("Phrase to look for; empty returns every note")),
)

var progressGetToolDef = mcp.NewTool("progress_get",
	mcp.WithDescription("Get a capsule's best quiz score and known flashcards."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Capsule id")),
)

var progressSaveToolDef = mcp.NewTool("progress_save",
	mcp.WithDescription("Overwrite a capsule's progress."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Capsule id")),
	mcp.WithNumber("best_score", mcp.Description("Best quiz score, 0-100")),
	mcp.WithArray("known_flashcards", mcp.Description("Indices of flashcards marked known"), intItems),
)

var toggleKnownToolDef = mcp.NewTool("progress_toggle_known",
	mcp.WithDescription("Toggle a flashcard's known flag, or set it explicitly with known."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Capsule id")),
	mcp.WithNumber("index", mcp.Required(), mcp.Description("Flashcard index (0-based)")),
	mcp.WithBoolean("known", mcp.Description("Set instead of toggle")),
)

var gradeQuizToolDef = mcp.NewTool("progress_grade_quiz",
	mcp.WithDescription("Grade quiz answers and keep the best score."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Capsule id")),
	mcp.WithArray("answers", mcp.Required(), mcp.Description("Chosen choice index per question (0-3, or -1 to skip)"), intItems),
)
