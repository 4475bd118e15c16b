package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/config"
	"github.com/hpungsan/pocket/internal/errors"
	"github.com/hpungsan/pocket/internal/logger"
	"github.com/hpungsan/pocket/internal/ops"
	"github.com/hpungsan/pocket/internal/store"
	"github.com/hpungsan/pocket/internal/web"
)

// Clipboard access, swapped out in tests.
var (
	clipboardRead  = clipboard.ReadAll
	clipboardWrite = clipboard.WriteAll
)

// fieldSep separates the parts of --card and --question values.
const fieldSep = "::"

// newCLIApp creates the CLI application with all commands.
func newCLIApp(st *store.Store, cfg *config.Config, log *logger.Logger) *cli.App {
	app := &cli.App{
		Name:    "pocket",
		Usage:   "Pocket classroom: notes, flashcards and quizzes",
		Version: Version,
		Commands: []*cli.Command{
			listCmd(st),
			showCmd(st),
			saveCmd(st, cfg),
			authorCmd(st, cfg),
			deleteCmd(st),
			progressCmd(st),
			knownCmd(st),
			quizCmd(st),
			notesCmd(st),
			exportCmd(st, cfg),
			importCmd(st, cfg),
			validateCmd(cfg),
			reindexCmd(st),
			serveCmd(st, cfg, log),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// listCmd creates the list command.
func listCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List capsules in the library",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "subject", Aliases: []string{"s"}, Usage: "Filter by subject"},
			&cli.StringFlag{Name: "level", Aliases: []string{"l"}, Usage: "Filter by level: Beginner|Intermediate|Advanced"},
			&cli.IntFlag{Name: "limit", Value: ops.DefaultListLimit, Usage: "Max results"},
			&cli.IntFlag{Name: "offset", Value: 0, Usage: "Pagination offset"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Library(st, ops.LibraryInput{
				Subject: c.String("subject"),
				Level:   parseLevel(c.String("level")),
				Limit:   c.Int("limit"),
				Offset:  c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// showCmd creates the show command.
func showCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a capsule with its progress",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := requireArg(c, "id")
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Fetch(st, id)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// saveCmd creates the save command.
func saveCmd(st *store.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "save",
		Usage: "Save a capsule record as is (reads record JSON from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Usage: "Capsule ID to overwrite (default: new capsule)"},
		},
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("capsule record must be piped via stdin"))
			}
			data, err := readStdin(ops.MaxImportBytes(cfg))
			if err != nil {
				return outputError(err)
			}

			var rec capsule.Record
			if err := json.Unmarshal([]byte(data), &rec); err != nil {
				return outputError(errors.NewInvalidRequest("capsule record must be a JSON object"))
			}

			output, err := ops.Save(st, &rec, c.String("id"))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// authorCmd creates the author command.
func authorCmd(st *store.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "author",
		Usage: "Create or edit a capsule (notes are read from stdin, one per line)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Usage: "Capsule ID to edit (default: new capsule)"},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Capsule title"},
			&cli.StringFlag{Name: "subject", Aliases: []string{"s"}, Usage: "Subject"},
			&cli.StringFlag{Name: "level", Aliases: []string{"l"}, Usage: "Beginner|Intermediate|Advanced"},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Short description"},
			&cli.StringSliceFlag{Name: "card", Usage: "Flashcard as front::back (repeatable)"},
			&cli.StringSliceFlag{Name: "question", Usage: "Question as text::A::B::C::D::answer[::explanation] (repeatable)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.AuthorInput{
				ID:          c.String("id"),
				Title:       c.String("title"),
				Subject:     c.String("subject"),
				Level:       parseLevel(c.String("level")),
				Description: c.String("description"),
			}

			if stdinHasData() {
				notes, err := readStdin(ops.MaxImportBytes(cfg))
				if err != nil {
					return outputError(err)
				}
				input.NotesText = notes
			}

			for _, raw := range c.StringSlice("card") {
				card, err := parseCard(raw)
				if err != nil {
					return outputError(err)
				}
				input.Flashcards = append(input.Flashcards, card)
			}
			for _, raw := range c.StringSlice("question") {
				q, err := parseQuestion(raw)
				if err != nil {
					return outputError(err)
				}
				input.Quiz = append(input.Quiz, q)
			}

			output, err := ops.Author(st, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a capsule and its progress",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := requireArg(c, "id")
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Delete(st, id)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// progressCmd creates the progress command.
func progressCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "progress",
		Usage:     "Show best score and known flashcards",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := requireArg(c, "id")
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Progress(st, id)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// knownCmd creates the known command.
func knownCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "known",
		Usage:     "Mark a flashcard as known",
		ArgsUsage: "<id> <index>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "unset", Usage: "Mark the flashcard as not known"},
			&cli.BoolFlag{Name: "toggle", Usage: "Flip the current state"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return outputError(errors.NewInvalidRequest("usage: pocket known <id> <index>"))
			}
			if c.Bool("unset") && c.Bool("toggle") {
				return outputError(errors.NewInvalidRequest("--unset and --toggle are mutually exclusive"))
			}
			index, err := strconv.Atoi(c.Args().Get(1))
			if err != nil {
				return outputError(errors.NewInvalidRequest("index must be an integer"))
			}

			input := ops.KnownInput{ID: c.Args().First(), Index: index, Known: !c.Bool("unset")}
			var output *ops.KnownOutput
			if c.Bool("toggle") {
				output, err = ops.ToggleKnown(st, input)
			} else {
				output, err = ops.SetKnown(st, input)
			}
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// quizCmd creates the quiz command.
func quizCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "quiz",
		Usage:     "Grade a quiz attempt; answers are letters A-D or 0-based indexes, '-' skips",
		ArgsUsage: "<id> <answer>...",
		Action: func(c *cli.Context) error {
			id, err := requireArg(c, "id")
			if err != nil {
				return outputError(err)
			}
			rest := c.Args().Tail()
			answers := make([]int, 0, len(rest))
			for _, a := range rest {
				n, err := parseAnswer(a)
				if err != nil {
					return outputError(err)
				}
				answers = append(answers, n)
			}

			output, err := ops.GradeQuiz(st, ops.GradeInput{ID: id, Answers: answers})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// notesCmd creates the notes command.
func notesCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "notes",
		Usage:     "Print a capsule's notes, optionally filtered",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Case-insensitive substring filter"},
		},
		Action: func(c *cli.Context) error {
			id, err := requireArg(c, "id")
			if err != nil {
				return outputError(err)
			}
			output, err := ops.SearchNotes(st, ops.SearchNotesInput{ID: id, Query: c.String("query")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(st *store.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export a capsule (prints the payload unless a destination is given)",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Write to this .json file"},
			&cli.BoolFlag{Name: "file", Aliases: []string{"f"}, Usage: "Write to ~/.pocket/exports/<title>.json"},
			&cli.BoolFlag{Name: "clipboard", Aliases: []string{"c"}, Usage: "Copy the payload to the clipboard"},
		},
		Action: func(c *cli.Context) error {
			id, err := requireArg(c, "id")
			if err != nil {
				return outputError(err)
			}

			if path := c.String("path"); path != "" || c.Bool("file") {
				output, err := ops.ExportFile(st, cfg, ops.ExportInput{ID: id, Path: path})
				if err != nil {
					return outputError(err)
				}
				return outputJSON(output)
			}

			output, err := ops.ExportJSON(st, id)
			if err != nil {
				return outputError(err)
			}
			if c.Bool("clipboard") {
				if err := clipboardWrite(output.JSON); err != nil {
					return outputError(errors.NewInternal(fmt.Errorf("failed to write clipboard: %w", err)))
				}
				output.JSON = ""
				return outputJSON(output)
			}

			_, err = fmt.Fprintln(os.Stdout, output.JSON)
			return err
		},
	}
}

// importCmd creates the import command.
func importCmd(st *store.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import an exported capsule under a new ID (reads stdin unless a source is given)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Read from this .json file"},
			&cli.BoolFlag{Name: "clipboard", Aliases: []string{"c"}, Usage: "Read the payload from the clipboard"},
		},
		Action: func(c *cli.Context) error {
			var (
				output *ops.ImportOutput
				err    error
			)
			switch {
			case c.String("path") != "":
				output, err = ops.ImportFile(st, cfg, ops.ImportInput{Path: c.String("path")})
			case c.Bool("clipboard"):
				var text string
				if text, err = clipboardRead(); err != nil {
					return outputError(errors.NewInternal(fmt.Errorf("failed to read clipboard: %w", err)))
				}
				output, err = ops.ImportData(st, cfg, []byte(text))
			default:
				if !stdinHasData() {
					return outputError(errors.NewInvalidRequest("payload must be piped via stdin, or use --path or --clipboard"))
				}
				var data string
				if data, err = readStdin(ops.MaxImportBytes(cfg)); err != nil {
					return outputError(err)
				}
				output, err = ops.ImportData(st, cfg, []byte(data))
			}
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// validateCmd creates the validate command.
func validateCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check an export payload without importing it (reads stdin)",
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("payload must be piped via stdin"))
			}
			data, err := readStdin(ops.MaxImportBytes(cfg))
			if err != nil {
				return outputError(err)
			}

			output := ops.Validate([]byte(data))
			if err := outputJSON(output); err != nil {
				return err
			}
			if !output.Valid {
				return outputError(errors.NewInvalidSchema(output.Reason))
			}
			return nil
		},
	}
}

// reindexCmd creates the reindex command.
func reindexCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:  "reindex",
		Usage: "Rebuild the library index from stored capsules",
		Action: func(c *cli.Context) error {
			output, err := st.Reindex()
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(st *store.Store, cfg *config.Config, log *logger.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the study web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: cfg.WebBind, Usage: "Listen address"},
			&cli.IntFlag{Name: "port", Value: cfg.WebPort, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			srv, err := web.NewServer(st, cfg, log, Version, c.String("bind"), c.Int("port"))
			if err != nil {
				return outputError(err)
			}
			if err := web.Run(srv, log); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// outputJSON writes v as indented JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if pocketErr, ok := err.(*errors.PocketError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", pocketErr.Code, pocketErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads stdin up to limit bytes.
func readStdin(limit int64) (string, error) {
	data, err := ops.ReadLimited(os.Stdin, limit)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func requireArg(c *cli.Context, name string) (string, error) {
	if c.NArg() == 0 || strings.TrimSpace(c.Args().First()) == "" {
		return "", errors.NewInvalidRequest(name + " is required")
	}
	return c.Args().First(), nil
}

// parseLevel matches s against the known levels ignoring case.
// Unknown values pass through so the operation can reject them.
func parseLevel(s string) capsule.Level {
	s = strings.TrimSpace(s)
	for _, l := range capsule.Levels {
		if strings.EqualFold(s, string(l)) {
			return l
		}
	}
	return capsule.Level(s)
}

// parseCard splits "front::back".
func parseCard(s string) (capsule.Flashcard, error) {
	front, back, ok := strings.Cut(s, fieldSep)
	if !ok {
		return capsule.Flashcard{}, errors.NewInvalidRequest(fmt.Sprintf("card %q must be front::back", s))
	}
	return capsule.Flashcard{Front: strings.TrimSpace(front), Back: strings.TrimSpace(back)}, nil
}

// parseQuestion splits "text::A::B::C::D::answer[::explanation]".
func parseQuestion(s string) (capsule.Question, error) {
	parts := strings.Split(s, fieldSep)
	if len(parts) < 2+capsule.ChoiceCount || len(parts) > 3+capsule.ChoiceCount {
		return capsule.Question{}, errors.NewInvalidRequest(fmt.Sprintf("question %q must be text::A::B::C::D::answer[::explanation]", s))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	answer, err := parseAnswer(parts[1+capsule.ChoiceCount])
	if err != nil || answer < 0 {
		return capsule.Question{}, errors.NewInvalidRequest(fmt.Sprintf("question %q has an invalid answer", parts[0]))
	}

	q := capsule.Question{
		Question: parts[0],
		Choices:  append([]string(nil), parts[1:1+capsule.ChoiceCount]...),
		Answer:   answer,
	}
	if len(parts) == 3+capsule.ChoiceCount {
		q.Explanation = parts[2+capsule.ChoiceCount]
	}
	return q, nil
}

// parseAnswer reads a letter A-D, a 0-based index, or "-" for no answer (-1).
func parseAnswer(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "-" {
		return -1, nil
	}
	if len(s) == 1 {
		if c := s[0] | 0x20; c >= 'a' && c < 'a'+capsule.ChoiceCount {
			return int(c - 'a'), nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n >= capsule.ChoiceCount {
		return 0, errors.NewInvalidRequest(fmt.Sprintf("answer %q must be A-D, 0-%d or -", s, capsule.ChoiceCount-1))
	}
	return n, nil
}
