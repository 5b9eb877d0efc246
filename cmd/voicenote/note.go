package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/voicenote/internal/domain"
	"github.com/kailas-cloud/voicenote/internal/domain/audio"
	logpkg "github.com/kailas-cloud/voicenote/internal/logger"
	"github.com/kailas-cloud/voicenote/internal/transport/terminal"
	"github.com/kailas-cloud/voicenote/internal/usecase/session"
)

const noteAddLongDesc string = `Transcribe an audio file and save it as a note.

The transcript is shown for review: save it, edit it first, or discard it.
Use --yes to save the transcript without review.

Example:
  voicenote note add memo.mp3
  voicenote note add standup.m4a --yes`

const noteSearchLongDesc string = `Search stored notes.

With a query, the closest notes by meaning are listed with their similarity
score. Without one, a page of stored notes is listed.

Example:
  voicenote note search what to buy
  voicenote note search`

type noteCommander struct {
	yes bool

	console *terminal.Console
	logger  *zap.Logger
	app     *app
}

func newNoteCmd() *cobra.Command {
	cmder := &noteCommander{}

	cmd := &cobra.Command{
		Use:   "note",
		Short: "Add and search notes from the terminal",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.setup(cmd)
		},
	}

	add := &cobra.Command{
		Use:   "add <audio-file>",
		Short: "Transcribe an audio file and save it as a note",
		Long:  noteAddLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.runAdd(cmd.Context(), args[0])
		},
	}
	add.Flags().BoolVarP(&cmder.yes, "yes", "y", false, "Save the transcript without review")

	search := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search stored notes",
		Long:  noteSearchLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.runSearch(cmd.Context(), strings.Join(args, " "))
		},
	}

	cmd.AddCommand(add, search)
	return cmd
}

func (c *noteCommander) setup(cmd *cobra.Command) error {
	_, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	c.logger, err = logpkg.NewCLILogger(levelFor(cmd, ""))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	cmd.SetContext(ctx)
	cobra.OnFinalize(func() {
		stop()
		if err := c.teardown(); err != nil {
			c.logger.Warn("closing store", zap.Error(err))
		}
	})

	c.console = terminal.NewConsole()
	c.app, err = buildApp(ctx, cfg, c.logger, c.console)
	return err
}

func (c *noteCommander) teardown() error {
	if c.logger != nil {
		_ = c.logger.Sync()
	}
	if c.app == nil {
		return nil
	}
	return c.app.Close()
}

// authorize resolves a credential, asking again while the user gives an empty answer.
func (c *noteCommander) authorize(ctx context.Context) (session.State, error) {
	st := session.NewState()
	for {
		res, err := c.app.controller.Authorize(ctx, st)
		if err == nil {
			return res.State, nil
		}
		if !errors.Is(err, domain.ErrCredentialRequired) {
			return st, err
		}
		c.console.Status("A key is required to continue.")
	}
}

func (c *noteCommander) runAdd(ctx context.Context, path string) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("open audio: %w", err)
	}
	clip, err := audio.Read(f, filepath.Base(path))
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("read audio %s: %w", path, err)
	}

	st, err := c.authorize(ctx)
	if err != nil {
		return err
	}

	ctl := c.app.controller
	res, err := ctl.Record(st, clip)
	if err != nil {
		return err
	}
	c.console.Status(res.Status)

	res, err = ctl.Transcribe(ctx, res.State)
	if err != nil {
		return err
	}
	c.console.Status(res.Status)

	if !c.yes {
		var keep bool
		res, keep, err = c.review(res)
		if err != nil {
			return err
		}
		if !keep {
			c.console.Status("Draft discarded")
			return nil
		}
	}

	res, err = ctl.Save(ctx, res.State)
	if err != nil {
		return err
	}
	if res.Saved {
		c.console.Status(fmt.Sprintf("%s (id %d)", res.Status, res.NoteID))
		return nil
	}
	c.console.Status(res.Status)
	return nil
}

// review lets the user edit the draft until they save or discard it.
func (c *noteCommander) review(res session.Result) (session.Result, bool, error) {
	for {
		choice, err := c.console.ReviewDraft(res.State.Draft.Text())
		if err != nil {
			return res, false, err
		}
		switch choice {
		case terminal.ChoiceSave:
			return res, true, nil
		case terminal.ChoiceDiscard:
			return res, false, nil
		case terminal.ChoiceEdit:
			text, err := c.console.EditText(res.State.Draft.Text())
			if err != nil {
				return res, false, err
			}
			if res, err = c.app.controller.Edit(res.State, text); err != nil {
				return res, false, err
			}
			c.console.Status(res.Status)
		}
	}
}

func (c *noteCommander) runSearch(ctx context.Context, query string) error {
	st, err := c.authorize(ctx)
	if err != nil {
		return err
	}

	res, err := c.app.controller.Search(ctx, st, query)
	if err != nil {
		return err
	}
	c.console.Status(res.Status)
	c.console.PrintResults(res.Notes)
	return nil
}
