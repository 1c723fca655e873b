package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"updatewatch/internal/domain"
)

// consolePresenter renders update prompts and announcements on the
// terminal. With prompts disabled it defers every update, which keeps
// non-interactive runs from blocking on stdin.
type consolePresenter struct {
	in       io.Reader
	out      io.Writer
	noPrompt bool
}

func newConsolePresenter(in io.Reader, out io.Writer, noPrompt bool) *consolePresenter {
	return &consolePresenter{in: in, out: out, noPrompt: noPrompt}
}

func (p *consolePresenter) PromptUpdate(ctx context.Context, decision domain.UpdateDecision, local domain.LocalCatalogState) (domain.UserChoice, error) {
	currentVersion := local.Version
	if currentVersion == "" {
		currentVersion = "none"
	}

	fmt.Fprintf(p.out, "\nCatalog update available: %s -> %s\n", currentVersion, decision.RemoteVersion)
	if decision.NewEntryCount > 0 {
		fmt.Fprintf(p.out, "New audio IDs: %d\n", decision.NewEntryCount)
	}
	if len(decision.ChangelogLines) > 0 {
		fmt.Fprintln(p.out, "Changes:")
		for _, line := range decision.ChangelogLines {
			fmt.Fprintf(p.out, "  - %s\n", line)
		}
	}

	if p.noPrompt {
		fmt.Fprintln(p.out, "Prompts disabled, deferring update.")
		return domain.ChoiceDefer, nil
	}

	fmt.Fprint(p.out, "Download now? [y]es / [n]ot now / [d]isable reminders: ")

	answers := make(chan string, 1)
	readErrs := make(chan error, 1)
	go func() {
		reader := bufio.NewReader(p.in)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			readErrs <- err
			return
		}
		answers <- line
	}()

	select {
	case <-ctx.Done():
		return domain.ChoiceDefer, ctx.Err()
	case <-readErrs:
		// EOF on stdin: treat as closing the dialog.
		fmt.Fprintln(p.out)
		return domain.ChoiceDefer, nil
	case answer := <-answers:
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return domain.ChoiceAccept, nil
		case "d", "disable":
			return domain.ChoiceDisable, nil
		default:
			return domain.ChoiceDefer, nil
		}
	}
}

func (p *consolePresenter) ShowAnnouncements(_ context.Context, announcements []domain.Announcement) error {
	if len(announcements) == 0 {
		return nil
	}
	fmt.Fprintf(p.out, "\nAnnouncements (%d):\n", len(announcements))
	for _, announcement := range announcements {
		fmt.Fprintf(p.out, "%s [%s] %s\n", domain.IconFor(announcement.Type), announcement.Priority, announcement.Title)
		if announcement.Message != "" {
			fmt.Fprintf(p.out, "    %s\n", announcement.Message)
		}
		if announcement.Action != nil {
			fmt.Fprintf(p.out, "    (%s)\n", announcement.Action.Label)
		}
		if announcement.Dismissible {
			fmt.Fprintf(p.out, "    dismiss with: updatewatchd dismiss %s\n", announcement.ID)
		}
	}
	return nil
}

func (p *consolePresenter) NotifyFailure(_ context.Context, message string) {
	fmt.Fprintf(p.out, "\n%s %s\n", domain.IconFor(domain.AnnouncementWarning), message)
}

var _ domain.Presenter = (*consolePresenter)(nil)
