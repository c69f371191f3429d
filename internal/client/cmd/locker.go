package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/firstindiacredit-Git/cred/internal/client/passgen"
	"github.com/firstindiacredit-Git/cred/internal/shared/models"
	"github.com/firstindiacredit-Git/cred/internal/vault"
)

const maskedPassword = "••••••••"

// systemClipboard adapts the OS clipboard to the vault's interface.
type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

func newLockerCmd(serverURL *string) *cobra.Command {
	return &cobra.Command{
		Use:   "locker",
		Short: "Open the interactive credential locker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocker(cmd, *serverURL)
		},
	}
}

// locker is the interactive session driving a VaultView from a terminal.
type locker struct {
	view  *vault.VaultView
	sess  *session
	in    *bufio.Reader
	out   io.Writer
	items []models.Credential
}

func runLocker(cmd *cobra.Command, serverURL string) error {
	sess, err := openSession(serverURL)
	if err != nil {
		return err
	}
	defer sess.Close()

	pins := vault.NewPinStore(sess.client)
	gate := vault.NewReauthGate(sess.client)
	machine := vault.NewLockStateMachine(pins, gate, sess.store)
	view := vault.NewVaultView(machine, vault.NewCredentialStore(sess.client), systemClipboard{})

	l := &locker{
		view: view,
		sess: sess,
		in:   bufio.NewReader(cmd.InOrStdin()),
		out:  cmd.OutOrStdout(),
	}
	if err := view.Mount(cmd.Context()); err != nil {
		return fmt.Errorf("open locker: %w", err)
	}
	return l.run(cmd.Context())
}

func (l *locker) run(ctx context.Context) error {
	fmt.Fprintln(l.out, "cred locker. Type 'help' for commands, 'quit' to exit.")
	for {
		var done bool
		var err error
		switch l.view.State() {
		case vault.StateLocked:
			done, err = l.stepLocked(ctx)
		case vault.StateReauthPending:
			done, err = l.stepReauth(ctx)
		case vault.StateResetPending:
			done, err = l.stepReset(ctx)
		default:
			done, err = l.stepUnlocked(ctx)
		}
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func (l *locker) readLine(prompt string) (string, bool) {
	fmt.Fprint(l.out, prompt)
	line, err := l.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}

func (l *locker) report(err error) {
	var verr *vault.ValidationError
	var rerr *vault.ReauthError
	switch {
	case errors.As(err, &verr):
		fmt.Fprintln(l.out, verr.Reason)
	case errors.As(err, &rerr):
		fmt.Fprintln(l.out, rerr.Reason)
	case errors.Is(err, vault.ErrIncorrectPin):
		fmt.Fprintln(l.out, "Incorrect PIN.")
	case errors.Is(err, vault.ErrStoreUnavailable):
		fmt.Fprintln(l.out, "Server unavailable, try again.")
	case errors.Is(err, vault.ErrNotFound):
		fmt.Fprintln(l.out, "Not found.")
	case errors.Is(err, vault.ErrBusy):
		fmt.Fprintln(l.out, "Previous action still running.")
	default:
		fmt.Fprintf(l.out, "Error: %v\n", err)
	}
}

func (l *locker) stepLocked(ctx context.Context) (bool, error) {
	input, ok := l.readLine("Enter PIN ('forgot' to reset, 'quit' to exit): ")
	if !ok {
		return true, nil
	}
	switch input {
	case "quit", "exit":
		return true, nil
	case "forgot":
		l.view.StartReset()
		return false, nil
	case "":
		return false, nil
	}
	if err := l.view.SubmitPin(ctx, input); err != nil {
		l.report(err)
	}
	return false, nil
}

func (l *locker) stepReauth(ctx context.Context) (bool, error) {
	id, err := l.sess.client.CurrentIdentity(ctx)
	if err != nil {
		l.report(err)
		l.view.Cancel()
		return false, nil
	}
	var proof vault.Proof
	if id.Provider == models.ProviderFederated {
		answer, ok := l.readLine("Confirm with your identity provider? [y/N]: ")
		if !ok || !strings.EqualFold(answer, "y") {
			l.view.Cancel()
			return !ok, nil
		}
	} else {
		password, ok := l.readLine("Account password ('cancel' to go back): ")
		if !ok {
			return true, nil
		}
		if password == "cancel" || password == "" {
			l.view.Cancel()
			return false, nil
		}
		proof.Password = password
	}
	if err := l.view.Reauthenticate(ctx, proof); err != nil {
		l.report(err)
		return false, nil
	}
	fmt.Fprintln(l.out, "Identity confirmed. Choose a new PIN.")
	return false, nil
}

func (l *locker) stepReset(ctx context.Context) (bool, error) {
	pin, ok := l.readLine("New 4-digit PIN ('cancel' to go back): ")
	if !ok {
		return true, nil
	}
	if pin == "cancel" {
		l.view.Cancel()
		return false, nil
	}
	confirm, ok := l.readLine("Confirm PIN: ")
	if !ok {
		return true, nil
	}
	if err := l.view.SubmitNewPin(ctx, pin, confirm); err != nil {
		l.report(err)
		return false, nil
	}
	fmt.Fprintln(l.out, "PIN updated. Unlock with your new PIN.")
	return false, nil
}

func (l *locker) stepUnlocked(ctx context.Context) (bool, error) {
	input, ok := l.readLine("cred> ")
	if !ok {
		return true, nil
	}
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "quit", "exit":
		return true, nil
	case "help":
		l.printHelp()
	case "list":
		l.render(l.view.Items())
	case "search":
		l.render(l.view.Search(strings.Join(args, " ")))
	case "add":
		l.add(ctx)
	case "edit":
		l.edit(ctx, args)
	case "rm":
		l.remove(ctx, args)
	case "show":
		l.toggleReveal(args)
	case "reveal":
		l.view.RevealAll(true)
		l.render(l.items)
	case "hide":
		l.view.RevealAll(false)
		l.render(l.items)
	case "copy":
		l.copy(args)
	case "setpin":
		l.setPin(ctx)
	case "lock":
		if err := l.view.Lock(); err != nil {
			l.report(err)
		}
	case "refresh":
		if err := l.view.Refresh(ctx); err != nil {
			l.report(err)
		}
		l.render(l.view.Items())
	default:
		fmt.Fprintf(l.out, "Unknown command %q. Type 'help'.\n", cmd)
	}
	return false, nil
}

func (l *locker) printHelp() {
	fmt.Fprintln(l.out, `Commands:
  list                 show all credentials
  search <text>        filter by title, username or URL
  add                  add a credential
  edit <n>             edit entry n from the last listing
  rm <n>               delete entry n
  show <n>             toggle password visibility for entry n
  reveal / hide        show or mask all passwords
  copy <n> <field>     copy username, password or url to the clipboard
  setpin               set or change the locker PIN
  lock                 lock the locker (requires a PIN)
  refresh              reload from the server
  quit                 exit`)
}

// render prints a numbered listing and remembers it so that numeric
// arguments in later commands refer to what the user last saw.
func (l *locker) render(items []models.Credential) {
	l.items = items
	if len(items) == 0 {
		fmt.Fprintln(l.out, "No credentials.")
		return
	}
	for i, c := range items {
		password := maskedPassword
		if l.view.Revealed(c.ID) {
			password = c.Password
		}
		fmt.Fprintf(l.out, "%2d. %s  %s  %s", i+1, c.Title, c.Username, password)
		if c.URL != "" {
			fmt.Fprintf(l.out, "  %s", c.URL)
		}
		fmt.Fprintln(l.out)
	}
}

// pick resolves a 1-based index argument against the last listing.
func (l *locker) pick(args []string) (models.Credential, bool) {
	if len(args) == 0 {
		fmt.Fprintln(l.out, "Which entry? Run 'list' and pass its number.")
		return models.Credential{}, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(l.items) {
		fmt.Fprintf(l.out, "No entry %q in the last listing.\n", args[0])
		return models.Credential{}, false
	}
	return l.items[n-1], true
}

func (l *locker) add(ctx context.Context) {
	title, _ := l.readLine("Title: ")
	username, _ := l.readLine("Username: ")
	password, _ := l.readLine("Password (empty to generate): ")
	if password == "" {
		generated, err := passgen.Generate(passgen.DefaultOptions())
		if err != nil {
			l.report(err)
			return
		}
		password = generated
		fmt.Fprintf(l.out, "Generated: %s\n", password)
	}
	url, _ := l.readLine("URL (optional): ")
	f := models.CredentialFields{Title: title, Username: username, Password: password, URL: url}
	if _, err := l.view.Create(ctx, f); err != nil {
		l.report(err)
		return
	}
	fmt.Fprintln(l.out, "Saved.")
}

func (l *locker) edit(ctx context.Context, args []string) {
	item, ok := l.pick(args)
	if !ok {
		return
	}
	f := models.CredentialFields{
		Title:    l.promptDefault("Title", item.Title),
		Username: l.promptDefault("Username", item.Username),
		Password: l.promptDefault("Password", item.Password),
		URL:      l.promptDefault("URL", item.URL),
	}
	if _, err := l.view.Update(ctx, item.ID, f); err != nil {
		l.report(err)
		return
	}
	fmt.Fprintln(l.out, "Updated.")
}

func (l *locker) promptDefault(label, current string) string {
	input, _ := l.readLine(fmt.Sprintf("%s [%s]: ", label, current))
	if input == "" {
		return current
	}
	return input
}

func (l *locker) remove(ctx context.Context, args []string) {
	item, ok := l.pick(args)
	if !ok {
		return
	}
	answer, _ := l.readLine(fmt.Sprintf("Delete %q? [y/N]: ", item.Title))
	if !strings.EqualFold(answer, "y") {
		return
	}
	if err := l.view.Delete(ctx, item.ID); err != nil {
		l.report(err)
		return
	}
	fmt.Fprintln(l.out, "Deleted.")
}

func (l *locker) toggleReveal(args []string) {
	item, ok := l.pick(args)
	if !ok {
		return
	}
	l.view.ToggleReveal(item.ID)
	l.render(l.items)
}

func (l *locker) copy(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(l.out, "Usage: copy <n> username|password|url")
		return
	}
	item, ok := l.pick(args[:1])
	if !ok {
		return
	}
	field := args[1]
	switch field {
	case "user":
		field = "username"
	case "pass":
		field = "password"
	}
	if err := l.view.Copy(item.ID, field); err != nil {
		l.report(err)
		return
	}
	fmt.Fprintf(l.out, "Copied %s of %q.\n", field, item.Title)
}

func (l *locker) setPin(ctx context.Context) {
	var current string
	if l.view.HasPin() {
		current, _ = l.readLine("Current PIN: ")
	}
	pin, _ := l.readLine("New 4-digit PIN: ")
	confirm, _ := l.readLine("Confirm PIN: ")
	if err := l.view.SetPin(ctx, current, pin, confirm); err != nil {
		l.report(err)
		return
	}
	fmt.Fprintln(l.out, "PIN set. Use 'lock' to lock the locker.")
}
