package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type authClient struct {
	serverURL *string
}

func newAuthCmd(serverURL *string) *cobra.Command {
	a := &authClient{serverURL: serverURL}
	cmd := &cobra.Command{Use: "auth", Short: "Authentication commands"}
	cmd.AddCommand(&cobra.Command{Use: "register", Short: "Register new user", RunE: a.register})
	cmd.AddCommand(&cobra.Command{Use: "login", Short: "Login and store session tokens", RunE: a.login})
	cmd.AddCommand(&cobra.Command{Use: "logout", Short: "Forget stored session tokens", RunE: a.logout})
	cmd.AddCommand(&cobra.Command{Use: "whoami", Short: "Show the signed-in account", RunE: a.whoami})
	return cmd
}

func (a *authClient) register(cmd *cobra.Command, args []string) error {
	in := bufio.NewReader(cmd.InOrStdin())
	email := promptLine(cmd, in, "Email: ")
	password, err := promptPassword(cmd, in, "Password: ")
	if err != nil {
		return err
	}
	sess, err := openSession(*a.serverURL)
	if err != nil {
		return err
	}
	defer sess.Close()
	user, err := sess.client.Register(cmd.Context(), email, string(password))
	if err != nil {
		return fmt.Errorf("register failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Registered %s\n", user.Email)
	return nil
}

func (a *authClient) login(cmd *cobra.Command, args []string) error {
	in := bufio.NewReader(cmd.InOrStdin())
	email := promptLine(cmd, in, "Email: ")
	password, err := promptPassword(cmd, in, "Password: ")
	if err != nil {
		return err
	}
	sess, err := openSession(*a.serverURL)
	if err != nil {
		return err
	}
	defer sess.Close()
	if err := sess.client.Login(cmd.Context(), email, string(password)); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged in")
	return nil
}

func (a *authClient) logout(cmd *cobra.Command, args []string) error {
	sess, err := openSession(*a.serverURL)
	if err != nil {
		return err
	}
	defer sess.Close()
	if err := sess.client.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	return nil
}

func (a *authClient) whoami(cmd *cobra.Command, args []string) error {
	sess, err := openSession(*a.serverURL)
	if err != nil {
		return err
	}
	defer sess.Close()
	id, err := sess.client.CurrentIdentity(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", id.Email, id.Provider)
	return nil
}

func promptLine(cmd *cobra.Command, in *bufio.Reader, prompt string) string {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptPassword(cmd *cobra.Command, in *bufio.Reader, prompt string) ([]byte, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pass, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		return pass, err
	}
	// non-terminal input (tests, pipes) falls back to a plain line read
	line, _ := in.ReadString('\n')
	return []byte(strings.TrimSpace(line)), nil
}
