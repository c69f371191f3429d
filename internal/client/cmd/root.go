package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firstindiacredit-Git/cred/internal/client/api"
	"github.com/firstindiacredit-Git/cred/internal/client/keyring"
	"github.com/firstindiacredit-Git/cred/internal/client/state"
)

func NewRootCmd(version, buildDate string) *cobra.Command {
	var serverURL string
	root := &cobra.Command{
		Use:   "cred",
		Short: "PIN-gated credential locker CLI",
	}
	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Server base URL")

	root.AddCommand(newVersionCmd(version, buildDate))
	root.AddCommand(newAuthCmd(&serverURL))
	root.AddCommand(newLockerCmd(&serverURL))
	root.AddCommand(newGenCmd())
	root.AddCommand(newServersCmd(&serverURL))
	return root
}

// session bundles the local state file, the token store layered on it and
// the API client. Close releases the bbolt file lock.
type session struct {
	client *api.Client
	store  *state.Store
}

func openSession(serverURL string) (*session, error) {
	path, err := state.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("resolve state path: %w", err)
	}
	st, err := state.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open local state: %w", err)
	}
	tokens := keyring.New(st)
	return &session{client: api.New(serverURL, tokens), store: st}, nil
}

func (s *session) Close() {
	_ = s.store.Close()
}
