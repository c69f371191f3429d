package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

type serversClient struct {
	serverURL *string
}

func newServersCmd(serverURL *string) *cobra.Command {
	s := &serversClient{serverURL: serverURL}
	cmd := &cobra.Command{Use: "servers", Short: "Monitored server health checks"}
	cmd.AddCommand(&cobra.Command{Use: "list", Short: "List monitored servers", RunE: s.list})
	cmd.AddCommand(&cobra.Command{Use: "add <title> <url>", Short: "Add a server to monitor", Args: cobra.ExactArgs(2), RunE: s.add})
	cmd.AddCommand(&cobra.Command{Use: "rm <id>", Short: "Stop monitoring a server", Args: cobra.ExactArgs(1), RunE: s.remove})
	cmd.AddCommand(&cobra.Command{Use: "check <id>", Short: "Probe a server now", Args: cobra.ExactArgs(1), RunE: s.check})
	return cmd
}

func (s *serversClient) list(cmd *cobra.Command, args []string) error {
	sess, err := openSession(*s.serverURL)
	if err != nil {
		return err
	}
	defer sess.Close()
	servers, err := sess.client.ListServers(cmd.Context())
	if err != nil {
		return err
	}
	if len(servers) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No servers.")
		return nil
	}
	for _, sv := range servers {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-10s %s  %s\n", sv.ID, sv.Status, sv.Title, sv.URL)
	}
	return nil
}

func (s *serversClient) add(cmd *cobra.Command, args []string) error {
	sess, err := openSession(*s.serverURL)
	if err != nil {
		return err
	}
	defer sess.Close()
	sv, err := sess.client.AddServer(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", sv.Title, sv.ID)
	return nil
}

func (s *serversClient) remove(cmd *cobra.Command, args []string) error {
	sess, err := openSession(*s.serverURL)
	if err != nil {
		return err
	}
	defer sess.Close()
	if err := sess.client.DeleteServer(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Removed")
	return nil
}

func (s *serversClient) check(cmd *cobra.Command, args []string) error {
	sess, err := openSession(*s.serverURL)
	if err != nil {
		return err
	}
	defer sess.Close()
	sv, err := sess.client.CheckServer(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", sv.Title, sv.Status)
	return nil
}
