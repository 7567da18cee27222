// Command kvs-client talks to a running kvs-server over TCP (spec §6,
// "CLI (client)").
package main

import (
	"fmt"
	"net"
	"os"

	"github.com/spf13/cobra"

	"kvd/internal/protocol"
)

func main() {
	var addr string

	root := &cobra.Command{Use: "kvs-client"}
	root.PersistentFlags().StringVar(&addr, "addr", "127.0.0.1:4000", "server address")

	root.AddCommand(
		setCmd(&addr),
		getCmd(&addr),
		rmCmd(&addr),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func roundTrip(addr string, op protocol.Operation) (protocol.Response, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return protocol.Response{}, err
	}
	defer conn.Close()

	if err := protocol.NewEncoder(conn).EncodeOperation(op); err != nil {
		return protocol.Response{}, err
	}
	return protocol.NewDecoder(conn).DecodeResponse()
}

// setCmd: "set KEY VALUE [--addr ADDR]" -> exit 0 on success.
func setCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:  "set KEY VALUE",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := roundTrip(*addr, protocol.Operation{Op: protocol.OpSet, Key: args[0], Value: args[1]})
			if err != nil {
				return err
			}
			if resp.Status != 0 {
				msg := "unknown error"
				if resp.Msg != nil {
					msg = *resp.Msg
				}
				fmt.Fprintln(os.Stderr, msg)
				os.Exit(1)
			}
			return nil
		},
	}
}

// getCmd: "get KEY [--addr ADDR]" -> prints value or "Key not found",
// exit 0 in both cases. Any other failure message from the server goes
// to stderr with a non-zero exit.
func getCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:  "get KEY",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := roundTrip(*addr, protocol.Operation{Op: protocol.OpGet, Key: args[0]})
			if err != nil {
				return err
			}
			if resp.Status == 0 {
				fmt.Println(*resp.Msg)
				return nil
			}
			if resp.Msg != nil && *resp.Msg != "Key not found" {
				fmt.Fprintln(os.Stderr, *resp.Msg)
				os.Exit(1)
			}
			fmt.Println("Key not found")
			return nil
		},
	}
}

// rmCmd: "rm KEY [--addr ADDR]" -> exit 0 on success; on miss prints
// "Key not found" to stderr and exits non-zero.
func rmCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:  "rm KEY",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := roundTrip(*addr, protocol.Operation{Op: protocol.OpRemove, Key: args[0]})
			if err != nil {
				return err
			}
			if resp.Status == 0 {
				return nil
			}
			msg := "unknown error"
			if resp.Msg != nil {
				msg = *resp.Msg
			}
			fmt.Fprintln(os.Stderr, msg)
			os.Exit(1)
			return nil
		},
	}
}
