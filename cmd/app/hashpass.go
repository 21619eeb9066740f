package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"evamed-backend/internal/service"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Read a password and print its bcrypt hash",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pw, err := readPassword(cmd, "Contraseña: ", true)
		if err != nil {
			return err
		}
		hash, err := service.HashPassword(pw)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

// readPassword reads without echo from a terminal, or one line from a pipe.
// confirm asks twice on terminals.
func readPassword(cmd *cobra.Command, prompt string, confirm bool) (string, error) {
	fd := int(os.Stdin.Fd())
	if in := cmd.InOrStdin(); in != io.Reader(os.Stdin) || !term.IsTerminal(fd) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	errOut := cmd.ErrOrStderr()
	fmt.Fprint(errOut, prompt)
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(errOut)
	if err != nil {
		return "", err
	}
	if confirm {
		fmt.Fprint(errOut, "Repita la contraseña: ")
		second, err := term.ReadPassword(fd)
		fmt.Fprintln(errOut)
		if err != nil {
			return "", err
		}
		if string(first) != string(second) {
			return "", errors.New("passwords do not match")
		}
	}
	return string(first), nil
}
