package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/KevinKickass/OpenLaundryCore/internal/auth"
)

type hashPasswordCommand struct {
	Args struct {
		Password string `positional-arg-name:"password" description:"Password to hash; read from stdin when omitted"`
	} `positional-args:"yes"`

	in  io.Reader
	out io.Writer
}

func (c *hashPasswordCommand) Execute(_ []string) error {
	password := c.Args.Password
	if password == "" {
		in := c.in
		if in == nil {
			in = os.Stdin
		}
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return fmt.Errorf("empty password")
	}

	hash, err := auth.NewPasswordHasher().HashPassword(password)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, hash)
	return err
}
