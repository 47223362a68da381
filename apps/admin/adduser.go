package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/user"
)

// addUser registers a user.User with the given role.
func (cli *commandLine) addUser(uname, pwd, role string) error {
	usr, err := cli.usrSvc.Register(context.Background(), user.NewUser{
		Username: uname,
		Password: pwd,
		Role:     role,
	})
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	fmt.Printf("%s %q created\n", usr.Role, usr.Username)
	return nil
}
