package main

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/emfs/cmd/internal/cmderr"
	"github.com/nspcc-dev/emfs/pkg/volume"
	"github.com/nspcc-dev/neo-go/cli/input"
	"github.com/spf13/cobra"
)

const newPasswordFlag = "new-password"

var errPasswordMismatch = errors.New("passwords don't match")

// exitWrongPassword is the exit code of check-password for wrong passwords.
const exitWrongPassword = 2

func readNewPassword(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Changed(newPasswordFlag) {
		return cmd.Flags().GetString(newPasswordFlag)
	}

	pwd, err := input.ReadPassword("New password > ")
	if err != nil {
		return "", fmt.Errorf("can't read password: %w", err)
	}

	confirm, err := input.ReadPassword("Confirm password > ")
	if err != nil {
		return "", fmt.Errorf("can't read password: %w", err)
	}

	if pwd != confirm {
		return "", errPasswordMismatch
	}
	return pwd, nil
}

func changePassword(cmd *cobra.Command, a *app, newPwd string) error {
	if a.vol != nil {
		return a.vol.ChangePassword(newPwd)
	}

	if memory, _ := cmd.Flags().GetBool(memoryFlag); memory {
		return a.withVolume(cmd, false, func(v *volume.Volume) error {
			return v.ChangePassword(newPwd)
		})
	}

	p := a.volumePath(cmd)
	if p == "" {
		return errNoVolume
	}

	oldPwd, err := a.password(cmd)
	if err != nil {
		return err
	}
	return volume.ChangePassword(p, oldPwd, newPwd)
}

func newPasswdCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Set, change or remove volume password",
		Long: `Re-encrypts the volume with a new password. Current password is taken from
--password, --ask-password or config. Empty new password removes the protection.
For in-memory volumes the password protects saved images only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			newPwd, err := readNewPassword(cmd)
			if err != nil {
				return err
			}

			if err := changePassword(cmd, a, newPwd); err != nil {
				return err
			}

			if newPwd == "" {
				cmd.Println("Password removed.")
			} else {
				cmd.Println("Password changed.")
			}
			return nil
		},
	}

	cmd.Flags().String(newPasswordFlag, "", "New password, read from the terminal if not set")
	return cmd
}

func newCheckPasswordCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check-password",
		Short: "Check volume password",
		Long: `Checks whether the password opens the volume file. Exits with code 2 if it
doesn't.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := a.volumePath(cmd)
			if p == "" {
				return errNoVolume
			}

			protected, err := volume.IsPasswordProtected(p)
			if err != nil {
				return err
			}

			pwd, err := a.password(cmd)
			if err != nil {
				return err
			}

			ok, err := volume.CheckPassword(p, pwd)
			if err != nil {
				return err
			}
			if !ok {
				return cmderr.ExitErr{Code: exitWrongPassword, Cause: volume.ErrWrongPassword}
			}

			if protected {
				cmd.Println("Password is valid.")
			} else {
				cmd.Println("Volume is not protected.")
			}
			return nil
		},
	}
}
