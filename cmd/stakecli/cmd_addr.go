package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/stakeweave"
	"github.com/iov-one/stakeweave/crypto/bech32"
)

func cmdAddr(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the address of a named account, in hex and bech32 format.

The hex form can be used as a vault or staker in replayed events.
`)
		fl.PrintDefaults()
	}
	var (
		nameFl = fl.String("name", "", "Account name. Required.")
		hrpFl  = fl.String("hrp", env("STAKECLI_HRP", stakeweave.AddressHRP),
			"Human readable part of the bech32 address. You can use STAKECLI_HRP environment variable to set it.")
	)
	fl.Parse(args)

	if *nameFl == "" {
		flagDie("name is required")
	}
	addr := accountCondition(*nameFl).Address()
	enc, err := bech32.Encode(*hrpFl, addr[:])
	if err != nil {
		return fmt.Errorf("cannot encode bech32 address: %s", err)
	}
	_, err = fmt.Fprintf(output, "%s\t%s\n", addr, enc)
	return err
}

func accountCondition(name string) stakeweave.Condition {
	return stakeweave.NewCondition("stake", "account", []byte(name))
}
