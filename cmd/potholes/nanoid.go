package main

import (
	"fmt"

	"potholes/internal/utils"

	"github.com/urfave/cli/v2"
)

var nanoidCommand = &cli.Command{
	Name:  "nanoid",
	Usage: "Print report ids, or image object tokens with --token",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"c"},
			Usage:   "how many to print",
			Value:   1,
		},
		&cli.IntFlag{
			Name:  "token",
			Usage: "print lowercase object-name tokens of this length instead of report ids",
		},
	},
	Action: func(cCtx *cli.Context) error {
		size := cCtx.Int("token")
		if size < 0 {
			return fmt.Errorf("--token must be positive")
		}

		for range cCtx.Int("count") {
			if size > 0 {
				fmt.Println(utils.Token(size))
				continue
			}
			fmt.Println(utils.NanoID())
		}
		return nil
	},
}
