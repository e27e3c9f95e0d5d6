package main

import (
	"encoding/json"
	"os"

	"github.com/koustreak/s3studio/internal/profile"
	"github.com/urfave/cli/v2"
)

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// profileView hides secrets when profiles are printed.
type profileView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Bucket   string `json:"bucket"`
	Region   string `json:"region"`
	Endpoint string `json:"endpoint,omitempty"`
	Active   bool   `json:"active"`
}

func profilesCommand() *cli.Command {
	return &cli.Command{
		Name:  "profiles",
		Usage: "Manage saved connection profiles",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved profiles",
				Action: func(c *cli.Context) error {
					store := fromContext(c).profiles
					active, _ := store.Active()

					views := []profileView{}
					for _, p := range store.List() {
						views = append(views, profileView{
							ID:       p.ID,
							Name:     p.Name,
							Bucket:   p.Config.Bucket,
							Region:   p.Config.Region,
							Endpoint: p.Config.Endpoint,
							Active:   p.ID == active.ID,
						})
					}
					return printJSON(c, views)
				},
			},
			{
				Name:      "add",
				Usage:     "Save the current storage flags as a profile",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "activate", Usage: "make the new profile active"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("add needs exactly one name", 1)
					}
					a := fromContext(c)
					p, err := a.profiles.Add(c.Args().First(), a.cfg.Storage)
					if err != nil {
						return err
					}
					if c.Bool("activate") {
						if err := a.profiles.SetActive(p.ID); err != nil {
							return err
						}
					}
					a.log.With().Str("profile", p.ID).Logger().Info("profile saved")
					return nil
				},
			},
			{
				Name:      "use",
				Usage:     "Make a profile active",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					return fromContext(c).profiles.SetActive(c.Args().First())
				},
			},
			{
				Name:      "rm",
				Usage:     "Delete a profile",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					return fromContext(c).profiles.Delete(c.Args().First())
				},
			},
			{
				Name:  "export",
				Usage: "Write all profiles as YAML",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "include-secrets", Usage: "keep secret keys and session tokens"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default stdout)"},
				},
				Action: func(c *cli.Context) error {
					data, err := fromContext(c).profiles.MarshalExport(c.Bool("include-secrets"))
					if err != nil {
						return err
					}
					if out := c.String("out"); out != "" {
						return os.WriteFile(out, data, 0o600)
					}
					_, err = c.App.Writer.Write(data)
					return err
				},
			},
			{
				Name:      "import",
				Usage:     "Import profiles from an export file",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "strategy", Value: string(profile.StrategyRename), Usage: "on duplicate names: rename, skip or overwrite"},
				},
				Action: func(c *cli.Context) error {
					data, err := os.ReadFile(c.Args().First())
					if err != nil {
						return err
					}
					res, err := fromContext(c).profiles.Import(data, profile.Strategy(c.String("strategy")))
					if err != nil {
						return err
					}
					return printJSON(c, res)
				},
			},
		},
	}
}
