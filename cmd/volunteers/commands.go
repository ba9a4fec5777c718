package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/handii-app/volunteer-directory/internal/domain"
	"github.com/handii-app/volunteer-directory/pkg/hubs"
	"github.com/handii-app/volunteer-directory/pkg/volunteers"
)

func (c *cli) listCmd() *cobra.Command {
	var (
		f         volunteers.Filter
		available bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List volunteers, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("available") {
				f.Available = &available
			}
			resp, err := c.console.Client.List(commandContext(cmd), f)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&f.Skill, "skill", "", "Filter by skill")
	cmd.Flags().StringVar(&f.Location, "location", "", "Filter by location")
	cmd.Flags().BoolVar(&available, "available", false, "Filter by availability (only sent when set)")
	cmd.Flags().StringVar(&f.Language, "language", "", "Filter by language")
	cmd.Flags().IntVar(&f.Limit, "limit", 0, "Maximum volunteers to return (server default when 0)")
	return cmd
}

func (c *cli) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one volunteer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			v, err := c.console.Client.Get(commandContext(cmd), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), v)
		},
	}
}

func (c *cli) searchSkillCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search-skill <skill>",
		Short: "Search volunteers by skill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := c.console.Client.SearchBySkill(commandContext(cmd), args[0], limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", volunteers.DefaultSearchLimit, "Maximum volunteers to return")
	return cmd
}

func (c *cli) searchLocationCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search-location <location>",
		Short: "Search volunteers by location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := c.console.Client.SearchByLocation(commandContext(cmd), args[0], limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", volunteers.DefaultSearchLimit, "Maximum volunteers to return")
	return cmd
}

func (c *cli) availableCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "available",
		Short: "List volunteers currently available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := c.console.Client.ListAvailable(commandContext(cmd), limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", volunteers.DefaultSearchLimit, "Maximum volunteers to return")
	return cmd
}

func (c *cli) createCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create --file <volunteer.json>",
		Short: "Register a volunteer from a JSON file (- for stdin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in domain.NewVolunteer
			if err := readJSON(cmd, file, &in); err != nil {
				return err
			}
			v, err := c.console.Client.Create(commandContext(cmd), in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), v)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with the volunteer")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (c *cli) updateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "update <id> --file <patch.json>",
		Short: "Update a volunteer with the fields in a JSON file (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var patch domain.VolunteerPatch
			if err := readJSON(cmd, file, &patch); err != nil {
				return err
			}
			v, err := c.console.Client.Update(commandContext(cmd), id, patch)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), v)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with the fields to change")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a volunteer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := c.console.Client.Delete(commandContext(cmd), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func (c *cli) setAvailabilityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-availability <id> <true|false>",
		Short: "Toggle a volunteer's availability",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			available, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("availability must be true or false: %w", err)
			}
			v, err := c.console.Client.SetAvailability(commandContext(cmd), id, available)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), v)
		},
	}
}

func (c *cli) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the directory is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := c.console.Client.Health(commandContext(cmd))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), h)
		},
	}
}

func (c *cli) hubsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hubs",
		Short: "List the hub catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), c.console.Catalog.All())
		},
	}
}

type hubView struct {
	Hub        hubs.Hub           `json:"hub"`
	Volunteers []domain.Volunteer `json:"volunteers"`
}

func (c *cli) hubCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "hub <id>",
		Short: "List the volunteers serving a hub",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hub, ok := c.console.Catalog.ByID(args[0])
			if !ok {
				return fmt.Errorf("unknown hub %q", args[0])
			}
			found, findErr := c.console.Finder.Volunteers(commandContext(cmd), hub, limit)
			if found == nil {
				found = []domain.Volunteer{}
			}
			if err := printJSON(cmd.OutOrStdout(), hubView{Hub: hub, Volunteers: found}); err != nil {
				return err
			}
			return findErr
		},
	}
	cmd.Flags().IntVar(&limit, "limit", volunteers.DefaultSearchLimit, "Maximum volunteers to return")
	return cmd
}

// parseID only checks that raw is an integer; range checks belong to the
// registry, whose error is returned as-is.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("volunteer id must be an integer: %q", raw)
	}
	return id, nil
}

func readJSON(cmd *cobra.Command, path string, out any) error {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := sonic.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
