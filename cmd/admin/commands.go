package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/onexay/gitobs/internal/types"
)

func authorFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     FlagAuthor,
		Aliases:  []string{"a"},
		Sources:  cli.EnvVars(EnvAuthor),
		Required: true,
		Usage:    "Commit `AUTHOR` name",
	}
}

func branchesCommand() *cli.Command {
	return &cli.Command{
		Name:  "branches",
		Usage: "List branches",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var branches []types.Branch
			if err := newClient(cmd).do(ctx, http.MethodGet, "/branches", nil, &branches); err != nil {
				return err
			}
			return render(cmd, branches, func(w io.Writer) error {
				t := newTable("Branch", "Head", "Commits").style(0, fixed(branchColor))
				for _, b := range branches {
					t.add(b.Name, shortID(b.Head), strconv.Itoa(b.Commits))
				}
				return t.write(w)
			})
		},
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show a branch history",
				ArgsUsage: "NAME",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name := cmd.Args().First()
					if name == "" {
						return fmt.Errorf("branch name is required")
					}
					var detail struct {
						Branch  types.Branch   `json:"branch"`
						Commits []types.Commit `json:"commits"`
					}
					if err := newClient(cmd).do(ctx, http.MethodGet, "/branches/"+url.PathEscape(name), nil, &detail); err != nil {
						return err
					}
					return render(cmd, detail, func(w io.Writer) error {
						t := newTable("Commit", "Author", "Changes").style(0, fixed(commitColor))
						for _, c := range detail.Commits {
							t.add(shortID(c.ID), c.Author, strings.Join(c.Changes, ", "))
						}
						return t.write(w)
					})
				},
			},
			{
				Name:      "create",
				Usage:     "Create a branch from a snapshot of another",
				ArgsUsage: "NAME",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from", Value: "main", Usage: "Source `BRANCH`"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name := cmd.Args().First()
					if name == "" {
						return fmt.Errorf("branch name is required")
					}
					var branch types.Branch
					body := map[string]string{"source": cmd.String("from"), "name": name}
					if err := newClient(cmd).do(ctx, http.MethodPost, "/branches", body, &branch); err != nil {
						return err
					}
					return render(cmd, branch, func(w io.Writer) error {
						_, err := fmt.Fprintf(w, "created %s from %s (%d commits)\n", branchColor.Sprint(branch.Name), cmd.String("from"), branch.Commits)
						return err
					})
				},
			},
		},
	}
}

func commitCommand() *cli.Command {
	return &cli.Command{
		Name:  "commit",
		Usage: "Commit changes to a branch",
		Flags: []cli.Flag{
			authorFlag(),
			&cli.StringFlag{Name: "branch", Aliases: []string{"b"}, Value: "main", Usage: "Target `BRANCH`"},
			&cli.StringSliceFlag{Name: "change", Aliases: []string{"c"}, Usage: "Changed `PATH` (repeatable)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var resp struct {
				Branch string       `json:"branch"`
				Commit types.Commit `json:"commit"`
			}
			body := map[string]any{"branch": cmd.String("branch"), "changes": cmd.StringSlice("change")}
			if err := newClient(cmd).do(ctx, http.MethodPost, "/commits", body, &resp); err != nil {
				return err
			}
			return render(cmd, resp, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "[%s %s] %s\n", branchColor.Sprint(resp.Branch), commitColor.Sprint(shortID(resp.Commit.ID)), strings.Join(resp.Commit.Changes, ", "))
				return err
			})
		},
	}
}

func mergeCommand() *cli.Command {
	return &cli.Command{
		Name:  "merge",
		Usage: "Merge one branch into another",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Required: true, Usage: "Source `BRANCH`"},
			&cli.StringFlag{Name: "into", Value: "main", Usage: "Target `BRANCH`"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var branch types.Branch
			body := map[string]string{"source": cmd.String("from"), "target": cmd.String("into")}
			if err := newClient(cmd).do(ctx, http.MethodPost, "/merges", body, &branch); err != nil {
				return err
			}
			return render(cmd, branch, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "merged %s into %s (%d commits)\n", cmd.String("from"), branchColor.Sprint(branch.Name), branch.Commits)
				return err
			})
		},
	}
}

func compareCommand() *cli.Command {
	return &cli.Command{
		Name:  "compare",
		Usage: "Show the history diff between two branches",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "source", Value: "main", Usage: "Base `BRANCH`"},
			&cli.StringFlag{Name: "target", Required: true, Usage: "Compared `BRANCH`"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var resp struct {
				Identical bool   `json:"identical"`
				Diff      string `json:"diff"`
			}
			query := url.Values{"source": {cmd.String("source")}, "target": {cmd.String("target")}}
			if err := newClient(cmd).do(ctx, http.MethodGet, "/compare?"+query.Encode(), nil, &resp); err != nil {
				return err
			}
			return render(cmd, resp, func(w io.Writer) error {
				if resp.Identical {
					_, err := fmt.Fprintln(w, "histories are identical")
					return err
				}
				var b strings.Builder
				for _, line := range strings.Split(resp.Diff, "\n") {
					switch {
					case strings.HasPrefix(line, "+"):
						line = color.New(color.FgGreen).Sprint(line)
					case strings.HasPrefix(line, "-"):
						line = color.New(color.FgRed).Sprint(line)
					}
					b.WriteString(line + "\n")
				}
				_, err := io.WriteString(w, b.String())
				return err
			})
		},
	}
}

func hooksCommand() *cli.Command {
	return &cli.Command{
		Name:  "hooks",
		Usage: "Manage webhooks",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var hooks []types.Hook
			if err := newClient(cmd).do(ctx, http.MethodGet, "/webhooks", nil, &hooks); err != nil {
				return err
			}
			return render(cmd, hooks, func(w io.Writer) error {
				t := newTable("ID", "Branch", "Event", "Caught").style(1, fixed(branchColor)).style(2, byEvent)
				for _, h := range hooks {
					t.add(h.ID, h.Branch, h.Event, strconv.Itoa(h.Caught))
				}
				return t.write(w)
			})
		},
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Register a webhook",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "branch", Aliases: []string{"b"}, Value: "main", Usage: "Watched `BRANCH`"},
					&cli.StringFlag{Name: "event", Aliases: []string{"e"}, Value: "commit", Usage: "commit or merge"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					var hook types.Hook
					body := map[string]string{"branch": cmd.String("branch"), "event": cmd.String("event")}
					if err := newClient(cmd).do(ctx, http.MethodPost, "/webhooks", body, &hook); err != nil {
						return err
					}
					return render(cmd, hook, func(w io.Writer) error {
						_, err := fmt.Fprintf(w, "registered %s (%s on %s)\n", hook.ID, byEvent(hook.Event).Sprint(hook.Event), hook.Branch)
						return err
					})
				},
			},
			{
				Name:      "events",
				Usage:     "List events caught by a webhook",
				ArgsUsage: "ID",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id := cmd.Args().First()
					if id == "" {
						return fmt.Errorf("webhook id is required")
					}
					var events []types.Event
					if err := newClient(cmd).do(ctx, http.MethodGet, "/webhooks/"+url.PathEscape(id)+"/events", nil, &events); err != nil {
						return err
					}
					return render(cmd, events, func(w io.Writer) error {
						t := newTable("#", "Event", "Branch", "Commits").style(1, byEvent)
						for i, ev := range events {
							ids := make([]string, 0, len(ev.Commits))
							for _, c := range ev.Commits {
								ids = append(ids, shortID(c.ID))
							}
							t.add(strconv.Itoa(i+1), ev.Type, ev.Branch, strings.Join(ids, " "))
						}
						return t.write(w)
					})
				},
			},
			{
				Name:      "deliveries",
				Usage:     "List the delivery journal of a webhook",
				ArgsUsage: "ID",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id := cmd.Args().First()
					if id == "" {
						return fmt.Errorf("webhook id is required")
					}
					var deliveries []types.Delivery
					if err := newClient(cmd).do(ctx, http.MethodGet, "/webhooks/"+url.PathEscape(id)+"/deliveries", nil, &deliveries); err != nil {
						return err
					}
					return render(cmd, deliveries, func(w io.Writer) error {
						t := newTable("Delivery", "Event", "Branch", "Commits", "Delivered").style(1, byEvent)
						for _, d := range deliveries {
							t.add(d.ID, d.Event.Type, d.Event.Branch, strconv.Itoa(len(d.Event.Commits)), d.DeliveredAt.Format("2006-01-02 15:04:05"))
						}
						return t.write(w)
					})
				},
			},
		},
	}
}

func render(cmd *cli.Command, payload any, text func(w io.Writer) error) error {
	out := cmd.Root().Writer
	if cmd.Bool(FlagJSON) {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}
	return text(out)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
