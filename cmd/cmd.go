// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func actorFlag(required bool) cli.Flag {
	return &cli.StringFlag{
		Name:     "as",
		Usage:    "Act as this user (id or username)",
		Required: required,
	}
}

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
		},
	}
}

// setupCommand handles database setup and migration management.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and migration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the config file if missing, initialize the database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "status",
				Usage:  "List migrations that have not been applied",
				Action: r.SetupStatus,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recently applied migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// serveCommand runs the HTTP API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Override the configured listen host",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Override the configured listen port",
			},
		},
		Action: r.Serve,
	}
}

// usersCommand administers accounts.
func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "User administration",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "Email address", Required: true},
					&cli.StringFlag{Name: "username", Usage: "Username", Required: true},
					&cli.StringFlag{Name: "first-name", Usage: "First name"},
					&cli.StringFlag{Name: "last-name", Usage: "Last name"},
					&cli.BoolFlag{Name: "staff", Usage: "Grant staff rights"},
				},
				Action: r.UsersCreate,
			},
			{
				Name:   "list",
				Usage:  "List active users",
				Flags:  jsonFlags(),
				Action: r.UsersList,
			},
			{
				Name:  "token",
				Usage: "Issue a development bearer token for a user",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "user"},
				},
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "ttl",
						Usage: "Token lifetime",
						Value: 24 * time.Hour,
					},
				},
				Action: r.UsersToken,
			},
		},
	}
}

// tagsCommand administers tags.
func tagsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tags",
		Usage: "Tag administration",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a tag",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "slug", Usage: "URL slug", Required: true},
				},
				Action: r.TagsCreate,
			},
			{
				Name:   "list",
				Usage:  "List tags",
				Flags:  jsonFlags(),
				Action: r.TagsList,
			},
		},
	}
}

// ingredientsCommand administers the ingredient catalog.
func ingredientsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "ingredients",
		Aliases: []string{"ing"},
		Usage:   "Ingredient catalog administration",
		Commands: []*cli.Command{
			{
				Name:  "load",
				Usage: "Bulk load ingredients from a CSV or JSON file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Usage: "Input format: csv or json (default: detect)"},
					&cli.IntFlag{Name: "batch-size", Usage: "Ingredients per transaction", Value: 200},
					&cli.IntFlag{Name: "workers", Usage: "Concurrent writers", Value: 2},
					&cli.FloatFlag{Name: "rate", Usage: "Batches per second (0 for unlimited)"},
				},
				Action: r.IngredientsLoad,
			},
			{
				Name:  "create",
				Usage: "Create one ingredient",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Ingredient name", Required: true},
					&cli.StringFlag{Name: "unit", Usage: "Measurement unit", Required: true},
				},
				Action: r.IngredientsCreate,
			},
			{
				Name:  "list",
				Usage: "Search ingredients by name prefix",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "prefix", Usage: "Name prefix"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of ingredients", Value: 50},
				}, jsonFlags()...),
				Action: r.IngredientsList,
			},
		},
	}
}

// recipesCommand reads and exports recipes.
func recipesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "recipes",
		Usage: "Recipe operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recipes, newest first",
				Flags: append([]cli.Flag{
					actorFlag(false),
					&cli.StringFlag{Name: "author", Usage: "Only recipes by this author id"},
					&cli.StringSliceFlag{Name: "tag", Usage: "Only recipes with any of these tag slugs"},
					&cli.BoolFlag{Name: "favorited", Usage: "Only recipes the acting user favorited"},
					&cli.BoolFlag{Name: "in-cart", Usage: "Only recipes in the acting user's cart"},
					&cli.IntFlag{Name: "page", Usage: "Page number", Value: 1},
					&cli.IntFlag{Name: "limit", Usage: "Page size"},
				}, jsonFlags()...),
				Action: r.RecipesList,
			},
			{
				Name:  "show",
				Usage: "Show one recipe",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: append([]cli.Flag{
					actorFlag(false),
					&cli.BoolFlag{Name: "markdown", Usage: "Render as Markdown"},
				}, jsonFlags()...),
				Action: r.RecipesShow,
			},
			{
				Name:  "link",
				Usage: "Print a recipe's short link",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.RecipesLink,
			},
			{
				Name:  "export",
				Usage: "Export recipes to JSON or Markdown files",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "id", Usage: "Recipe ids to export (default: all)"},
					&cli.StringFlag{Name: "format", Usage: "Export format: json or markdown", Value: "json"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory"},
					&cli.IntFlag{Name: "workers", Usage: "Concurrent workers", Value: 4},
					&cli.FloatFlag{Name: "rate", Usage: "Recipe loads per second", Value: 50},
				},
				Action: r.RecipesExport,
			},
		},
	}
}

// cartCommand works with a user's shopping cart.
func cartCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cart",
		Usage: "Shopping cart operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Print the aggregated shopping list",
				Flags: []cli.Flag{
					actorFlag(true),
					&cli.StringFlag{Name: "format", Usage: "Output format: txt, csv or md", Value: "txt"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Write to this file instead of stdout"},
				},
				Action: r.CartList,
			},
			{
				Name:    "tui",
				Aliases: []string{"interactive", "ui"},
				Usage:   "Browse the cart and check off the shopping list interactively",
				Flags: []cli.Flag{
					actorFlag(true),
					&cli.StringFlag{Name: "export-dir", Usage: "Directory for exported shopping lists", Value: "."},
					&cli.StringFlag{Name: "log-file", Usage: "Log to this file while the TUI runs", Value: "foodgram-tui.log"},
				},
				Action: r.CartTUI,
			},
		},
	}
}
