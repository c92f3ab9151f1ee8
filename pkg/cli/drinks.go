package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/platinummonkey/coffeeshop/pkg/drinks"
)

func newListCommand(out io.Writer) *Command {
	cmd := &Command{
		Name:        "list",
		Description: "List drink titles",
		Flags:       flag.NewFlagSet("list", flag.ContinueOnError),
	}
	conn := addConnectionFlags(cmd.Flags)
	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		items, err := conn.anonymous().ListDrinks(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list drinks: %w", err)
		}
		return printJSON(out, items)
	}
	return cmd
}

func newDetailCommand(out io.Writer) *Command {
	cmd := &Command{
		Name:        "detail",
		Description: "List drinks with recipes",
		Flags:       flag.NewFlagSet("detail", flag.ContinueOnError),
	}
	conn := addConnectionFlags(cmd.Flags)
	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		ctx := context.Background()
		c, err := conn.authenticated(ctx)
		if err != nil {
			return err
		}
		items, err := c.ListDrinksDetail(ctx)
		if err != nil {
			return fmt.Errorf("failed to list drinks: %w", err)
		}
		return printJSON(out, items)
	}
	return cmd
}

func newCreateCommand(out io.Writer) *Command {
	cmd := &Command{
		Name:        "create",
		Description: "Create a drink",
		Flags:       flag.NewFlagSet("create", flag.ContinueOnError),
	}
	conn := addConnectionFlags(cmd.Flags)
	title := cmd.Flags.String("title", "", "Drink title")
	recipe := cmd.Flags.String("recipe", "", "Recipe as a JSON array of ingredients")
	recipeFile := cmd.Flags.String("recipe-file", "", "File containing the recipe JSON")
	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		if *title == "" {
			return fmt.Errorf("title is required")
		}
		ingredients, err := readRecipe(*recipe, *recipeFile)
		if err != nil {
			return err
		}
		ctx := context.Background()
		c, err := conn.authenticated(ctx)
		if err != nil {
			return err
		}
		drink, err := c.CreateDrink(ctx, *title, ingredients)
		if err != nil {
			return fmt.Errorf("failed to create drink: %w", err)
		}
		return printJSON(out, drink)
	}
	return cmd
}

func newUpdateCommand(out io.Writer) *Command {
	cmd := &Command{
		Name:        "update",
		Description: "Replace a drink's title and recipe",
		Flags:       flag.NewFlagSet("update", flag.ContinueOnError),
	}
	conn := addConnectionFlags(cmd.Flags)
	id := cmd.Flags.String("id", "", "Drink ID")
	title := cmd.Flags.String("title", "", "Drink title")
	recipe := cmd.Flags.String("recipe", "", "Recipe as a JSON array of ingredients")
	recipeFile := cmd.Flags.String("recipe-file", "", "File containing the recipe JSON")
	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		drinkID, err := parseID(*id)
		if err != nil {
			return err
		}
		if *title == "" {
			return fmt.Errorf("title is required")
		}
		ingredients, err := readRecipe(*recipe, *recipeFile)
		if err != nil {
			return err
		}
		ctx := context.Background()
		c, err := conn.authenticated(ctx)
		if err != nil {
			return err
		}
		drink, err := c.UpdateDrink(ctx, drinkID, *title, ingredients)
		if err != nil {
			return fmt.Errorf("failed to update drink %d: %w", drinkID, err)
		}
		return printJSON(out, drink)
	}
	return cmd
}

func newDeleteCommand(out io.Writer) *Command {
	cmd := &Command{
		Name:        "delete",
		Description: "Delete a drink",
		Flags:       flag.NewFlagSet("delete", flag.ContinueOnError),
	}
	conn := addConnectionFlags(cmd.Flags)
	id := cmd.Flags.String("id", "", "Drink ID")
	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		drinkID, err := parseID(*id)
		if err != nil {
			return err
		}
		ctx := context.Background()
		c, err := conn.authenticated(ctx)
		if err != nil {
			return err
		}
		deleted, err := c.DeleteDrink(ctx, drinkID)
		if err != nil {
			return fmt.Errorf("failed to delete drink %d: %w", drinkID, err)
		}
		fmt.Fprintf(out, "deleted drink %d\n", deleted)
		return nil
	}
	return cmd
}

func parseID(raw string) (int64, error) {
	if raw == "" {
		return 0, fmt.Errorf("id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// readRecipe takes the recipe from the inline flag or, failing that, a file
func readRecipe(inline, path string) ([]drinks.Ingredient, error) {
	raw := []byte(inline)
	if inline == "" {
		if path == "" {
			return nil, fmt.Errorf("recipe or recipe-file is required")
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read recipe file: %w", err)
		}
		raw = data
	}

	var ingredients []drinks.Ingredient
	if err := json.Unmarshal(raw, &ingredients); err != nil {
		return nil, fmt.Errorf("invalid recipe: %w", err)
	}
	return ingredients, nil
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
