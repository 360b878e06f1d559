package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/yildizm/CodeLens/internal/client"
)

const catalogTimeout = 10 * time.Second

func newLanguagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List languages the server can analyze",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(cmd, "languages", (*client.Client).SupportedLanguages)
		},
	}
}

func newProvidersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the server's LLM providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(cmd, "providers", (*client.Client).SupportedProviders)
		},
	}
}

type listFunc func(*client.Client, context.Context) ([]string, error)

func runCatalog(cmd *cobra.Command, key string, list listFunc) error {
	c, err := client.New(getServerURL())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), catalogTimeout)
	defer cancel()

	items, err := list(c, ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", key, err)
	}
	return printList(cmd.OutOrStdout(), key, items, getOutputFormat())
}

// printList writes items one per line, or as a {key: [...]} object for json
func printList(w io.Writer, key string, items []string, format string) error {
	switch strings.ToLower(format) {
	case "json":
		if items == nil {
			items = []string{}
		}
		data, err := json.MarshalIndent(map[string][]string{key: items}, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "markdown", "md":
		for _, item := range items {
			if _, err := fmt.Fprintf(w, "- %s\n", item); err != nil {
				return err
			}
		}
		return nil
	default:
		for _, item := range items {
			if _, err := fmt.Fprintln(w, item); err != nil {
				return err
			}
		}
		return nil
	}
}
