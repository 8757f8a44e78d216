package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fivetwenty-io/apicaller/pkg/apicaller"
)

// TreeEntry is one node of the declared tree.
type TreeEntry struct {
	Path string `json:"path" yaml:"path"`
	Kind string `json:"kind" yaml:"kind"`
	URL  string `json:"url"  yaml:"url"`
}

// NewTreeCommand creates the tree command
func NewTreeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Show the declared endpoint tree",
		Long:  "List every declared node with its kind and absolute URL. No API call is made.",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _, err := buildRoot(cmd)
			if err != nil {
				return err
			}

			entries := collectTree(root, nil)

			done, err := writeStructured(cmd.OutOrStdout(), viper.GetString("output"), entries)
			if done || err != nil {
				return err
			}

			title := cases.Title(language.English)

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{entry.Path, title.String(entry.Kind), entry.URL})
			}

			return renderTable(cmd.OutOrStdout(), []string{"Path", "Kind", "URL"}, rows)
		},
	}
}

func collectTree(res apicaller.Resource, path []string) []TreeEntry {
	name := strings.Join(path, ".")
	if name == "" {
		name = res.Name()
	}

	entries := []TreeEntry{{
		Path: name,
		Kind: res.Endpoint().Kind().String(),
		URL:  res.URL(),
	}}

	for _, child := range res.Children() {
		childPath := append(append([]string{}, path...), child.Name())
		entries = append(entries, collectTree(child, childPath)...)
	}

	return entries
}
