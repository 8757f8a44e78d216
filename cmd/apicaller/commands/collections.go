package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/apicaller/internal/constants"
)

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list PATH",
		Short: "List the items of a collection",
		Long:  "Iterate a collection page by page, e.g. 'apicaller list v1.users'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return constants.ErrInvalidLimitFlag
			}

			root, _, err := buildRoot(cmd)
			if err != nil {
				return err
			}

			collection, err := resolveCollection(root, args[0])
			if err != nil {
				return err
			}

			items := []any{}

			for item, err := range collection.Items(cmd.Context()) {
				if err != nil {
					return err
				}

				items = append(items, plainItem(item))
				if limit > 0 && len(items) >= limit {
					break
				}
			}

			done, err := writeStructured(cmd.OutOrStdout(), viper.GetString("output"), items)
			if done || err != nil {
				return err
			}

			columns := itemColumns(items)
			if len(columns) == 0 {
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{formatValue(item)})
				}

				return renderTable(cmd.OutOrStdout(), []string{"Value"}, rows)
			}

			rows := make([][]string, 0, len(items))
			for _, item := range items {
				obj, _ := item.(map[string]any)
				row := make([]string, len(columns))

				for i, column := range columns {
					value, ok := obj[column]
					if !ok {
						row[i] = constants.NotAvailable

						continue
					}

					row[i] = formatValue(value)
				}

				rows = append(rows, row)
			}

			return renderTable(cmd.OutOrStdout(), columns, rows)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of items to list (0 for all)")

	return cmd
}

// NewCountCommand creates the count command
func NewCountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "count PATH",
		Short: "Show the total number of items in a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _, err := buildRoot(cmd)
			if err != nil {
				return err
			}

			collection, err := resolveCollection(root, args[0])
			if err != nil {
				return err
			}

			count, err := collection.Len(cmd.Context())
			if err != nil {
				return err
			}

			result := map[string]any{"collection": args[0], "count": count}

			done, err := writeStructured(cmd.OutOrStdout(), viper.GetString("output"), result)
			if done || err != nil {
				return err
			}

			return renderTable(cmd.OutOrStdout(), []string{"Collection", "Count"}, [][]string{
				{args[0], formatValue(count)},
			})
		},
	}
}
