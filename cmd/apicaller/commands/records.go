package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewShowCommand creates the show command
func NewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show PATH LOOKUP [FIELD...]",
		Short: "Show the fields of one collection item",
		Long: `Address one item of a collection by its lookup value and read its fields.
The item is fetched once, on the first field read. Without FIELD arguments
every declared field is shown.`,
		Args: cobra.MinimumNArgs(2), //nolint:mnd // path and lookup
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _, err := buildRoot(cmd)
			if err != nil {
				return err
			}

			record, err := resolveItem(root, args[0], args[1])
			if err != nil {
				return err
			}

			fields := args[2:]
			if len(fields) == 0 {
				fields = record.Endpoint().Fields()
			}

			values := make(map[string]any, len(fields))
			rows := make([][]string, 0, len(fields))

			for _, field := range fields {
				value, err := record.Get(cmd.Context(), field)
				if err != nil {
					return err
				}

				values[field] = value
				rows = append(rows, []string{field, formatValue(value)})
			}

			done, err := writeStructured(cmd.OutOrStdout(), viper.GetString("output"), values)
			if done || err != nil {
				return err
			}

			return renderTable(cmd.OutOrStdout(), []string{"Field", "Value"}, rows)
		},
	}
}

// NewCreateCommand creates the create command
func NewCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create PATH LOOKUP",
		Short: "Create one collection item",
		Args:  cobra.ExactArgs(2), //nolint:mnd // path and lookup
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _, err := buildRoot(cmd)
			if err != nil {
				return err
			}

			record, err := resolveItem(root, args[0], args[1])
			if err != nil {
				return err
			}

			err = record.Create(cmd.Context())
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", record.URL())

			return nil
		},
	}
}

// NewDeleteCommand creates the delete command
func NewDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete PATH LOOKUP",
		Short: "Delete one collection item",
		Args:  cobra.ExactArgs(2), //nolint:mnd // path and lookup
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _, err := buildRoot(cmd)
			if err != nil {
				return err
			}

			record, err := resolveItem(root, args[0], args[1])
			if err != nil {
				return err
			}

			if !force {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Really delete %s? Use --force to confirm\n", record.URL())

				return nil
			}

			err = record.Delete(cmd.Context())
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", record.URL())

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "force deletion without confirmation")

	return cmd
}
