package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/apicaller/internal/config"
	"github.com/fivetwenty-io/apicaller/internal/constants"
	"github.com/fivetwenty-io/apicaller/internal/logging"
	"github.com/fivetwenty-io/apicaller/pkg/apicaller"
)

// JSON formatting.
const defaultJSONIndent = 2

// tokenReader reads a secret from a terminal. Tests replace it.
var tokenReader = func(fd int) ([]byte, error) {
	if !term.IsTerminal(fd) {
		return nil, constants.ErrTokenPromptNotTerminal
	}

	return term.ReadPassword(fd)
}

// loadConfig loads the configuration and applies the global flags that do
// not map onto config keys.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper(), viper.GetString("config"))
	if err != nil {
		return nil, err
	}

	if viper.GetBool("verbose") {
		cfg.Logging.Level = "debug"
	}

	if viper.GetBool("skip-ssl-validation") {
		cfg.API.VerifySSL = false
	}

	if viper.GetBool("ask-token") {
		fmt.Fprint(cmd.ErrOrStderr(), "Token: ")

		token, err := tokenReader(int(os.Stdin.Fd())) // #nosec G115 -- file descriptors fit in int
		if err != nil {
			return nil, fmt.Errorf("failed to read token: %w", err)
		}

		fmt.Fprintln(cmd.ErrOrStderr())

		cfg.API.Token = strings.TrimSpace(string(token))
	}

	return cfg, nil
}

// buildRoot loads the declaration and instantiates the client tree.
func buildRoot(cmd *cobra.Command) (*apicaller.Node, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	err = cfg.RequireDeclaration()
	if err != nil {
		return nil, nil, err
	}

	endpoint, err := apicaller.LoadDeclarationFile(cfg.API.Declaration)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load declaration: %w", err)
	}

	logger := logging.New(cmd.ErrOrStderr(), logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Color:  cfg.Logging.Color,
	})

	apicaller.SetDefaultLimiter(cfg.Limiter())

	root, err := apicaller.NewRoot(endpoint, cfg.ClientConfig(logging.NewAdapter(logger), nil))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build client: %w", err)
	}

	return root, cfg, nil
}

// splitPath turns "v1.users" or "v1/users" into child names.
func splitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool {
		return r == '.' || r == '/'
	})
}

func resolveCollection(root *apicaller.Node, path string) (*apicaller.Collection, error) {
	names := splitPath(path)
	if len(names) == 0 {
		return nil, constants.ErrPathRequired
	}

	res, err := root.Walk(names...)
	if err != nil {
		return nil, err
	}

	collection, ok := res.(*apicaller.Collection)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %s", constants.ErrNotACollection, path, res.Endpoint().Kind())
	}

	return collection, nil
}

// resolveItem addresses one item of a collection by its lookup value.
func resolveItem(root *apicaller.Node, path, lookup string) (*apicaller.Record, error) {
	if lookup == "" {
		return nil, constants.ErrLookupRequired
	}

	collection, err := resolveCollection(root, path)
	if err != nil {
		return nil, err
	}

	item := collection.Endpoint().Item()
	if item == nil {
		return nil, fmt.Errorf("%w: %s", constants.ErrNoItemEndpoint, path)
	}

	return collection.Get(map[string]any{item.LookupKey(): lookup})
}

// writeStructured encodes data as JSON or YAML. It reports false for the
// table format so the caller renders a table instead.
func writeStructured(out io.Writer, format string, data any) (bool, error) {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", strings.Repeat(" ", defaultJSONIndent))

		return true, encoder.Encode(data)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(out)
		defer func() {
			_ = encoder.Close()
		}()

		return true, encoder.Encode(data)
	default:
		return false, nil
	}
}

func renderTable(out io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewWriter(out)
	table.Header(toCells(headers)...)

	for _, row := range rows {
		_ = table.Append(toCells(row)...)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}

	return cells
}

// formatValue renders a decoded JSON value for a table cell.
func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return constants.None
	case string:
		return v
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return constants.NotAvailable
		}

		return string(data)
	default:
		return fmt.Sprint(v)
	}
}

// plainItem converts a collection item into a value the encoders can print.
func plainItem(item any) any {
	if record, ok := item.(*apicaller.Record); ok {
		fields := record.Fields()
		if _, ok := fields[record.LookupKey()]; !ok && record.Lookup() != "" {
			fields[record.LookupKey()] = record.Lookup()
		}

		return fields
	}

	return item
}

// itemColumns returns the sorted union of object keys across items.
func itemColumns(items []any) []string {
	seen := make(map[string]bool)

	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			for key := range obj {
				seen[key] = true
			}
		}
	}

	columns := make([]string, 0, len(seen))
	for key := range seen {
		columns = append(columns, key)
	}

	sort.Strings(columns)

	return columns
}
