package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tackle-labs/tacklebox"
	"github.com/tackle-labs/tacklebox/manifest"
)

// NewToolsCmd creates the "tools" subcommand group for manifest edits.
func NewToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect and edit the tools manifest",
	}

	addSessionFlag(cmd)
	cmd.PersistentFlags().String("tools", "", "Path to the tools manifest (overrides the session)")

	cmd.AddCommand(newToolsListCmd())
	cmd.AddCommand(newToolsAddCmd())
	cmd.AddCommand(newToolsRemoveCmd())
	cmd.AddCommand(newToolsEnableCmd())
	cmd.AddCommand(newToolsDisableCmd())
	cmd.AddCommand(newToolsMoveCmd())
	cmd.AddCommand(newToolsDividerCmd())
	cmd.AddCommand(newToolsLabelCmd())

	return cmd
}

func newToolsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List manifest records in file order",
		Args:  cobra.NoArgs,
		RunE:  runToolsList,
	}
}

func newToolsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an action record",
		Args:  cobra.ExactArgs(1),
		RunE:  runToolsAdd,
	}

	cmd.Flags().String("module", "", "Module part of the action reference (required)")
	cmd.Flags().String("function", "", "Function part of the action reference (required)")
	cmd.Flags().String("submenu", "", "Submenu path, :: separated")
	cmd.Flags().String("icon", "", "Icon file name")
	cmd.Flags().Bool("disabled", false, "Add the record disabled")
	cmd.Flags().Int("at", -1, "Insert position (default: append)")

	return cmd
}

func newToolsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <index-or-name>",
		Short: "Remove a record",
		Args:  cobra.ExactArgs(1),
		RunE:  runToolsRemove,
	}
}

func newToolsEnableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable <index-or-name>",
		Short: "Enable a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setToolEnabled(cmd, args[0], true)
		},
	}
}

func newToolsDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <index-or-name>",
		Short: "Disable a record without removing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setToolEnabled(cmd, args[0], false)
		},
	}
}

func newToolsMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <from> <to>",
		Short: "Move a record to a new position",
		Args:  cobra.ExactArgs(2),
		RunE:  runToolsMove,
	}
}

func newToolsDividerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "divider",
		Short: "Add a separator record",
		Args:  cobra.NoArgs,
		RunE:  runToolsDivider,
	}
	cmd.Flags().Int("at", -1, "Insert position (default: append)")
	return cmd
}

func newToolsLabelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "label <text>",
		Short: "Add a non-clickable label record",
		Args:  cobra.ExactArgs(1),
		RunE:  runToolsLabel,
	}
	cmd.Flags().Int("at", -1, "Insert position (default: append)")
	cmd.Flags().String("submenu", "", "Submenu path, :: separated")
	return cmd
}

func runToolsList(cmd *cobra.Command, args []string) error {
	store, records, err := loadRecords(cmd)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tTYPE\tACTION\tSUBMENU\tENABLED")
	for i, rec := range records {
		typ := rec.Type
		if typ == "" {
			typ = "action"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%t\n",
			i, rec.Name, typ, rec.Ref(), rec.Submenu, rec.EnabledOrDefault())
	}
	if err := w.Flush(); err != nil {
		return exitError(exitRuntime, "writing listing: %v", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d records in %s\n", len(records), store.Path())
	return nil
}

func runToolsAdd(cmd *cobra.Command, args []string) error {
	module, _ := cmd.Flags().GetString("module")
	function, _ := cmd.Flags().GetString("function")
	if strings.TrimSpace(module) == "" || strings.TrimSpace(function) == "" {
		return exitError(exitValidation, "--module and --function are required")
	}

	submenu, _ := cmd.Flags().GetString("submenu")
	icon, _ := cmd.Flags().GetString("icon")
	disabled, _ := cmd.Flags().GetBool("disabled")

	rec := manifest.Record{
		Name:     args[0],
		Module:   module,
		Function: function,
		Submenu:  submenu,
		Icon:     icon,
	}
	if disabled {
		rec.Enabled = manifest.Bool(false)
	}
	if detail := rec.Validate(); detail != "" {
		return exitError(exitValidation, "invalid record: %s", detail)
	}

	return applyEdit(cmd, func(records []manifest.Record) ([]manifest.Record, string, error) {
		at, _ := cmd.Flags().GetInt("at")
		if at < 0 {
			return manifest.Append(records, rec), fmt.Sprintf("added %q (%s)", rec.Name, rec.Ref()), nil
		}
		return manifest.Insert(records, at, rec), fmt.Sprintf("added %q (%s) at %d", rec.Name, rec.Ref(), at), nil
	})
}

func runToolsRemove(cmd *cobra.Command, args []string) error {
	return applyEdit(cmd, func(records []manifest.Record) ([]manifest.Record, string, error) {
		index, err := recordIndex(records, args[0])
		if err != nil {
			return nil, "", err
		}
		name := records[index].Name
		return manifest.Remove(records, index), fmt.Sprintf("removed %q", name), nil
	})
}

func setToolEnabled(cmd *cobra.Command, target string, enabled bool) error {
	return applyEdit(cmd, func(records []manifest.Record) ([]manifest.Record, string, error) {
		index, err := recordIndex(records, target)
		if err != nil {
			return nil, "", err
		}
		verb := "disabled"
		if enabled {
			verb = "enabled"
		}
		return manifest.SetEnabled(records, index, enabled), fmt.Sprintf("%s %q", verb, records[index].Name), nil
	})
}

func runToolsMove(cmd *cobra.Command, args []string) error {
	return applyEdit(cmd, func(records []manifest.Record) ([]manifest.Record, string, error) {
		from, err := recordIndex(records, args[0])
		if err != nil {
			return nil, "", err
		}
		to, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, "", exitError(exitValidation, "invalid position %q", args[1])
		}
		return manifest.Move(records, from, to), fmt.Sprintf("moved %q to %d", records[from].Name, to), nil
	})
}

func runToolsDivider(cmd *cobra.Command, args []string) error {
	return applyEdit(cmd, func(records []manifest.Record) ([]manifest.Record, string, error) {
		at, _ := cmd.Flags().GetInt("at")
		if at < 0 {
			return manifest.Append(records, manifest.NewDivider()), "added divider", nil
		}
		return manifest.Insert(records, at, manifest.NewDivider()), fmt.Sprintf("added divider at %d", at), nil
	})
}

func runToolsLabel(cmd *cobra.Command, args []string) error {
	label := manifest.NewLabel(args[0])
	label.Submenu, _ = cmd.Flags().GetString("submenu")

	return applyEdit(cmd, func(records []manifest.Record) ([]manifest.Record, string, error) {
		at, _ := cmd.Flags().GetInt("at")
		if at < 0 {
			return manifest.Append(records, label), fmt.Sprintf("added label %q", args[0]), nil
		}
		return manifest.Insert(records, at, label), fmt.Sprintf("added label %q at %d", args[0], at), nil
	})
}

// loadRecords opens the resolved manifest store and loads its records.
func loadRecords(cmd *cobra.Command) (*manifest.FileStore, []manifest.Record, error) {
	sess, err := loadSession(cmd)
	if err != nil {
		return nil, nil, err
	}
	store, err := resolveStore(cmd, sess)
	if err != nil {
		return nil, nil, err
	}
	records, err := store.Load(cmd.Context())
	if err != nil {
		return nil, nil, exitError(exitInputParse, "loading manifest: %v", err)
	}
	return store, records, nil
}

// applyEdit loads the manifest, applies one mutation, and saves the
// result. The mutation returns the new records plus a confirmation line.
func applyEdit(cmd *cobra.Command, mutate func([]manifest.Record) ([]manifest.Record, string, error)) error {
	ctx := cmd.Context()

	sess, err := loadSession(cmd)
	if err != nil {
		return err
	}
	store, err := resolveStore(cmd, sess)
	if err != nil {
		return err
	}
	records, err := store.Load(ctx)
	if err != nil {
		return exitError(exitInputParse, "loading manifest: %v", err)
	}

	records, confirmation, err := mutate(records)
	if err != nil {
		return err
	}
	if err := store.Save(ctx, records); err != nil {
		return exitError(exitRuntime, "saving manifest: %v", err)
	}

	events, shutdown, err := setupTelemetry(ctx, sess)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(shutdown)
	if events != nil {
		events(tacklebox.NewEvent(tacklebox.EventManifestSaved, "").
			WithPath(store.Path()).
			WithPayload("records", len(records)))
	}

	fmt.Fprintln(cmd.OutOrStdout(), confirmation)
	return nil
}

// recordIndex resolves a positional argument that is either a numeric
// index or a record name.
func recordIndex(records []manifest.Record, target string) (int, error) {
	if index, err := strconv.Atoi(target); err == nil {
		if index < 0 || index >= len(records) {
			return 0, exitError(exitValidation, "index %d out of range (0-%d)", index, len(records)-1)
		}
		return index, nil
	}
	index := manifest.IndexByName(records, target)
	if index < 0 {
		return 0, exitError(exitValidation, "no record named %q", target)
	}
	return index, nil
}
