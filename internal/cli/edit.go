package cli

import (
	"fmt"
	"os"

	"github.com/morozRed/cortexact/internal/config"
	"github.com/morozRed/cortexact/internal/edit"
	"github.com/morozRed/cortexact/internal/errdefs"
	"github.com/morozRed/cortexact/internal/ignore"
	"github.com/morozRed/cortexact/internal/languages"
	"github.com/spf13/cobra"
)

func RunEdit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to read --json flag: %w", err)
	}
	target, err := OptionalStringFlag(cmd, "target")
	if err != nil {
		return err
	}
	rawAction, err := OptionalStringFlag(cmd, "action")
	if err != nil {
		return err
	}
	action, err := edit.ParseAction(rawAction)
	if err != nil {
		return err
	}
	code, err := ReadCodeFlags(cmd, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if action == edit.ActionReplace && code == "" {
		return fmt.Errorf("replace needs --code or --code-file (use --action delete to remove %s)", target)
	}

	logger, closeLog := config.SetupFileLogger(cfg.LogFile, cfg.LogLevel)
	defer closeLog()

	engine, err := newEngine(cmd, cfg, languages.NewDefaultRegistry(), logger)
	if err != nil {
		return err
	}
	result, err := engine.Apply(cmd.Context(), edit.Request{
		Path:  args[0],
		Edits: []edit.Edit{{Target: target, Action: action, Code: code}},
	})
	if err != nil {
		return withHint(err)
	}
	return PrintEditResult(cmd.OutOrStdout(), result, asJSON)
}

func RunSymbols(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to read --json flag: %w", err)
	}
	registry := languages.NewDefaultRegistry()

	if info, err := os.Stat(args[0]); err == nil && info.IsDir() {
		rules, err := ignore.Load(args[0])
		if err != nil {
			return err
		}
		limit, err := cmd.Flags().GetInt("max-files")
		if err != nil {
			return fmt.Errorf("failed to read --max-files flag: %w", err)
		}
		overview, err := registry.ScanDirectory(args[0], rules, limit)
		if err != nil {
			return withHint(err)
		}
		return PrintOverview(cmd.OutOrStdout(), overview, asJSON)
	}

	file, err := registry.ExtractFile(args[0])
	if err != nil {
		return withHint(err)
	}
	return PrintSymbols(cmd.OutOrStdout(), file, asJSON)
}

func RunValidate(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to read --json flag: %w", err)
	}
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w: %w", args[0], err, errdefs.ErrIO)
	}

	errs, checked := languages.NewDefaultRegistry().Validate(args[0], content)
	if err := PrintValidation(cmd.OutOrStdout(), args[0], errs, checked, asJSON); err != nil {
		return err
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s has %d syntax error(s): %w", args[0], len(errs), errdefs.ErrValidationFailed)
	}
	return nil
}

// withHint appends the recovery hint for err's class, if any.
func withHint(err error) error {
	if hint := errdefs.Hint(err); hint != "" {
		return fmt.Errorf("%w\nhint: %s", err, hint)
	}
	return err
}
