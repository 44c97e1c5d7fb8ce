package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/morozRed/cortexact/internal/config"
	"github.com/spf13/cobra"
)

func OptionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

func OptionalBoolFlag(cmd *cobra.Command, name string) (bool, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return false, nil
	}
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

// OptionalDurationFlag accepts bare seconds or Go duration syntax. Unset is zero.
func OptionalDurationFlag(cmd *cobra.Command, name string) (time.Duration, error) {
	raw, err := OptionalStringFlag(cmd, name)
	if err != nil || raw == "" {
		return 0, err
	}
	d, err := config.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return d, nil
}

// ReadCodeFlags returns the replacement source from --code or --code-file.
// The two are mutually exclusive.
func ReadCodeFlags(cmd *cobra.Command, stdin io.Reader) (string, error) {
	code, err := cmd.Flags().GetString("code")
	if err != nil {
		return "", fmt.Errorf("failed to read --code flag: %w", err)
	}
	codeFile, err := OptionalStringFlag(cmd, "code-file")
	if err != nil {
		return "", err
	}
	if codeFile == "" {
		return code, nil
	}
	if code != "" {
		return "", fmt.Errorf("--code and --code-file cannot be used together")
	}

	var data []byte
	if codeFile == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(codeFile)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read replacement source: %w", err)
	}
	return string(data), nil
}
