package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"kestrel/internal/version"
)

type versionPayload struct {
	Tool      string `yaml:"tool"`
	Version   string `yaml:"version"`
	GitCommit string `yaml:"git_commit,omitempty"`
	BuildDate string `yaml:"build_date,omitempty"`
}

func newVersionCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show kestrel build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch strings.ToLower(format) {
			case "pretty":
				fmt.Fprintln(cmd.OutOrStdout(), version.String())
				return nil
			case "yaml":
				return renderVersionYAML(cmd.OutOrStdout())
			default:
				return fmt.Errorf("unsupported format %q (must be pretty or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "pretty", "output format (pretty|yaml)")
	return cmd
}

func renderVersionYAML(out io.Writer) error {
	payload := versionPayload{
		Tool:      "kestrel",
		Version:   strings.TrimSpace(version.Version),
		GitCommit: strings.TrimSpace(version.GitCommit),
		BuildDate: strings.TrimSpace(version.BuildDate),
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(payload); err != nil {
		return err
	}
	return enc.Close()
}
