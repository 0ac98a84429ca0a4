package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/thebooleanin/techstory-weaver/internal/theme"
	"github.com/thebooleanin/techstory-weaver/pkg/color"
)

const (
	tableOutputFormat = "table"
	jsonOutputFormat  = "json"
)

var flagPresetsFile string

func newThemeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Theme preset and color tools",
	}
	cmd.PersistentFlags().StringVar(&flagPresetsFile, "presets-file", "", "TOML file with extra presets")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "List theme presets with color swatches",
		Args:  cobra.NoArgs,
		RunE:  runThemePresets,
	}
	presetsCmd.Flags().StringP("output", "o", tableOutputFormat, "Output format: table or json")

	cssCmd := &cobra.Command{
		Use:   "css",
		Short: "Print the theme stylesheet for a preset",
		Args:  cobra.NoArgs,
		RunE:  runThemeCSS,
	}
	cssCmd.Flags().Int("preset", -1, "preset index (default theme when unset)")

	convertCmd := &cobra.Command{
		Use:   "convert <color>",
		Short: `Convert "#rrggbb" to HSL or "H S% L%" to hex`,
		Args:  cobra.ExactArgs(1),
		RunE:  runThemeConvert,
	}

	cmd.AddCommand(presetsCmd, cssCmd, convertCmd)
	return cmd
}

func loadCatalog() (*theme.Catalog, error) {
	if flagPresetsFile == "" {
		return theme.NewCatalog(), nil
	}
	extra, err := theme.LoadPresetsFile(flagPresetsFile)
	if err != nil {
		return nil, err
	}
	return theme.NewCatalog(extra...), nil
}

func runThemePresets(cmd *cobra.Command, _ []string) error {
	output, _ := cmd.Flags().GetString("output")
	if output != tableOutputFormat && output != jsonOutputFormat {
		return fmt.Errorf("invalid output format: %s (must be %s or %s)", output, tableOutputFormat, jsonOutputFormat)
	}

	catalog, err := loadCatalog()
	if err != nil {
		return err
	}

	if output == jsonOutputFormat {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(catalog.Presets())
	}
	return renderPresets(cmd.OutOrStdout(), catalog.Presets())
}

// renderPresets prints one row per preset with a colored block per role.
func renderPresets(w io.Writer, presets []theme.Preset) error {
	headers := []string{"#", "Name", "Mode"}
	for _, r := range theme.Roles {
		headers = append(headers, string(r))
	}
	t := createStyledTable(headers...)

	for i, p := range presets {
		mode := "light"
		if p.IsDark {
			mode = "dark"
		}
		row := []string{strconv.Itoa(i), p.Name, mode}
		hex := p.Swatches()
		for _, r := range theme.Roles {
			row = append(row, swatch(hex[r]))
		}
		t.Row(row...)
	}

	_, err := fmt.Fprintln(w, t)
	return err
}

// swatch renders hex as a colored block followed by its value.
func swatch(hex string) string {
	block := lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("   ")
	return block + " " + hex
}

func createStyledTable(headers ...string) *table.Table {
	var (
		purple    = lipgloss.Color(color.FallbackHex)
		gray      = lipgloss.Color("245")
		lightGray = lipgloss.Color("241")

		headerStyle  = lipgloss.NewStyle().Foreground(purple).Bold(true).Align(lipgloss.Center)
		cellStyle    = lipgloss.NewStyle().Padding(0, 1)
		oddRowStyle  = cellStyle.Foreground(gray)
		evenRowStyle = cellStyle.Foreground(lightGray)
	)

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(purple)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row%2 == 0:
				return evenRowStyle
			default:
				return oddRowStyle
			}
		}).
		Headers(headers...)
}

func runThemeCSS(cmd *cobra.Command, _ []string) error {
	index, _ := cmd.Flags().GetInt("preset")

	cfg := theme.Default()
	if index >= 0 {
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}
		p, err := catalog.Get(index)
		if err != nil {
			return err
		}
		cfg.Colors = p.Colors
		cfg.Name = p.Name
		cfg.DarkMode.Default = p.IsDark
	}

	_, err := io.WriteString(cmd.OutOrStdout(), theme.RenderCSS(cfg))
	return err
}

func runThemeConvert(cmd *cobra.Command, args []string) error {
	in := strings.TrimSpace(args[0])

	var conv color.Conversion
	if strings.HasPrefix(in, "#") {
		conv = color.ConvertHexToHSL(in)
	} else {
		conv = color.ConvertHSLToHex(in)
	}

	out := cmd.OutOrStdout()
	if !conv.Ok() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %q is malformed, using fallback\n", in)
	}
	_, err := fmt.Fprintln(out, conv.Value)
	return err
}
