package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jonathan/profile-architect/internal/logging"
	"github.com/jonathan/profile-architect/internal/rendering"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a generated profile as Word, PDF, JPEG, HTML or ATS text",
	Long: `Renders the profile and writes it to --out-dir as <Full_Name>_Profile.<ext>.

Formats:
  doc   Word-compatible HTML document
  pdf   A4 PDF via headless Chrome
  jpg   A4 JPEG snapshot via headless Chrome
  html  the print layout PDF and JPEG are captured from
  txt   plain ATS text`,
	RunE: runExport,
}

var (
	exportIn      string
	exportFormats []string
	exportMargin  float64
	exportQuality float64
	exportScale   float64
)

func init() {
	addInputFlags(exportCmd, "personal", "portrait", "out-dir", "chrome-path")
	exportCmd.Flags().StringVarP(&exportIn, "in", "i", "", "Path to the profile JSON (required)")
	exportCmd.Flags().StringSliceVarP(&exportFormats, "format", "f", []string{rendering.ExtPDF}, "Export formats: doc, pdf, jpg, html, txt (comma separated or repeated)")
	exportCmd.Flags().Float64Var(&exportMargin, "margin", 0, "Page margin in mm on all sides (default 10)")
	exportCmd.Flags().Float64Var(&exportQuality, "quality", 0, "JPEG quality between 0 and 1 (default 0.98)")
	exportCmd.Flags().Float64Var(&exportScale, "scale", 0, "Raster scale for JPEG export (default 3)")

	if err := exportCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(exportCmd)
}

// pageSettingsFromFlags applies explicitly set layout flags over the defaults.
func pageSettingsFromFlags(cmd *cobra.Command) rendering.PageSettings {
	page := rendering.DefaultPageSettings()
	flags := cmd.Flags()
	if flags.Changed("margin") {
		page.MarginTopMM = exportMargin
		page.MarginRightMM = exportMargin
		page.MarginBottomMM = exportMargin
		page.MarginLeftMM = exportMargin
	}
	if flags.Changed("quality") {
		page.ImageQuality = exportQuality
	}
	if flags.Changed("scale") {
		page.RasterScale = exportScale
	}
	return page
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	doc, err := readDocument(exportIn)
	if err != nil {
		return err
	}
	personal, err := loadPersonal(settings.Personal)
	if err != nil {
		return err
	}
	portrait, err := loadPortrait(settings.Portrait)
	if err != nil {
		return err
	}

	page := pageSettingsFromFlags(cmd)
	if err := page.Validate(); err != nil {
		return err
	}

	var capturer *rendering.PDFRenderer
	for _, raw := range exportFormats {
		format := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), "."))

		var data []byte
		switch format {
		case rendering.ExtWord:
			data, err = rendering.RenderWordDocument(doc, personal)
		case rendering.ExtText:
			var text string
			text, err = rendering.RenderATSText(doc, personal)
			data = []byte(text)
		case rendering.ExtHTML, rendering.ExtPDF, rendering.ExtJPEG:
			var html string
			html, err = rendering.RenderPrintHTML(doc, personal, portrait, page)
			if err != nil {
				break
			}
			if format == rendering.ExtHTML {
				data = []byte(html)
				break
			}
			if capturer == nil {
				capturer = rendering.NewPDFRenderer(settings.ChromePath)
			}
			if format == rendering.ExtPDF {
				data, err = capturer.Render(ctx, html, page)
			} else {
				data, err = capturer.Snapshot(ctx, html, page)
			}
		default:
			return fmt.Errorf("unsupported export format %q (use doc, pdf, jpg, html or txt)", raw)
		}
		if err != nil {
			return err
		}

		path := filepath.Join(settings.OutputDir, rendering.Filename(personal.FullName, format))
		if err := writeOutput(path, data); err != nil {
			return err
		}
		logging.Debug().Str("format", format).Int("bytes", len(data)).Str("path", path).Msg("exported profile")
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", path)
	}
	return nil
}
