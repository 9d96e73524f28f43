package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"trendcloud/internal/domain/hashtag"
	"trendcloud/internal/service/wordcloud"
)

var (
	width    float64
	height   float64
	page     int
	pageSize int
)

var layoutCmd = &cobra.Command{
	Use:   "layout FILE...",
	Short: "Lay out one page of the word cloud",
	Long: `Aggregate the documents, filter and sort them, then place one page of
entries on the canvas. Pages are numbered from 1.

Examples:
  wordcloud layout data/*.json --width 1200 --height 800
  wordcloud layout data/*.json --sort views --page 2 --page-size 40`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, _, err := aggregateFiles(cmd.Context(), args)
		if err != nil {
			return err
		}

		q := currentQuery()
		entries = wordcloud.FilterAndSort(entries, q)

		layoutConfig := wordcloud.LayoutConfig{
			PageSize:         cfg.Layout.PageSize,
			MaxAttempts:      cfg.Layout.MaxAttempts,
			MinFont:          cfg.Layout.MinFont,
			MaxFont:          cfg.Layout.MaxFont,
			CharWidthFactor:  cfg.Layout.CharWidthFactor,
			LineHeightFactor: cfg.Layout.LineHeightFactor,
			Padding:          cfg.Layout.Padding,
			Margin:           cfg.Layout.Margin,
		}
		if pageSize > 0 {
			layoutConfig.PageSize = pageSize
		}
		engine := wordcloud.NewLayoutEngine(layoutConfig)

		canvas := hashtag.Canvas{Width: cfg.Layout.CanvasWidth, Height: cfg.Layout.CanvasHeight}
		if width != 0 {
			if !hashtag.ValidDimension(width) {
				return fmt.Errorf("--width must be a positive finite number, got %v", width)
			}
			canvas.Width = width
		}
		if height != 0 {
			if !hashtag.ValidDimension(height) {
				return fmt.Errorf("--height must be a positive finite number, got %v", height)
			}
			canvas.Height = height
		}

		total := engine.PageCount(len(entries))
		if page < 1 || (total > 0 && page > total) || (total == 0 && page > 1) {
			return fmt.Errorf("page %d out of range, %d page(s) available", page, total)
		}

		result := engine.LayoutPage(entries, canvas, q.SortBy, page-1)
		if result.Fallback > 0 {
			log.Info("Some entries used the grid fallback",
				zap.Int("fallback", result.Fallback),
				zap.Int("placed", result.Placed),
			)
		}

		return writeJSON(cmd.OutOrStdout(), result)
	},
}

func init() {
	addQueryFlags(layoutCmd)

	layoutCmd.Flags().Float64Var(&width, "width", 0, "Canvas width in pixels; 0 uses LAYOUT_CANVAS_WIDTH")
	layoutCmd.Flags().Float64Var(&height, "height", 0, "Canvas height in pixels; 0 uses LAYOUT_CANVAS_HEIGHT")
	layoutCmd.Flags().IntVarP(&page, "page", "p", 1, "Page number, starting at 1")
	layoutCmd.Flags().IntVar(&pageSize, "page-size", 0, "Entries per page (defaults to LAYOUT_PAGE_SIZE)")
}
