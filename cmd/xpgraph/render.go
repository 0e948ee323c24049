package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/rewired-gh/xpgraph/internal/config"
	"github.com/rewired-gh/xpgraph/internal/logger"
	"github.com/rewired-gh/xpgraph/internal/profile"
	"github.com/rewired-gh/xpgraph/internal/render"
	"github.com/rewired-gh/xpgraph/internal/telegram"
)

const (
	timelineName = "xp-over-time"
	projectsName = "xp-per-project"
)

func runRender(ctx context.Context, ctrl *profile.Controller, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	outDir := fs.String("out", cfg.Chart.OutputDir, "Output directory")
	format := fs.String("format", cfg.Chart.Format, "Output format: svg or png")
	sendTelegram := fs.Bool("telegram", cfg.Telegram.Enabled, "Also send PNG charts to Telegram")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := render.New(*format, cfg.Chart.Canvas, render.DefaultStyle())
	if err != nil {
		return err
	}

	p, err := ctrl.Show(ctx)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, ch := range []struct {
		name string
		draw func(io.Writer) error
	}{
		{timelineName, func(w io.Writer) error { return r.RenderTimeSeries(w, p.Timeline) }},
		{projectsName, func(w io.Writer) error { return r.RenderBars(w, p.Projects) }},
	} {
		path := filepath.Join(*outDir, ch.name+"."+r.Extension())
		size, err := writeChart(path, ch.draw)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Printf("Wrote %s (%s)\n", path, humanize.Bytes(uint64(size)))
	}
	printSummary(p)

	if !*sendTelegram {
		return nil
	}
	return deliver(cfg, p)
}

// writeChart renders into a buffer first so a failed draw never leaves a
// truncated file behind.
func writeChart(path string, draw func(io.Writer) error) (int, error) {
	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return 0, err
	}
	return buf.Len(), nil
}

// deliver renders both charts as PNG and sends them to Telegram.
func deliver(cfg *config.Config, p *profile.Profile) error {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id are required to send charts")
	}

	r, err := render.New(render.FormatPNG, cfg.Chart.Canvas, render.DefaultStyle())
	if err != nil {
		return err
	}

	var timeline, projects bytes.Buffer
	if err := r.RenderTimeSeries(&timeline, p.Timeline); err != nil {
		return err
	}
	if err := r.RenderBars(&projects, p.Projects); err != nil {
		return err
	}

	tg, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
	if err != nil {
		return err
	}

	summary := telegram.Summary{
		Login:        p.User.Login,
		TotalXP:      p.TotalXP,
		Transactions: p.Count,
		Projects:     len(p.Totals),
		RenderedAt:   time.Now(),
	}
	charts := []telegram.Chart{
		{Name: timelineName + ".png", Title: "XP over time", PNG: timeline.Bytes()},
		{Name: projectsName + ".png", Title: "XP per project", PNG: projects.Bytes()},
	}
	if err := tg.SendCharts(summary, charts); err != nil {
		return err
	}

	logger.Info("Sent %d charts to Telegram", len(charts))
	return nil
}
