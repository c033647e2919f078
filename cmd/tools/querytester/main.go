package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang/glog"
	"github.com/joho/godotenv"

	"github.com/apilens/apilens-ai/backend/internal/analysis/scenario"
	"github.com/apilens/apilens-ai/backend/internal/config"
	"github.com/apilens/apilens-ai/backend/internal/model/analytics"
	chartRender "github.com/apilens/apilens-ai/backend/internal/render/chart"
	"github.com/apilens/apilens-ai/backend/internal/service/ai"
	"github.com/apilens/apilens-ai/backend/internal/service/backend"
)

var (
	flagQuery   = flag.String("q", "", "question to classify and answer")
	flagSeed    = flag.Uint64("seed", 1, "scenario seed")
	flagOut     = flag.String("out", "", "directory for SVG charts, empty to skip")
	flagOffline = flag.Bool("offline", false, "answer without a usage snapshot")
	flagList    = flag.Bool("list", false, "list scenario keys and exit")
	flagTimeout = flag.Duration("timeout", 15*time.Second, "backend timeout")
)

func main() {
	flag.Set("logtostderr", "true")
	flag.Parse()
	defer glog.Flush()

	if *flagList {
		for _, key := range scenario.Keys() {
			fmt.Println(key)
		}
		return
	}
	if strings.TrimSpace(*flagQuery) == "" {
		flag.Usage()
		glog.Exit("a question is required, pass -q")
	}

	if err := godotenv.Load(); err != nil {
		glog.V(1).Infof("no .env loaded: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		glog.Exitf("failed to load configuration: %v", err)
	}

	var snap *analytics.Snapshot
	if !*flagOffline {
		ctx, cancel := context.WithTimeout(context.Background(), *flagTimeout)
		snap = loadSnapshot(ctx, cfg.Backend)
		cancel()
	}

	gen := scenario.NewGenerator(*flagSeed)
	res := gen.Resolve(*flagQuery, snap)
	glog.Infof("scenario=%s attach=%t snapshot=%t", res.Key, res.Attach, snap != nil)

	fmt.Printf("Scenario: %s\n\n%s\n", res.Key, res.Text)
	if res.Payload == nil {
		return
	}

	if len(res.Payload.Metrics) > 0 {
		fmt.Println("\nMetrics:")
		for _, m := range res.Payload.Metrics {
			fmt.Printf("  %-28s %-14s %s (%s)\n", m.Label, m.Value, m.Trend, m.Trending)
		}
	}

	fmt.Println("\nCharts:")
	for i, d := range res.Payload.Charts {
		summary, err := ai.Summarize(d)
		if err != nil {
			glog.Warningf("summarize %q: %v", d.Title, err)
		}
		fmt.Printf("  [%s] %s, %s rows\n      %s\n", d.Type, d.Title, humanize.Comma(int64(len(d.Rows))), summary)

		if *flagOut != "" {
			writeSVG(*flagOut, i, d, cfg.Chart)
		}
	}
}

func loadSnapshot(ctx context.Context, cfg config.BackendConfig) *analytics.Snapshot {
	var source backend.Source = backend.NewStatic()
	if !cfg.Demo() {
		source = backend.NewClient(cfg.BaseURL, cfg.Timeout)
	}

	snap, err := source.Snapshot(ctx, cfg.APIKey)
	if err != nil {
		glog.Warningf("continuing without usage data: %v", err)
		return nil
	}
	return snap
}

var unsafeName = regexp.MustCompile(`[^a-z0-9]+`)

func writeSVG(dir string, index int, d analytics.Descriptor, size config.ChartConfig) {
	var buf bytes.Buffer
	err := chartRender.WriteSVG(&buf, d, size.Width, size.Height)
	if errors.Is(err, chartRender.ErrNoVectorForm) || errors.Is(err, chartRender.ErrEmptyChart) {
		glog.Infof("skip %q: %v", d.Title, err)
		return
	}
	if err != nil {
		glog.Errorf("render %q: %v", d.Title, err)
		return
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		glog.Exitf("create %s: %v", dir, err)
	}
	name := fmt.Sprintf("%02d-%s.svg", index+1, strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(d.Title), "-"), "-"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		glog.Errorf("write %s: %v", path, err)
		return
	}
	glog.Infof("chart saved to %s (%s)", path, humanize.Bytes(uint64(buf.Len())))
}
