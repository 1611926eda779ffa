package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"mt5-gateway/internal/config"
	"mt5-gateway/internal/logger"
	"mt5-gateway/internal/market"
	"mt5-gateway/internal/model"
	"mt5-gateway/internal/terminal"
	"mt5-gateway/internal/trade"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "range":
		cmdRange(os.Args[2:])
	case "size":
		cmdSize(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli range --config config.yaml --symbol EURUSD --start 03:00 --end 03:55")
	fmt.Println("  cli size --config config.yaml --symbol EURUSD --entry 1.0850 --stop 1.0820 --risk 100")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - range prints the defining range band as JSON; {0,0} means unavailable")
	fmt.Println("  - size prints the lot size for the given risk budget; 0 means do not trade")
}

func dial(cfg *config.Config, log *logger.Logger) *terminal.Bridge {
	term, err := terminal.Dial(terminal.BridgeOptions{
		URL:      cfg.Terminal.BridgeURL,
		Login:    cfg.Terminal.Login,
		Password: cfg.Terminal.Password,
		Server:   cfg.Terminal.Server,
		Timeout:  time.Duration(cfg.Terminal.DialTimeoutSeconds) * time.Second,
	}, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to terminal: %v\n", err)
		os.Exit(1)
	}

	return term
}

func cmdRange(args []string) {
	fs := flag.NewFlagSet("range", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "Path to YAML config")
	symbol := fs.String("symbol", "", "Symbol to compute the range for")
	start := fs.String("start", "03:00", "Window start (HH:MM)")
	end := fs.String("end", "03:55", "Window end (HH:MM)")
	_ = fs.Parse(args)

	if *symbol == "" {
		fmt.Println("--symbol is required")
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	startT, err := model.ParseTimeOfDay(*start)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	endT, err := model.ParseTimeOfDay(*end)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := logger.NewNop()
	term := dial(cfg, log)
	defer func() { _ = term.Close() }()

	extractor := market.NewExtractor(term, log, market.ExtractorConfig{
		TimeframeMinutes: cfg.Range.TimeframeMinutes,
		BarCount:         cfg.Range.Bars,
		Attempts:         cfg.Range.Attempts,
		Interval:         cfg.RangeBackoff(),
		Location:         cfg.ReferenceLocation(),
	})

	printJSON(extractor.Compute(*symbol, startT, endT))
}

func cmdSize(args []string) {
	fs := flag.NewFlagSet("size", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "Path to YAML config")
	symbol := fs.String("symbol", "", "Symbol to size for")
	entry := fs.Float64("entry", 0, "Entry price")
	stop := fs.Float64("stop", 0, "Stop price")
	risk := fs.Float64("risk", 0, "Risk budget in account currency")
	_ = fs.Parse(args)

	if *symbol == "" {
		fmt.Println("--symbol is required")
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewNop()
	term := dial(cfg, log)
	defer func() { _ = term.Close() }()

	sizer := trade.NewSizer(term, log)
	printJSON(map[string]float64{"volume": sizer.PositionSize(*symbol, *entry, *stop, *risk)})
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
