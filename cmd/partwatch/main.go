package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"PartWatch/internal/config"
	"PartWatch/internal/history"
	"PartWatch/internal/model"
	"PartWatch/internal/notifier"
	"PartWatch/internal/recorder"
	"PartWatch/internal/registry"
	"PartWatch/internal/report"
	"PartWatch/internal/scheduler"
	"PartWatch/internal/scraper"
	"PartWatch/internal/updater"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	switch os.Args[1] {
	case "update":
		runUpdate(cfg, os.Args[2:])
	case "report":
		runReport(cfg, os.Args[2:])
	case "add":
		runAdd(cfg, os.Args[2:])
	case "remove":
		runRemove(cfg, os.Args[2:])
	case "set-source":
		runSetSource(cfg, os.Args[2:])
	case "watch":
		runWatch(cfg, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: partwatch <command> [flags]

commands:
  update      refresh prices for all (or one) tracked products
  report      show percent change and price log for a product
  add         add a product to the registry
  remove      remove a product from the registry
  set-source  add or replace one retailer URL on a product
  watch       run recurring refreshes on a cron schedule`)
}

func scraperOptions(cfg *config.Config) scraper.Options {
	return scraper.Options{
		Timeout:   time.Duration(cfg.Scraper.TimeoutSeconds) * time.Second,
		UserAgent: cfg.Scraper.UserAgent,
		Proxy:     cfg.Proxy,
	}
}

func openRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	r, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return r
}

func loadRegistry(cfg *config.Config) *registry.Registry {
	reg, err := registry.Load(cfg.Files.Registry)
	if err != nil {
		log.Fatalf("[FATAL] load registry: %v", err)
	}
	return reg
}

func runUpdate(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	productID := fs.String("product", "", "refresh only this product id")
	fs.Parse(args)

	reg := loadRegistry(cfg)
	store := history.Load(cfg.Files.History)
	rec := openRecorder(cfg)
	defer rec.Close()

	upd := updater.New(reg, store, scraper.Registry(scraperOptions(cfg)), rec)

	var result *updater.Result
	var err error
	if *productID != "" {
		result, err = upd.Run(*productID)
	} else {
		result, err = upd.Run()
	}
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	log.Printf("[INFO] refresh done: %d products, %d fetched, %d failed (%.1fs)",
		result.Products, result.Fetched, result.Failed, result.Duration.Seconds())
}

func runReport(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	productID := fs.String("product", "", "product id (empty: summary of all products)")
	chartPath := fs.String("chart", "", "write a PNG price chart to this file")
	fs.Parse(args)

	reg := loadRegistry(cfg)
	store := history.Load(cfg.Files.History)

	if *productID == "" {
		for _, p := range reg.Products() {
			printSummaryLine(store, p)
		}
		return
	}

	p, ok := reg.Get(*productID)
	if !ok {
		log.Fatalf("[FATAL] unknown product id %q", *productID)
	}

	fmt.Printf("%s [%s]\n", p.Name, p.Category)
	for _, rec := range report.Log(store.All(), p.ID) {
		fmt.Printf("  %s  %-12s %10.2f %s  %s %s\n",
			rec.FetchedAt.Format("2006-01-02 15:04"), rec.Retailer,
			rec.Price, rec.Currency, rec.Brand, rec.Model)
	}
	printSummaryLine(store, p)

	if *chartPath != "" {
		f, err := os.Create(*chartPath)
		if err != nil {
			log.Fatalf("[FATAL] create chart file: %v", err)
		}
		defer f.Close()
		series := report.Series(store.All(), p.ID)
		if err := report.RenderChart(f, p.Name, series); err != nil {
			log.Fatalf("[FATAL] render chart: %v", err)
		}
		log.Printf("[INFO] chart written to %s", *chartPath)
	}
}

func printSummaryLine(store *history.Store, p model.Product) {
	rec, ok := store.MinLatest(p.ID)
	if !ok {
		fmt.Printf("%s: no price data yet\n", p.Name)
		return
	}
	line := fmt.Sprintf("%s: lowest %.2f %s (%s)", p.Name, rec.Price, rec.Currency, rec.Retailer)
	pct, err := report.PercentChange(store.All(), p.ID)
	switch {
	case err == nil:
		line += fmt.Sprintf(", %+.1f%% since last refresh", pct)
	case errors.Is(err, report.ErrInsufficientData):
		line += ", change n/a (needs two refreshes)"
	}
	fmt.Println(line)
}

// sourceFlags collects repeated -source retailer=URL flags.
type sourceFlags map[string]string

func (s sourceFlags) String() string {
	pairs := make([]string, 0, len(s))
	for k, v := range s {
		pairs = append(pairs, k+"="+v)
	}
	return strings.Join(pairs, ",")
}

func (s sourceFlags) Set(v string) error {
	parts := strings.SplitN(v, "=", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("want retailer=URL, got %q", v)
	}
	s[parts[0]] = parts[1]
	return nil
}

func runAdd(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	id := fs.String("id", "", "product id (generated when empty)")
	name := fs.String("name", "", "display name")
	category := fs.String("category", "", "one of: CPU, GPU, RAM, Motherboard, CPU Cooler, Case, PSU")
	sources := sourceFlags{}
	fs.Var(sources, "source", "retailer=URL (repeatable)")
	fs.Parse(args)

	cat, err := model.ParseCategory(*category)
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	reg := loadRegistry(cfg)
	p, err := reg.Add(model.Product{ID: *id, Category: cat, Name: *name, Sources: sources})
	if err != nil {
		log.Fatalf("[FATAL] add product: %v", err)
	}
	saveRegistry(cfg, reg)
	log.Printf("[INFO] added %q with id %s (%d sources)", p.Name, p.ID, len(p.Sources))
}

func runRemove(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	id := fs.String("id", "", "product id")
	fs.Parse(args)

	reg := loadRegistry(cfg)
	if err := reg.Remove(*id); err != nil {
		log.Fatalf("[FATAL] remove product: %v", err)
	}
	saveRegistry(cfg, reg)
	log.Printf("[INFO] removed product %s", *id)
}

func runSetSource(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("set-source", flag.ExitOnError)
	id := fs.String("id", "", "product id")
	retailer := fs.String("retailer", "", "retailer id")
	url := fs.String("url", "", "product page URL")
	fs.Parse(args)

	reg := loadRegistry(cfg)
	if err := reg.SetSource(*id, *retailer, *url); err != nil {
		log.Fatalf("[FATAL] set source: %v", err)
	}
	saveRegistry(cfg, reg)
	log.Printf("[INFO] set %s source on product %s", *retailer, *id)
}

func saveRegistry(cfg *config.Config, reg *registry.Registry) {
	if err := os.MkdirAll(filepath.Dir(cfg.Files.Registry), 0755); err != nil {
		log.Fatalf("[FATAL] create data dir: %v", err)
	}
	if err := reg.Save(); err != nil {
		log.Fatalf("[FATAL] save registry: %v", err)
	}
}

func runWatch(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	fs.Parse(args)

	log.Println("[INFO] PartWatch watch mode starting...")

	reg := loadRegistry(cfg)
	store := history.Load(cfg.Files.History)
	rec := openRecorder(cfg)
	defer rec.Close()

	upd := updater.New(reg, store, scraper.Registry(scraperOptions(cfg)), rec)
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, upd, reg, store, tn)
	if err := sched.Register(cfg.Schedule.RefreshCron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn.Enabled() {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, refreshing now")
		go sched.RunRefreshNow()
	}

	log.Println("[INFO] PartWatch is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
}
