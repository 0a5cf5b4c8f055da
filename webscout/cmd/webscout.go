// Command-line interface entrypoint for the webscout acquisition engine
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"webscout/webscout/config"
	"webscout/webscout/services/extractor"
	"webscout/webscout/services/research"
	"webscout/webscout/services/search"
	"webscout/webscout/sources/cache"
	"webscout/webscout/utils/admission"
	"webscout/webscout/utils/logging"
	"webscout/webscout/utils/retry"
	"webscout/webscout/utils/types"
)

func main() {
	logging.InitLogger()
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.ErrorLogger.Error("config load error", zap.Error(err))
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gate := admission.NewGate(cfg.Permits)
	client := extractor.NewHTTPClient(cfg.HTTPTimeout)

	gateway := search.NewGateway(cfg.SearxURL, cfg.Engines, client,
		cache.New[[]types.SearchResult](cfg.SearchCacheSize, cfg.SearchCacheTTL),
		gate, retry.SearchPolicy(), logging.AppLogger)
	ex := extractor.NewExtractor(client,
		cache.New[types.Document](cfg.ScrapeCacheSize, cfg.ScrapeCacheTTL),
		gate, retry.ScrapePolicy(), logging.AppLogger)

	args := os.Args[1:]
	if len(args) < 2 {
		usage()
		os.Exit(1)
	}

	switch args[0] {
	case "search":
		stop := logging.LogDuration(ctx, "Search")
		results, err := gateway.Search(ctx, args[1], nil)
		stop()
		exitOn(err)
		printJSON(results)
	case "scrape":
		stop := logging.LogDuration(ctx, "Scrape")
		doc, err := ex.Scrape(ctx, args[1])
		stop()
		exitOn(err)
		printJSON(doc)
	case "research":
		topN := research.DefaultTopN
		if len(args) >= 3 {
			if n, err := strconv.Atoi(args[2]); err == nil {
				topN = n
			}
		}
		r := research.NewResearcher(gateway, ex, logging.AppLogger)
		stop := logging.LogDuration(ctx, "Research")
		report, err := r.Research(ctx, args[1], topN)
		stop()
		exitOn(err)
		printJSON(report)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("webscout usage:")
	fmt.Println("  webscout search <query>            # federated web search")
	fmt.Println("  webscout scrape <url>              # extract one page")
	fmt.Println("  webscout research <query> [topN]   # search then scrape top results")
}

func exitOn(err error) {
	if err != nil {
		logging.ErrorLogger.Error("command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, "encode:", err)
		os.Exit(1)
	}
}
