package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"OptionSentinel/internal/agent"
	"OptionSentinel/internal/bot"
	"OptionSentinel/internal/broker"
	"OptionSentinel/internal/config"
	"OptionSentinel/internal/knowledge"
	"OptionSentinel/internal/notifier"
	"OptionSentinel/internal/storage"
	"OptionSentinel/internal/tournament"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] OptionSentinel starting...")

	// Load config
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

	// Init storage
	var store storage.Store
	if cfg.Database.SQLitePath != "" {
		ss, err := storage.NewSQLiteStore(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite store failed, using noop: %v", err)
			store = storage.NewNoopStore()
		} else {
			store = ss
			defer ss.Close()
		}
	} else {
		store = storage.NewNoopStore()
	}

	// Init broker gateway
	var gw broker.Gateway
	if cfg.Broker.Mode == "real" {
		gw = broker.NewPocketGateway(cfg.Broker.URL, cfg.Broker.SSID)
		log.Println("[INFO] broker: live venue session")
	} else {
		gw = broker.NewSimGateway(true)
		log.Println("[INFO] broker: simulated market (demo)")
	}

	// Init agent
	ag := agent.New(store, cfg.Trading.BaseRiskPct)

	// Init knowledge learner
	learner := knowledge.NewLearner(store)

	// Init bot
	b := bot.New(gw, ag, store, bot.Options{
		Asset:         cfg.Trading.Asset,
		Timeframes:    cfg.Trading.Timeframes,
		MinConfidence: cfg.Trading.MinConfidence,
	})
	b.SetLearner(learner)

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	if tn.Enabled() {
		b.SetNotifier(tn)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init tournament scheduler
	tm := tournament.NewManager(gw)
	sched := tournament.NewScheduler(tm, b)
	if err := sched.Register(cfg.Schedule.TournamentCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tn.StartPolling(ctx, commandHandler(b, learner))
	if tn.Enabled() {
		log.Println("[INFO] Telegram polling started")
	}

	if cfg.Trading.AutoStart {
		if err := b.Start(ctx); err != nil {
			log.Fatalf("[FATAL] start bot: %v", err)
		}
		if cfg.Trading.Enabled {
			b.StartTrading()
		}
	}
	defer b.Stop()

	log.Println("[INFO] OptionSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] OptionSentinel stopped")
}

// commandHandler maps Telegram commands onto bot actions.
func commandHandler(b *bot.Bot, learner *knowledge.Learner) notifier.CommandHandler {
	return func(cmd, arg string) string {
		switch cmd {
		case "start":
			if err := b.Start(context.Background()); err != nil {
				return fmt.Sprintf("❌ start failed: %v", err)
			}
			return "▶️ bot started"
		case "stop":
			b.Stop()
			return "⏹ bot stopped"
		case "trade":
			switch arg {
			case "on":
				b.StartTrading()
				return "✅ trading enabled"
			case "off":
				b.StopTrading()
				return "🛑 trading disabled"
			default:
				return "usage: /trade on|off"
			}
		case "asset":
			if arg == "" {
				return "usage: /asset <symbol>"
			}
			if err := b.SetAsset(arg); err != nil {
				return fmt.Sprintf("❌ %v", err)
			}
			return fmt.Sprintf("asset set to %s", arg)
		case "timeframe":
			tf, err := strconv.Atoi(arg)
			if err != nil {
				return "usage: /timeframe <seconds>"
			}
			if err := b.SetTimeframe(tf); err != nil {
				return fmt.Sprintf("❌ %v", err)
			}
			return fmt.Sprintf("timeframe set to %ds", tf)
		case "confidence":
			c, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return "usage: /confidence <0.5-0.95>"
			}
			b.SetMinConfidence(c)
			return fmt.Sprintf("minimum confidence set to %.2f", c)
		case "learn":
			if arg == "" {
				return "usage: /learn <document path>"
			}
			n, err := learner.Learn(arg)
			if err != nil {
				return fmt.Sprintf("❌ %v", err)
			}
			return fmt.Sprintf("📚 learned %d concepts", n)
		case "status":
			return bot.FormatStatus(b.Status())
		case "stats":
			return bot.FormatStats(b.TradeStats())
		case "help":
			return "/start /stop /trade on|off /asset <sym> /timeframe <s> /confidence <c> /learn <path> /status /stats"
		default:
			return ""
		}
	}
}
