package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/umputun/go-flags"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/careerhub/jobboard/app/notify"
	"github.com/careerhub/jobboard/app/polish"
	"github.com/careerhub/jobboard/app/store"
	"github.com/careerhub/jobboard/app/store/persistence"
	"github.com/careerhub/jobboard/app/web"
)

var opts struct {
	Web struct {
		Address string `long:"address" env:"ADDRESS" default:":8080" description:"web server listen address"`
	} `group:"web" namespace:"web" env-namespace:"JOBBOARD_WEB"`

	Store struct {
		Type string `long:"type" env:"TYPE" default:"file" choice:"file" choice:"sqlite" choice:"memory" description:"storage backend"`
		File string `long:"file" env:"FILE" default:"var/jobs.json" description:"file slot path"`
		DB   string `long:"db" env:"DB" default:"var/jobboard.db" description:"sqlite database path"`
		Slot string `long:"slot" env:"SLOT" default:"careerhub_internal_jobs" description:"slot name in the database"`
	} `group:"store" namespace:"store" env-namespace:"JOBBOARD_STORE"`

	Polish struct {
		APIKey      string        `long:"api-key" env:"API_KEY" description:"LLM API key, empty disables polishing"`
		BaseURL     string        `long:"base-url" env:"BASE_URL" default:"https://api.openai.com/v1" description:"OpenAI-compatible API base URL"`
		Model       string        `long:"model" env:"MODEL" default:"gpt-4o-mini" description:"model used for description polishing"`
		Timeout     time.Duration `long:"timeout" env:"TIMEOUT" default:"30s" description:"polish request timeout"`
		MaxTokens   int           `long:"max-tokens" env:"MAX_TOKENS" default:"1000" description:"max tokens per polish response"`
		Temperature float64       `long:"temperature" env:"TEMPERATURE" default:"0.7" description:"sampling temperature"`
	} `group:"polish" namespace:"polish" env-namespace:"JOBBOARD_POLISH"`

	Notify struct {
		Config string `long:"config" env:"CONFIG" description:"notification YAML config file"`
	} `group:"notify" namespace:"notify" env-namespace:"JOBBOARD_NOTIFY"`

	Backup struct {
		Schedule string `long:"schedule" env:"SCHEDULE" description:"cron spec for scheduled backups, empty disables"`
		Dir      string `long:"dir" env:"DIR" default:"var/backups" description:"directory for scheduled backups"`
	} `group:"backup" namespace:"backup" env-namespace:"JOBBOARD_BACKUP"`

	Auth struct {
		PasswdHash string `long:"passwd-hash" env:"PASSWD_HASH" description:"bcrypt password hash for basic auth, empty disables"`
	} `group:"auth" namespace:"auth" env-namespace:"JOBBOARD_AUTH"`

	Log struct {
		Enabled         bool   `long:"enabled" env:"ENABLED" description:"enable logging"`
		Filename        string `long:"file" env:"FILE" description:"log file, stdout if empty"`
		MaxSize         int    `long:"max-size" env:"MAX_SIZE" default:"100" description:"max log file size in megabytes"`
		MaxAge          int    `long:"max-age" env:"MAX_AGE" default:"0" description:"max age of log files in days"`
		MaxBackups      int    `long:"max-backups" env:"MAX_BACKUPS" default:"7" description:"max number of rotated log files"`
		EnabledCompress bool   `long:"enabled-compress" env:"ENABLED_COMPRESS" description:"compress rotated log files"`
	} `group:"log" namespace:"log" env-namespace:"JOBBOARD_LOG"`

	Dbg bool `long:"dbg" env:"DEBUG" description:"debug mode"`
}

var revision = "unknown"

func main() {
	fmt.Printf("jobboard %s\n", revision)

	// .env is optional, used mostly for the polish API key in dev
	if err := godotenv.Load(); err == nil {
		fmt.Println("loaded .env file")
	}

	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(2)
	}
	setupLogs()

	defer func() {
		if x := recover(); x != nil {
			log.Printf("[WARN] run time panic:\n%v", x)
			panic(x)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	signals(cancel) // handle SIGQUIT and SIGTERM

	if err := run(ctx); err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
}

func run(ctx context.Context) error {
	slot, closer, err := makeSlot()
	if err != nil {
		return fmt.Errorf("failed to make storage slot: %w", err)
	}
	if closer != nil {
		defer func() {
			if err := closer.Close(); err != nil {
				log.Printf("[WARN] failed to close storage: %v", err)
			}
		}()
	}

	st := store.New(slot)

	polisher := polish.New(polish.Params{
		APIKey:      opts.Polish.APIKey,
		BaseURL:     opts.Polish.BaseURL,
		Model:       opts.Polish.Model,
		Timeout:     opts.Polish.Timeout,
		MaxTokens:   opts.Polish.MaxTokens,
		Temperature: opts.Polish.Temperature,
	})
	if !polisher.Enabled() {
		log.Printf("[INFO] description polishing disabled, no API key")
	}

	srvCfg := web.Config{
		Store:        st,
		Polisher:     polisher,
		Version:      revision,
		PasswordHash: opts.Auth.PasswdHash,
	}
	if notifier := makeNotifier(); notifier != nil {
		log.Printf("[INFO] notifications enabled, %s", notifier)
		srvCfg.Notifier = notifier
	}

	srv, err := web.New(srvCfg)
	if err != nil {
		return fmt.Errorf("failed to make web server: %w", err)
	}

	if opts.Backup.Schedule != "" {
		scheduler, err := scheduleBackups(st)
		if err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	return srv.Run(ctx, opts.Web.Address)
}

// makeSlot builds the storage slot for the configured backend. The returned
// closer is non-nil for backends holding a connection.
func makeSlot() (slot store.Slot, closer io.Closer, err error) {
	switch opts.Store.Type {
	case "file":
		fileSlot, err := persistence.NewFile(opts.Store.File)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("[INFO] using %s", fileSlot)
		return fileSlot, nil, nil
	case "sqlite":
		dbSlot, err := persistence.NewSQLite(opts.Store.DB, opts.Store.Slot)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("[INFO] using %s in %s", dbSlot, opts.Store.DB)
		return dbSlot, dbSlot, nil
	case "memory":
		log.Printf("[INFO] using in-memory slot, data won't survive restarts")
		return persistence.NewMemory(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store type %q", opts.Store.Type)
	}
}

// makeNotifier builds the notification service from the YAML config file,
// nil when notifications are not configured
func makeNotifier() *notify.Service {
	if opts.Notify.Config == "" {
		return nil
	}
	cfg, err := notify.LoadConfig(opts.Notify.Config)
	if err != nil {
		log.Printf("[WARN] notifications disabled: %v", err)
		return nil
	}
	return notify.NewServiceFromConfig(cfg)
}

// scheduleBackups starts a cron writing dated export files to the backup dir
func scheduleBackups(st *store.Store) (*cron.Cron, error) {
	if err := os.MkdirAll(opts.Backup.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to make backup dir %s: %w", opts.Backup.Dir, err)
	}

	scheduler := cron.New()
	_, err := scheduler.AddFunc(opts.Backup.Schedule, func() {
		data, filename, err := st.Export()
		if err != nil {
			log.Printf("[WARN] scheduled backup failed: %v", err)
			return
		}
		dest := filepath.Join(opts.Backup.Dir, filename)
		if err := os.WriteFile(dest, data, 0o600); err != nil {
			log.Printf("[WARN] failed to write backup %s: %v", dest, err)
			return
		}
		log.Printf("[INFO] backup written to %s, %d bytes", dest, len(data))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid backup schedule %q: %w", opts.Backup.Schedule, err)
	}

	scheduler.Start()
	log.Printf("[INFO] scheduled backups with %q to %s", opts.Backup.Schedule, opts.Backup.Dir)
	return scheduler, nil
}

// setupLogs configures lgr, returns the log writer for tests
func setupLogs() io.Writer {
	if !opts.Log.Enabled {
		log.Setup(log.Out(io.Discard), log.Err(io.Discard))
		return os.Stdout
	}

	logOpts := []log.Option{log.Msec, log.LevelBraces}
	if opts.Dbg {
		logOpts = []log.Option{log.Debug, log.Msec, log.LevelBraces, log.CallerFunc, log.CallerPkg, log.CallerFile}
	}

	if opts.Log.Filename != "" {
		fileLogger := &lumberjack.Logger{
			Filename:   opts.Log.Filename,
			MaxSize:    opts.Log.MaxSize,
			MaxBackups: opts.Log.MaxBackups,
			MaxAge:     opts.Log.MaxAge,
			Compress:   opts.Log.EnabledCompress,
			LocalTime:  true,
		}
		logOpts = append(logOpts, log.Out(fileLogger), log.Err(fileLogger))
		log.Setup(logOpts...)
		return fileLogger
	}

	log.Setup(logOpts...)
	return os.Stdout
}

func signals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	go func() {
		stacktrace := make([]byte, 8192)
		for sig := range sigChan {
			if sig == syscall.SIGQUIT { // catch SIGQUIT and print stack traces
				length := runtime.Stack(stacktrace, true)
				fmt.Println(string(stacktrace[:length]))
				continue
			}
			cancel() // terminate on SIGTERM or SIGINT
		}
	}()
	signal.Notify(sigChan, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT)
}
