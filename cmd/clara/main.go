package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/infoservices/clara/internal/agentstate"
	"github.com/infoservices/clara/internal/api"
	"github.com/infoservices/clara/internal/blobstore"
	"github.com/infoservices/clara/internal/directory"
	"github.com/infoservices/clara/internal/facematch"
	"github.com/infoservices/clara/internal/flow"
	"github.com/infoservices/clara/internal/genai"
	"github.com/infoservices/clara/internal/lockfile"
	"github.com/infoservices/clara/internal/messaging"
	"github.com/infoservices/clara/internal/otp"
	"github.com/infoservices/clara/internal/scheduler"
	sig "github.com/infoservices/clara/internal/signal"
	"github.com/infoservices/clara/internal/store"
	"github.com/infoservices/clara/internal/twiliosms"
	"github.com/infoservices/clara/internal/util"
	"github.com/infoservices/clara/internal/whatsapp"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for Clara state data
	DefaultStateDir = "/var/lib/clara"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "clara.db"
	// DefaultGalleryFileName is the face gallery blob written under the state directory
	DefaultGalleryFileName = "face_gallery.json"
	// DefaultSignalFileName mirrors the pending front-end signal under the state directory
	DefaultSignalFileName = "signal.json"
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	lock, err := lockfile.AcquireLock(*flags.stateDir)
	if err != nil {
		slog.Error("Failed to acquire state directory lock", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := lock.Release(); err != nil {
			slog.Error("Failed to release state directory lock", "error", err)
		}
	}()

	slog.Info("Bootstrapping Clara with configured modules")
	if err := run(config, flags); err != nil {
		slog.Error("Clara failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("Clara exited successfully")
}

func run(config Config, flags Flags) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := buildStore(flags)
	if err != nil {
		return err
	}
	defer st.Close()

	dir := directory.NewService(st)
	if *flags.seedFile != "" {
		count, err := dir.LoadSeed(*flags.seedFile)
		if err != nil {
			slog.Error("Directory seed import failed", "error", err, "path", *flags.seedFile)
		} else {
			slog.Info("Directory seed imported", "employees", count, "path", *flags.seedFile)
		}
	}

	gallery, err := buildGalleryStore(ctx, config, flags)
	if err != nil {
		return err
	}
	engine := facematch.NewEngine(gallery,
		facematch.WithThreshold(config.FaceThreshold),
		facematch.WithAmbiguityMargin(config.FaceMargin),
		facematch.WithNameResolver(dir),
	)

	agent := agentstate.NewManager(st, agentstate.WithAutoSleepTimeout(config.AutoSleepTimeout))
	signals := sig.NewRegister(sig.WithFile(filepath.Join(*flags.stateDir, DefaultSignalFileName)))

	otpSvc, notifier := buildDelivery(config, flags, st, dir)

	flowMgr := flow.NewManager(st, agent, signals, dir, otpSvc,
		flow.WithHostNotifier(notifier),
		flow.WithFaceMatchEnabled(config.FaceEnabled),
		flow.WithSessionMaxAge(config.SessionMaxAge),
	)

	sched := scheduler.NewScheduler()
	defer sched.Stop()
	if err := sched.AddJob(config.CleanupSpec, func() {
		if removed := flowMgr.CleanupOldSessions(); removed > 0 {
			slog.Info("Session cleanup removed stale sessions", "removed", removed)
		}
	}); err != nil {
		slog.Error("Failed to schedule session cleanup", "error", err, "spec", config.CleanupSpec)
	}

	dialogue := buildDialogue(flags)

	server := api.NewServer(flowMgr, agent, signals, engine, dialogue, buildAPIOptions(flags)...)
	return server.Run(ctx)
}

// Config holds environment configuration
type Config struct {
	DatabaseURL      string
	StateDir         string
	OpenAIKey        string
	APIAddr          string
	SeedFile         string
	WhatsAppEnabled  bool
	WhatsAppDSN      string
	MailersendKey    string
	MailFromName     string
	MailFromEmail    string
	S3Bucket         string
	S3Key            string
	S3Region         string
	S3Endpoint       string
	OTPDevMode       bool
	FaceEnabled      bool
	FaceThreshold    float64
	FaceMargin       float64
	AutoSleepTimeout time.Duration
	SessionMaxAge    time.Duration
	CleanupSpec      string
}

// Flags holds command line flag values
type Flags struct {
	qrOutput  *string
	numeric   *bool
	stateDir  *string
	dbDSN     *string
	openaiKey *string
	apiAddr   *string
	seedFile  *string
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		StateDir:         os.Getenv("CLARA_STATE_DIR"),
		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		APIAddr:          os.Getenv("API_ADDR"),
		SeedFile:         os.Getenv("CLARA_DIRECTORY_SEED"),
		WhatsAppEnabled:  util.ParseBoolEnv("WHATSAPP_ENABLED", false),
		WhatsAppDSN:      os.Getenv("WHATSAPP_DB_DSN"),
		MailersendKey:    os.Getenv("MAILERSEND_API_KEY"),
		MailFromName:     os.Getenv("MAIL_FROM_NAME"),
		MailFromEmail:    os.Getenv("MAIL_FROM_EMAIL"),
		S3Bucket:         os.Getenv("CLARA_GALLERY_S3_BUCKET"),
		S3Key:            os.Getenv("CLARA_GALLERY_S3_KEY"),
		S3Region:         os.Getenv("AWS_REGION"),
		S3Endpoint:       os.Getenv("CLARA_S3_ENDPOINT"),
		OTPDevMode:       util.ParseBoolEnv("OTP_DEV_MODE", false),
		FaceEnabled:      util.ParseBoolEnv("FACE_MATCH_ENABLED", true),
		FaceThreshold:    util.ParseFloatEnv("FACE_MATCH_THRESHOLD", facematch.DefaultMatchThreshold),
		FaceMargin:       util.ParseFloatEnv("FACE_MATCH_MARGIN", facematch.DefaultAmbiguityMargin),
		AutoSleepTimeout: util.ParseDurationEnv("AUTO_SLEEP_TIMEOUT", agentstate.DefaultAutoSleepTimeout),
		SessionMaxAge:    util.ParseDurationEnv("SESSION_MAX_AGE", flow.DefaultSessionMaxAge),
		CleanupSpec:      os.Getenv("CLEANUP_SCHEDULE"),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No CLARA_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}
	if config.S3Key == "" {
		config.S3Key = DefaultGalleryFileName
	}
	if config.CleanupSpec == "" {
		config.CleanupSpec = scheduler.DefaultCleanupSpec
	}
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"CLARA_STATE_DIR", config.StateDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"API_ADDR", config.APIAddr,
		"WHATSAPP_ENABLED", config.WhatsAppEnabled,
		"MAILERSEND_API_KEY_SET", config.MailersendKey != "",
		"S3_GALLERY", config.S3Bucket != "",
		"FACE_MATCH_ENABLED", config.FaceEnabled)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		qrOutput:  flag.String("qr-output", "", "path to write the WhatsApp login QR code"),
		numeric:   flag.Bool("numeric-code", false, "use numeric WhatsApp login code instead of QR code"),
		stateDir:  flag.String("state-dir", config.StateDir, "state directory for Clara data (overrides $CLARA_STATE_DIR)"),
		dbDSN:     flag.String("db-dsn", config.DatabaseURL, "database DSN for the session store (overrides $DATABASE_URL)"),
		openaiKey: flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		apiAddr:   flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		seedFile:  flag.String("directory-seed", config.SeedFile, "JSON file of employees and manager visits to import (overrides $CLARA_DIRECTORY_SEED)"),
	}

	flag.Parse()

	// A custom state directory moves the default SQLite path along with it.
	if *flags.dbDSN == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "new_state_dir", *flags.stateDir)
	}

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"apiAddr", *flags.apiAddr,
		"seedFile", *flags.seedFile)

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if err := os.MkdirAll(*flags.stateDir, 0755); err != nil {
		return err
	}
	if store.DetectDSNType(*flags.dbDSN) == "sqlite" {
		dbDir := filepath.Dir(*flags.dbDSN)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// buildStore opens the session store for the configured DSN.
func buildStore(flags Flags) (store.Store, error) {
	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store")
		return store.NewPostgresStore(store.WithPostgresDSN(*flags.dbDSN))
	}
	slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", *flags.dbDSN)
	return store.NewSQLiteStore(store.WithSQLiteDSN(*flags.dbDSN))
}

// buildGalleryStore picks the face gallery backend: S3 when a bucket is
// configured, otherwise a file under the state directory.
func buildGalleryStore(ctx context.Context, config Config, flags Flags) (blobstore.Store, error) {
	if config.S3Bucket != "" {
		slog.Debug("Using S3 face gallery", "bucket", config.S3Bucket, "key", config.S3Key)
		return blobstore.NewS3Store(ctx, blobstore.S3Config{
			Bucket:      config.S3Bucket,
			Key:         config.S3Key,
			Region:      config.S3Region,
			AccessKeyID: os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretKey:   os.Getenv("AWS_SECRET_ACCESS_KEY"),
			Endpoint:    config.S3Endpoint,
		})
	}
	path := filepath.Join(*flags.stateDir, DefaultGalleryFileName)
	slog.Debug("Using file face gallery", "path", path)
	return blobstore.NewFileStore(path)
}

// buildDelivery wires the OTP service and the visitor host notifier over
// whichever channels have credentials configured.
func buildDelivery(config Config, flags Flags, st store.Store, dir *directory.Service) (*otp.Service, *messaging.HostNotifier) {
	var otpOpts []otp.Option
	var notifierOpts []messaging.NotifierOption

	if os.Getenv("TWILIO_ACCOUNT_SID") != "" {
		twilioClient, err := twiliosms.NewClient()
		if err != nil {
			slog.Error("Twilio SMS channel unavailable", "error", err)
		} else {
			smsService := messaging.NewSMSService(twilioClient)
			otpOpts = append(otpOpts, otp.WithSMS(smsService))
			notifierOpts = append(notifierOpts, messaging.WithNotifierSMS(smsService))
		}
	}

	if config.MailersendKey != "" {
		emailService, err := messaging.NewEmailService(
			messaging.WithAPIKey(config.MailersendKey),
			messaging.WithFrom(config.MailFromName, config.MailFromEmail),
		)
		if err != nil {
			slog.Error("Email channel unavailable", "error", err)
		} else {
			otpOpts = append(otpOpts, otp.WithEmail(emailService))
			notifierOpts = append(notifierOpts, messaging.WithNotifierEmail(emailService))
		}
	}

	if config.WhatsAppEnabled {
		waClient, err := whatsapp.NewClient(buildWhatsAppOptions(config, flags)...)
		if err != nil {
			slog.Error("WhatsApp chat channel unavailable", "error", err)
		} else {
			chatService := messaging.NewWhatsAppService(waClient)
			otpOpts = append(otpOpts, otp.WithChat(chatService))
			notifierOpts = append(notifierOpts, messaging.WithNotifierChat(chatService))
		}
	}

	if config.OTPDevMode {
		slog.Warn("OTP dev mode enabled, codes will not be dispatched")
		otpOpts = append(otpOpts, otp.WithDevMode(true))
	}

	return otp.NewService(st, dir, otpOpts...), messaging.NewHostNotifier(dir, notifierOpts...)
}

// buildWhatsAppOptions constructs WhatsApp configuration options
func buildWhatsAppOptions(config Config, flags Flags) []whatsapp.Option {
	var waOpts []whatsapp.Option
	if *flags.qrOutput != "" {
		waOpts = append(waOpts, whatsapp.WithQRCodeOutput(*flags.qrOutput))
	}
	if *flags.numeric {
		waOpts = append(waOpts, whatsapp.WithNumericCode())
	}
	if config.WhatsAppDSN != "" {
		waOpts = append(waOpts, whatsapp.WithDBDSN(config.WhatsAppDSN))
	}
	return waOpts
}

// buildDialogue constructs the optional LLM dialogue client.
func buildDialogue(flags Flags) api.DialogueClient {
	var genaiOpts []genai.Option
	if *flags.openaiKey != "" {
		genaiOpts = append(genaiOpts, genai.WithAPIKey(*flags.openaiKey))
	}
	client, err := genai.NewClient(genaiOpts...)
	if err != nil {
		slog.Warn("Dialogue client unavailable, pass-through utterances will not be answered", "error", err)
		return nil
	}
	return client
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	return apiOpts
}
