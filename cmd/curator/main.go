package main

import (
	"bufio"
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/codebuildervaibhav/speech-corpus/internal/cleanup"
	"github.com/codebuildervaibhav/speech-corpus/internal/discovery"
	"github.com/codebuildervaibhav/speech-corpus/internal/download"
	"github.com/codebuildervaibhav/speech-corpus/internal/models"
	"github.com/codebuildervaibhav/speech-corpus/internal/pipeline"
	"github.com/codebuildervaibhav/speech-corpus/internal/segmenter"
	"github.com/codebuildervaibhav/speech-corpus/internal/server"
	"github.com/codebuildervaibhav/speech-corpus/internal/storage"
	"github.com/codebuildervaibhav/speech-corpus/internal/textproc"
	"github.com/codebuildervaibhav/speech-corpus/internal/validate"
)

// Config represents the application configuration
type Config struct {
	Search struct {
		Queries     []string `yaml:"queries"`
		QueriesFile string   `yaml:"queries_file"`
		ChannelIDs  []string `yaml:"channel_ids"`
		MaxPages    int      `yaml:"max_pages"`
	} `yaml:"search"`

	Target struct {
		Language        string  `yaml:"language"`
		PurityThreshold float64 `yaml:"purity_threshold"`
		MatchThreshold  float64 `yaml:"match_threshold"`
	} `yaml:"target"`

	Models struct {
		LanguageID  models.ModelConfig `yaml:"language_id"`
		Transcriber models.ModelConfig `yaml:"transcriber"`
	} `yaml:"models"`

	Workers struct {
		Count int `yaml:"count"`
	} `yaml:"workers"`

	Storage struct {
		DataDir     string `yaml:"data_dir"`
		Database    string `yaml:"database"`
		AudioFormat string `yaml:"audio_format"`
	} `yaml:"storage"`

	Cleanup struct {
		RemoveDownloads bool `yaml:"remove_downloads"`
		IntervalMinutes int  `yaml:"interval_minutes"`
		MaxAgeHours     int  `yaml:"max_age_hours"`
	} `yaml:"cleanup"`

	Server struct {
		Enabled bool   `yaml:"enabled"`
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
	} `yaml:"server"`

	GoogleDrive struct {
		CredentialsFile string `yaml:"credentials_file"`
		TokenFile       string `yaml:"token_file"`
		FolderName      string `yaml:"folder_name"`
	} `yaml:"google_drive"`
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	flag.Parse()

	config, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cleanup.EnsureDirExists(config.Storage.DataDir); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// Tee logs into memory for the status API
	logBuffer := server.NewLogBuffer()
	log.SetOutput(io.MultiWriter(os.Stdout, logBuffer))

	log.Println("Initializing components...")

	identifier, err := models.NewLanguageIdentifier(config.Models.LanguageID)
	if err != nil {
		log.Fatalf("Failed to initialize language identifier: %v", err)
	}
	transcriber, err := models.NewTranscriber(config.Models.Transcriber)
	if err != nil {
		log.Fatalf("Failed to initialize transcriber: %v", err)
	}

	db, err := storage.NewCorpusDB(config.Storage.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Google Drive archiver (optional - may fail if credentials not set up)
	var archiver pipeline.Archiver
	if config.GoogleDrive.CredentialsFile != "" {
		if _, err := os.Stat(config.GoogleDrive.CredentialsFile); err == nil {
			da, err := storage.NewDriveArchiver(
				config.GoogleDrive.CredentialsFile,
				config.GoogleDrive.TokenFile,
				config.GoogleDrive.FolderName,
				config.Target.Language,
			)
			if err != nil {
				log.Printf("WARNING: Google Drive not available: %v", err)
				log.Println("Reports will only be kept locally")
			} else {
				log.Println("Google Drive archiving enabled")
				archiver = da
			}
		} else {
			log.Println("Google Drive credentials not found - keeping reports locally only")
		}
	}

	queries, err := resolveQueries(config)
	if err != nil {
		log.Fatalf("Failed to resolve queries: %v", err)
	}
	if len(queries) == 0 && len(config.Search.ChannelIDs) == 0 {
		log.Fatal("No search queries or channel ids configured")
	}

	ledger, err := pipeline.LoadLedger(filepath.Join(config.Storage.DataDir, "processed_queries.txt"))
	if err != nil {
		log.Fatalf("Failed to load resume ledger: %v", err)
	}

	client := discovery.NewClient(config.Target.Language)
	validator := validate.New(identifier, transcriber, db, config.Target.Language, config.Target.MatchThreshold)

	orchestrator := pipeline.New(
		pipeline.Config{
			DataDir:         config.Storage.DataDir,
			MaxPages:        config.Search.MaxPages,
			Workers:         config.Workers.Count,
			RemoveDownloads: config.Cleanup.RemoveDownloads,
		},
		pipeline.Components{
			Discovery:   client,
			Transcripts: client,
			Downloader:  download.New(config.Storage.AudioFormat),
			Segmenter:   segmenter.New(config.Storage.AudioFormat),
			Purity:      textproc.NewPurityFilter(config.Target.PurityThreshold),
			Validator:   validator,
			URLs:        db,
			Archiver:    archiver,
		},
		ledger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint
		log.Println("Shutting down: finishing in-flight videos, not starting new ones...")
		cancel()
	}()

	var statusServer *server.Server
	if config.Server.Enabled {
		statusServer = server.New(db, logBuffer, config.Storage.DataDir)
		go func() {
			if err := statusServer.Listen(config.Server.Host, config.Server.Port); err != nil {
				log.Printf("Status server stopped: %v", err)
			}
		}()

		if config.Cleanup.IntervalMinutes > 0 {
			scheduler := cleanup.NewScheduler(
				filepath.Join(config.Storage.DataDir, "downloads"),
				config.Cleanup.IntervalMinutes,
				config.Cleanup.MaxAgeHours,
			)
			scheduler.Start()
			defer scheduler.Stop()
		}
	}

	log.Printf("Starting pipeline: %d queries, %d channels, language %s",
		len(queries), len(config.Search.ChannelIDs), config.Target.Language)

	if err := orchestrator.Run(ctx, queries, config.Search.ChannelIDs); err != nil {
		log.Printf("Pipeline stopped: %v", err)
	} else {
		log.Println("Pipeline finished")
	}

	if statusServer != nil {
		statusServer.Shutdown()
	}
}

// loadConfig loads configuration from YAML file
func loadConfig(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := &Config{}
	if err := yaml.Unmarshal(file, config); err != nil {
		return nil, err
	}

	// Defaults
	if config.Target.Language == "" {
		config.Target.Language = "hi"
	}
	if config.Target.PurityThreshold == 0 {
		config.Target.PurityThreshold = 20
	}
	if config.Target.MatchThreshold == 0 {
		config.Target.MatchThreshold = 20
	}
	if config.Storage.AudioFormat == "" {
		config.Storage.AudioFormat = "mp3"
	}
	if config.Storage.DataDir == "" {
		config.Storage.DataDir = "data"
	}
	if config.Storage.Database == "" {
		config.Storage.Database = filepath.Join(config.Storage.DataDir, "corpus.db")
	}
	return config, nil
}

// resolveQueries merges inline queries with an optional one-per-line file.
func resolveQueries(config *Config) ([]string, error) {
	queries := append([]string(nil), config.Search.Queries...)
	if config.Search.QueriesFile == "" {
		return queries, nil
	}

	f, err := os.Open(config.Search.QueriesFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			queries = append(queries, line)
		}
	}
	return queries, scanner.Err()
}
