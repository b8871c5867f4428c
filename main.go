package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go-identity-verifier/facematch"
	"go-identity-verifier/logging"
	"go-identity-verifier/metrics"
	"go-identity-verifier/redis"
	"go-identity-verifier/verification"
)

type Config struct {
	ServerConfig ServerConfig `json:"server_config"`

	LogLevel  string `json:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty"`

	Tesseract TesseractConfig `json:"tesseract"`

	// FaceProvider selects the biometric backend: "local" runs detection
	// through the face detector service and scores descriptors in-process,
	// "remote" delegates the full comparison to the multi-model match API.
	FaceProvider    string   `json:"face_provider"`
	FaceDetectorUrl string   `json:"face_detector_url,omitempty"`
	RemoteMatchUrl  string   `json:"remote_match_url,omitempty"`
	RemoteModels    []string `json:"remote_models,omitempty"`

	DocumentStoreUrl  string `json:"document_store_url"`
	BackendUrl        string `json:"backend_url"`
	JwtPrivateKeyPath string `json:"jwt_private_key_path,omitempty"`
	IssuerId          string `json:"issuer_id,omitempty"`

	SessionTTLMinutes int `json:"session_ttl_minutes,omitempty"`

	StorageType         string                    `json:"storage_type"`
	RedisConfig         redis.RedisConfig         `json:"redis_config,omitempty"`
	RedisSentinelConfig redis.RedisSentinelConfig `json:"redis_sentinel_config,omitempty"`
}

func main() {
	configPath := flag.String("config", "", "Path for the config.json to use")
	flag.Parse()

	if *configPath == "" {
		slog.Error("please provide a config path using the --config flag")
		os.Exit(1)
	}

	config, err := readConfigFile(*configPath)
	if err != nil {
		slog.Error("failed to read config file", "path", *configPath, "error", err)
		os.Exit(1)
	}

	logging.InitLogger(config.LogLevel, config.LogFormat)
	slog.Info("using config", "path", *configPath)
	slog.Info("hosting on", "host", config.ServerConfig.Host, "port", config.ServerConfig.Port)

	tokenStorage, err := createTokenStorage(&config)
	if err != nil {
		slog.Error("failed to instantiate token storage", "error", err)
		os.Exit(1)
	}

	provider, err := createFaceMatchProvider(&config)
	if err != nil {
		slog.Error("failed to instantiate face match provider", "error", err)
		os.Exit(1)
	}

	var jwtCreator *VerdictJwtCreator
	if config.JwtPrivateKeyPath != "" {
		jwtCreator, err = NewVerdictJwtCreator(config.JwtPrivateKeyPath, config.IssuerId)
		if err != nil {
			slog.Error("failed to instantiate jwt creator", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Warn("no jwt private key configured, verdict handoff will be unsigned")
	}

	engineMetrics := metrics.New()

	sessionTTL := 30 * time.Minute
	if config.SessionTTLMinutes > 0 {
		sessionTTL = time.Duration(config.SessionTTLMinutes) * time.Minute
	}

	recognizer := NewTesseractRecognizer(config.Tesseract)

	serverState := ServerState{
		tokenStorage:    tokenStorage,
		sessions:        NewSessionRegistry(sessionTTL),
		orchestrator:    verification.NewOrchestrator(recognizer, provider, engineMetrics),
		documentStore:   NewHttpDocumentStore(config.DocumentStoreUrl),
		verdictReporter: NewHttpVerdictReporter(config.BackendUrl, jwtCreator),
		metrics:         engineMetrics,
	}

	server, err := NewServer(&serverState, config.ServerConfig)
	if err != nil {
		slog.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	err = server.ListenAndServe()
	if err != nil {
		slog.Error("failed to listen and serve", "error", err)
		os.Exit(1)
	}
}

func readConfigFile(path string) (Config, error) {
	configBytes, err := os.ReadFile(path)

	if err != nil {
		return Config{}, err
	}

	var config Config
	err = json.Unmarshal(configBytes, &config)

	if err != nil {
		return Config{}, err
	}

	return config, nil
}

func createTokenStorage(config *Config) (TokenStorage, error) {
	if config.StorageType == "redis" {
		slog.Info("Using redis token storage")
		client, err := redis.NewRedisClient(&config.RedisConfig)
		if err != nil {
			return nil, err
		}
		return NewRedisTokenStorage(client, config.RedisConfig.Namespace), nil
	}
	if config.StorageType == "redis_sentinel" {
		slog.Info("Using redis sentinel storage")
		client, err := redis.NewRedisSentinelClient(&config.RedisSentinelConfig)
		if err != nil {
			return nil, err
		}
		return NewRedisTokenStorage(client, config.RedisSentinelConfig.Namespace), nil
	}
	if config.StorageType == "memory" {
		slog.Info("Using in memory storage")
		return NewInMemoryTokenStorage(), nil
	}
	return nil, fmt.Errorf("%v is not a valid storage type", config.StorageType)
}

func createFaceMatchProvider(config *Config) (verification.FaceMatchProvider, error) {
	if config.FaceProvider == "local" {
		if config.FaceDetectorUrl == "" {
			return nil, fmt.Errorf("face_detector_url is required for the local face provider")
		}
		slog.Info("Using local face match provider", "detector_url", config.FaceDetectorUrl)
		detector := NewFaceDetectionClient(config.FaceDetectorUrl)
		return facematch.NewLocalProvider(detector), nil
	}
	if config.FaceProvider == "remote" {
		if config.RemoteMatchUrl == "" {
			return nil, fmt.Errorf("remote_match_url is required for the remote face provider")
		}
		slog.Info("Using remote face match provider", "match_url", config.RemoteMatchUrl, "models", config.RemoteModels)
		return NewRemoteFaceProvider(config.RemoteMatchUrl, config.RemoteModels), nil
	}
	return nil, fmt.Errorf("%v is not a valid face provider", config.FaceProvider)
}
