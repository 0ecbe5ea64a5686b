package config

import "time"

const appDirName = "ycoach"

// DefaultProgram is the curriculum used when PROGRAM is unset.
const DefaultProgram = "yoga_5min"

// Environment variable names.
const (
	EnvDatabasePath       = "DATABASE_PATH"
	EnvCatalogPath        = "CATALOG_PATH"
	EnvPromptDir          = "PROMPT_DIR"
	EnvLogPath            = "LOG_PATH"
	EnvLogLevel           = "LOG_LEVEL"
	EnvProgram            = "PROGRAM"
	EnvPersistThrottle    = "PERSIST_THROTTLE"
	EnvHistoryLimit       = "HISTORY_LIMIT"
	EnvCameraURL          = "CAMERA_URL"
	EnvSimilarityURL      = "SIMILARITY_URL"
	EnvSnapshotDir        = "SNAPSHOT_DIR"
	EnvHeartRateURL       = "HEART_RATE_URL"
	EnvLCDURL             = "LCD_URL"
	EnvCoachAPIURL        = "COACH_API_URL"
	EnvCoachAPIKey        = "COACH_API_KEY"
	EnvCoachModel         = "COACH_MODEL"
	EnvSimilarityInterval = "SIMILARITY_INTERVAL"
	EnvHeartRateInterval  = "HEART_RATE_INTERVAL"
	EnvYogaMET            = "YOGA_MET"
)

// Default values
const (
	defaultPersistThrottle    = 800 * time.Millisecond
	defaultHistoryLimit       = 10
	defaultSimilarityInterval = 3 * time.Second
	defaultHeartRateInterval  = time.Second

	// Hardware services run on the kiosk board itself.
	defaultCameraURL     = "http://127.0.0.1:5000"
	defaultSimilarityURL = "http://127.0.0.1:8000"
	defaultHeartRateURL  = "http://localhost:8000/api"
	defaultLCDURL        = "http://localhost:8002/lcd"

	defaultCoachAPIURL = "https://api.openai.com/v1"
	defaultCoachModel  = "gpt-5-mini"

	// Compendium value for hatha yoga.
	defaultYogaMET = 2.5
)
