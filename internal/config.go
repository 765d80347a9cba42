package internal

import "time"

type Config struct {
	Host     string `env:"HOST,required=true"`
	Port     int    `env:"PORT,required=true"`
	LogLevel string `env:"LOG_LEVEL,required=true"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`

	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,required=true"`

	// Broadcast plumbing.
	BufferSize           int           `env:"BUFFER_SIZE,required=true"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,required=true"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,required=true"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,required=true"`

	// Automation. HistoryWindowSize bounds the prompt context;
	// HistoryRetention is the larger persisted cap trimmed after every
	// automated append.
	HistoryWindowSize int           `env:"HISTORY_WINDOW_SIZE"`
	HistoryRetention  int           `env:"HISTORY_RETENTION,required=true"`
	PromptTemplate    string        `env:"PROMPT_TEMPLATE"`
	ContextSeparator  string        `env:"CONTEXT_SEPARATOR"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT,required=true"`

	// Mean delay between scheduled automated turns; the actual delay is
	// randomized around it.
	AutomationMeanInterval time.Duration `env:"AUTOMATION_MEAN_INTERVAL,required=true"`

	GeminiAPIKey string `env:"GEMINI_API_KEY,required=true"`
	GeminiURL    string `env:"GEMINI_URL"`

	// Comma-separated substrings marking a chat line as a UI action
	// notice (broadcast but never persisted).
	ActionPhrases []string `env:"ACTION_PHRASES"`

	CharReplacement string `env:"CHARACTER_REPLACEMENT,required=true"`
}
