package constants

import "time"

// OracleProvider selects the text model backend used for classification.
type OracleProvider string

const (
	OracleOpenAI OracleProvider = "openai"
	OracleGemini OracleProvider = "gemini"
	OracleNone   OracleProvider = "none"

	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultGeminiModel   = "gemini-2.0-flash"
	DefaultOracleTimeout = 15 * time.Second

	// Keyring entries
	KeyringDatabaseURL        = "database-url"
	KeyringOpenAIKey          = "openai-api-key"
	KeyringGeminiKey          = "gemini-api-key"
	KeyringSessionSecret      = "session-secret"
	KeyringGoogleClientSecret = "google-client-secret"
)

// KeyringSecrets lists every secret name the keyring commands accept.
var KeyringSecrets = []string{
	KeyringDatabaseURL,
	KeyringOpenAIKey,
	KeyringGeminiKey,
	KeyringSessionSecret,
	KeyringGoogleClientSecret,
}
