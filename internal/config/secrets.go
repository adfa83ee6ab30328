package config

import "os"

// Collaborator credentials stay out of the constant block so they never end up
// committed. Empty values disable the corresponding collaborator.
var (
	GoogleEmbeddingAPIKey = os.Getenv("GOOGLE_API_KEY")
	OpenAIAPIKey          = os.Getenv("OPENAI_API_KEY")
	WorkflowURL           = os.Getenv("WORKFLOW_URL")
	WorkflowAPIKey        = os.Getenv("WORKFLOW_API_KEY")
	RedisPassword         = os.Getenv("REDIS_PASSWORD")
	AuthToken             = os.Getenv("API_AUTH_TOKEN")
)

// NoAuthBypass skips bearer auth when no token is configured. Local dev only.
var NoAuthBypass = AuthToken == ""
