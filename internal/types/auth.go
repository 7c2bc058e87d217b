package types

// AuthProvider identifies which identity backend validates sessions.
type AuthProvider string

const (
	AuthProviderSupabase AuthProvider = "supabase"
	AuthProviderLocal    AuthProvider = "local"
)
