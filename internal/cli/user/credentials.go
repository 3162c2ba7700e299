package user

// Credentials are the API credentials used to
// authenticate against the MongoDB Cloud Atlas API
type Credentials struct {
	PublicAPIKey  string
	PrivateAPIKey string
}
