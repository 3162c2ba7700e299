// Package cli holds the profile configuration shared by the atlasman
// commands: Atlas API credentials, the platform database connection and
// logging preferences.
package cli

import (
	"fmt"

	"github.com/hackforge/atlasman/internal/cli/user"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	// DefaultProfile is the default profile name
	DefaultProfile = "default"

	envPrefix   = "atlasman"
	profileType = "yaml"
)

// Profile is the CLI profile
type Profile struct {
	Name string

	dir string
	fs  afero.Fs
}

// NewDefaultProfile creates a new default CLI profile
func NewDefaultProfile() (*Profile, error) {
	return NewProfile(DefaultProfile)
}

// NewProfile creates a new CLI profile
func NewProfile(name string) (*Profile, error) {
	dir, dirErr := homeDir()
	if dirErr != nil {
		return nil, fmt.Errorf("failed to create CLI profile: %s", dirErr)
	}

	return &Profile{
		Name: name,
		dir:  dir,
		fs:   afero.NewOsFs(),
	}, nil
}

// SetString sets the specified CLI profile property
func (p Profile) SetString(name, value string) {
	viper.Set(p.propertyKey(name), value)
}

// GetString gets the specified CLI profile property
func (p Profile) GetString(name string) string {
	return viper.GetString(p.propertyKey(name))
}

// GetBool gets the specified CLI profile property as a bool
func (p Profile) GetBool(name string) bool {
	return viper.GetBool(p.propertyKey(name))
}

func (p Profile) propertyKey(name string) string {
	return fmt.Sprintf("%s.%s", p.Name, name)
}

// Load loads the CLI profile
func (p Profile) Load() error {
	viper.SetConfigName(p.Name)
	viper.AddConfigPath(p.dir)
	viper.SetConfigPermissions(0600)
	viper.SetConfigType(profileType)

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil // proceed if profile doesn't exist
		}
		return fmt.Errorf("failed to load CLI profile: %s", err)
	}
	return nil
}

// Save saves the CLI profile
func (p *Profile) Save() error {
	exists, existsErr := afero.DirExists(p.fs, p.dir)
	if existsErr != nil {
		return fmt.Errorf("failed to save CLI profile: %s", existsErr)
	}

	if !exists {
		if err := p.fs.MkdirAll(p.dir, 0700); err != nil {
			return fmt.Errorf("failed to save CLI profile: %s", err)
		}
	}

	if err := viper.WriteConfigAs(p.path()); err != nil {
		return fmt.Errorf("failed to save CLI profile: %s", err)
	}
	return nil
}

func (p Profile) path() string {
	return fmt.Sprintf("%s/%s.%s", p.dir, p.Name, profileType)
}

// set of supported CLI profile keys
const (
	keyAtlasBaseURL  = "atlas_base_url"
	keyPublicAPIKey  = "public_api_key"
	keyPrivateAPIKey = "private_api_key"
	keyMongoURI      = "mongo_uri"
	keyMongoDatabase = "mongo_db"
	keyLogLevel      = "log_level"
	keyLogJSON       = "log_json"
)

// default profile values
const (
	DefaultAtlasBaseURL = "https://cloud.mongodb.com"
	defaultMongoURI     = "mongodb://localhost:27017"
	defaultMongoDB      = "hackforge"
)

// Credentials gets the profile's Atlas API credentials
func (p Profile) Credentials() user.Credentials {
	return user.Credentials{
		PublicAPIKey:  p.GetString(keyPublicAPIKey),
		PrivateAPIKey: p.GetString(keyPrivateAPIKey),
	}
}

// SetCredentials sets the profile's Atlas API credentials
func (p Profile) SetCredentials(creds user.Credentials) {
	p.SetString(keyPublicAPIKey, creds.PublicAPIKey)
	p.SetString(keyPrivateAPIKey, creds.PrivateAPIKey)
}

// AtlasBaseURL gets the Atlas control-plane base URL
func (p Profile) AtlasBaseURL() string {
	if url := p.GetString(keyAtlasBaseURL); url != "" {
		return url
	}
	return DefaultAtlasBaseURL
}

// MongoURI gets the platform database connection string
func (p Profile) MongoURI() string {
	if uri := p.GetString(keyMongoURI); uri != "" {
		return uri
	}
	return defaultMongoURI
}

// MongoDatabase gets the platform database name
func (p Profile) MongoDatabase() string {
	if db := p.GetString(keyMongoDatabase); db != "" {
		return db
	}
	return defaultMongoDB
}

// LogLevel gets the configured log level
func (p Profile) LogLevel() string {
	return p.GetString(keyLogLevel)
}

// LogJSON reports whether logs should be emitted as JSON
func (p Profile) LogJSON() bool {
	return p.GetBool(keyLogJSON)
}
