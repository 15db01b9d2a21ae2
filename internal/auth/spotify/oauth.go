// Package spotify holds the provider's OAuth endpoint configuration.
package spotify

import (
	"golang.org/x/oauth2"
)

// Provider endpoints.
const (
	AuthURL  = "https://accounts.spotify.com/authorize"
	TokenURL = "https://accounts.spotify.com/api/token"
)

// Scopes required for playback control and recommendations.
var Scopes = []string{
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
}

// OAuthConfig returns the oauth2 configuration used for token refresh.
// tokenURL overrides the provider endpoint when non-empty; tests point it
// at a local fake.
func OAuthConfig(clientID, clientSecret, tokenURL string) *oauth2.Config {
	if tokenURL == "" {
		tokenURL = TokenURL
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  AuthURL,
			TokenURL: tokenURL,
		},
	}
}
