package session

import (
	"golang.org/x/oauth2"
)

// TokenSource adapts the session to the standard oauth2.TokenSource
// contract, so it can be handed to any library that authenticates with
// one. The source reflects the session live: after a refresh rotates the
// pair, the next Token call returns the new access token.
func (s *Session) TokenSource() oauth2.TokenSource {
	return &sessionTokenSource{session: s}
}

type sessionTokenSource struct {
	session *Session
}

var _ oauth2.TokenSource = (*sessionTokenSource)(nil)

func (ts *sessionTokenSource) Token() (*oauth2.Token, error) {
	access, refresh := ts.session.Read()
	return &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
	}, nil
}
