package ports

import "github.com/compass-app/gatekeeper/core"

// Tokenizer converts between session claim sets and signed credential strings.
type Tokenizer interface {
	SessionToToken(session *core.Session) (string, error)
	TokenToSession(token string) (*core.Session, error)
}
