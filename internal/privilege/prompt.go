package privilege

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/conn-castle/apps/internal/messages"
)

// ErrCredentialDeclined means the user cancelled the password prompt or ran out of
// attempts. Callers abort without reporting an error to the user.
var ErrCredentialDeclined = errors.New("credential declined")

// DefaultAttempts matches sudo's own retry count.
const DefaultAttempts = 3

// SecretDialogs is the part of the UI the prompter needs.
type SecretDialogs interface {
	Secret(title string) (string, bool, error)
	Message(title string, body string) error
}

// Validator checks a candidate password.
type Validator interface {
	Validate(ctx context.Context, secret string) error
}

// Prompter asks for the sudo password until it validates.
type Prompter struct {
	Dialogs   SecretDialogs
	Validator Validator
	Attempts  int
}

// Acquire prompts with the given title and returns a validated password. It returns
// ErrCredentialDeclined when the user cancels, enters nothing, or exhausts the attempts.
// No prompt is shown when the process already runs as root.
func (p *Prompter) Acquire(ctx context.Context, prompt string) (string, error) {
	if IsRoot() {
		return "", nil
	}
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	for i := 1; i <= attempts; i++ {
		secret, ok, err := p.Dialogs.Secret(prompt)
		if err != nil {
			return "", err
		}
		if !ok || secret == "" {
			log.Debug("credential prompt cancelled")
			return "", ErrCredentialDeclined
		}
		err = p.Validator.Validate(ctx, secret)
		if err == nil {
			return secret, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.Infof("credential rejected (attempt %d of %d): %v", i, attempts, err)
		if left := attempts - i; left > 0 {
			if err := p.Dialogs.Message(messages.CredentialRetryTitle, fmt.Sprintf(messages.CredentialRetryBodyFmt, left)); err != nil {
				return "", err
			}
		}
	}
	return "", ErrCredentialDeclined
}
