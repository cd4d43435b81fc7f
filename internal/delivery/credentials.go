package delivery

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// EnvSender names the variable holding the sending mailbox.
	EnvSender = "EMAIL"
	// EnvPassword names the variable holding the mailbox password.
	EnvPassword = "EMAIL_PASSWORD"
)

// Credentials authenticate against the SMTP server.
type Credentials struct {
	Username string
	Password string
}

func (c Credentials) complete() bool {
	return strings.TrimSpace(c.Username) != "" && c.Password != ""
}

// CredentialProvider resolves credentials at send time so a rotated .env
// file is picked up without restarting the server.
type CredentialProvider interface {
	Credentials() (Credentials, error)
}

// StaticCredentials always returns the same pair.
type StaticCredentials Credentials

func (s StaticCredentials) Credentials() (Credentials, error) {
	return Credentials(s), nil
}

// EnvCredentials reads EMAIL and EMAIL_PASSWORD from the process
// environment. When File is set, values from that dotenv file take
// precedence over the environment.
type EnvCredentials struct {
	File   string
	Lookup func(string) (string, bool)
}

func (e EnvCredentials) Credentials() (Credentials, error) {
	lookup := e.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	values := map[string]string{}
	for _, key := range []string{EnvSender, EnvPassword} {
		if v, ok := lookup(key); ok {
			values[key] = v
		}
	}

	if file := strings.TrimSpace(e.File); file != "" {
		fromFile, err := godotenv.Read(file)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Credentials{}, fmt.Errorf("read %s: %w", file, err)
		}
		for key, v := range fromFile {
			if key == EnvSender || key == EnvPassword {
				values[key] = v
			}
		}
	}

	return Credentials{
		Username: strings.TrimSpace(values[EnvSender]),
		Password: values[EnvPassword],
	}, nil
}

// chain returns the first complete credential pair from providers.
type chain []CredentialProvider

func (c chain) Credentials() (Credentials, error) {
	var last Credentials
	for _, provider := range c {
		creds, err := provider.Credentials()
		if err != nil {
			return Credentials{}, err
		}
		if creds.complete() {
			return creds, nil
		}
		last = creds
	}
	return last, nil
}
