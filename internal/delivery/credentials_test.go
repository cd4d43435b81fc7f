package delivery

import (
	"os"
	"path/filepath"
	"testing"
)

func lookupFrom(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestEnvCredentialsFromEnvironment(t *testing.T) {
	creds, err := EnvCredentials{Lookup: lookupFrom(map[string]string{
		"EMAIL":          " bot@example.com ",
		"EMAIL_PASSWORD": "pw",
	})}.Credentials()
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	if creds.Username != "bot@example.com" || creds.Password != "pw" {
		t.Fatalf("unexpected credentials %+v", creds)
	}
}

func TestEnvCredentialsFileOverridesEnvironment(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(file, []byte("EMAIL=file@example.com\nEMAIL_PASSWORD=\"from file\"\nOTHER=x\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	creds, err := EnvCredentials{File: file, Lookup: lookupFrom(map[string]string{
		"EMAIL":          "env@example.com",
		"EMAIL_PASSWORD": "env",
	})}.Credentials()
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	if creds.Username != "file@example.com" || creds.Password != "from file" {
		t.Fatalf("unexpected credentials %+v", creds)
	}
}

func TestEnvCredentialsMissingFileFallsBack(t *testing.T) {
	creds, err := EnvCredentials{
		File:   filepath.Join(t.TempDir(), "missing.env"),
		Lookup: lookupFrom(map[string]string{"EMAIL": "a@b.c", "EMAIL_PASSWORD": "p"}),
	}.Credentials()
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	if !creds.complete() {
		t.Fatalf("expected complete credentials, got %+v", creds)
	}
}

func TestChainPrefersFirstComplete(t *testing.T) {
	providers := chain{
		StaticCredentials{Username: "partial@example.com"},
		StaticCredentials{Username: "full@example.com", Password: "p"},
	}
	creds, err := providers.Credentials()
	if err != nil {
		t.Fatal(err)
	}
	if creds.Username != "full@example.com" {
		t.Fatalf("unexpected credentials %+v", creds)
	}
}
