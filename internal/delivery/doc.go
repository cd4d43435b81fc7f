// Package delivery emails a packaged mashup to its requester.
//
// Credentials come from a CredentialProvider rather than global state: the
// default chain prefers explicit configuration, then EMAIL and
// EMAIL_PASSWORD from a dotenv file, then the process environment. The
// SMTP transport is injectable so delivery can be tested without a server.
package delivery
