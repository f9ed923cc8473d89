// Package secrets injects database and search-engine credentials from AWS
// Secrets Manager when SECRETS_MODE is "AWS".
//
// Injection is all-or-nothing and best effort: if the client cannot be built,
// a fetch fails, or a payload is malformed, the environment-derived
// credentials stay in effect and no error reaches the caller. Only missing
// secret identifiers are fatal.
package secrets
