package secrets

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/archesproject/arches-rdm-example-project/internal/env"
)

// Resolver overrides environment-derived credentials with values from a
// remote secret store when the secrets mode asks for it.
type Resolver struct {
	reader    *env.Reader
	newClient ClientFactory
	logger    *zap.Logger
}

// NewResolver wires a Resolver. A nil factory uses NewAWSClient and a nil
// logger discards output.
func NewResolver(reader *env.Reader, factory ClientFactory, logger *zap.Logger) *Resolver {
	if factory == nil {
		factory = NewAWSClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{reader: reader, newClient: factory, logger: logger}
}

// Resolve returns current unchanged unless mode is ModeAWS. In AWS mode the
// region is recorded and the secret identifiers are required; their absence
// is returned as an error. Any later failure is not an error: the environment
// bundles are kept and both fetched bundles are dropped.
//
// Injected values are traced under the environment variable they replace.
func (r *Resolver) Resolve(ctx context.Context, mode string, current Credentials) (Credentials, error) {
	if mode != ModeAWS {
		return current, nil
	}

	region := r.reader.Optional("AWS_REGION", defaultRegion)
	current.Region = region
	esSecretID, err := r.reader.Require("ES_SECRET_ID")
	if err != nil {
		return current, err
	}
	dbSecretID, err := r.reader.Require("DB_SECRET_ID")
	if err != nil {
		return current, err
	}

	fetched, err := r.fetch(ctx, region, esSecretID, dbSecretID)
	if err != nil {
		r.logger.Debug("secret injection skipped, keeping environment credentials",
			zap.String("region", region),
			zap.Error(err),
		)
		return current, nil
	}

	out := current
	out.Database = fetched.Database
	out.Search.User = fetched.Search.User
	out.Search.Password = fetched.Search.Password
	out.Search.Host = fetched.Search.Host

	for _, v := range []struct{ name, value string }{
		{"PGUSERNAME", out.Database.User},
		{"PGPASSWORD", out.Database.Password},
		{"PGHOST", out.Database.Host},
		{"PGPORT", out.Database.Port},
		{"ESUSER", out.Search.User},
		{"ESPASSWORD", out.Search.Password},
		{"ESHOST", out.Search.Host},
	} {
		r.reader.Record(v.name, env.SourceSecretStore, v.value)
	}

	return out, nil
}

func (r *Resolver) fetch(ctx context.Context, region, esSecretID, dbSecretID string) (Credentials, error) {
	client, err := r.newClient(ctx, region)
	if err != nil {
		return Credentials{}, fmt.Errorf("create secrets client: %w", err)
	}

	rawES, err := client.SecretString(ctx, esSecretID)
	if err != nil {
		return Credentials{}, fmt.Errorf("get secret %s: %w", esSecretID, err)
	}
	rawDB, err := client.SecretString(ctx, dbSecretID)
	if err != nil {
		return Credentials{}, fmt.Errorf("get secret %s: %w", dbSecretID, err)
	}

	search, err := decodeBundle(rawES, false)
	if err != nil {
		return Credentials{}, fmt.Errorf("secret %s: %w", esSecretID, err)
	}
	database, err := decodeBundle(rawDB, true)
	if err != nil {
		return Credentials{}, fmt.Errorf("secret %s: %w", dbSecretID, err)
	}

	return Credentials{Database: database, Search: search}, nil
}
