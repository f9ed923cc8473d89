// Package config resolves the settings namespace of the deployment in one
// pass. Layers apply in order, each replacing colliding top-level keys:
// framework defaults, project values computed from the environment, secret
// store and storage selector, then the optional package_settings.yaml and
// settings_local.yaml override files. Missing override files are normal.
//
// The Namespace is the authoritative output. Settings is its typed view; an
// override that does not fit a typed field stays in the Namespace as written
// and is reported in Result.Untyped.
package config
