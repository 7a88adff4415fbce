// Package secret provides a small, dependency-light secret resolution layer.
//
// It supports:
//   - Strict environment expansion (see ExpandEnvStrict)
//   - Pluggable secret providers (see Provider + Registry); env and
//     file providers are built in
//   - Resolving secret references in configuration values (see Resolver)
//
// References use the prefix "secretref:":
//   - Full value:  secretref:env:ANTHROPIC_API_KEY
//   - Key file:    secretref:file:/run/secrets/anthropic-api-key
//   - Inline use:  Bearer secretref:vault:prod/anthropic
//
// Provider credentials in configuration resolve through this layer, so
// API keys never need to appear in config files verbatim.
package secret
