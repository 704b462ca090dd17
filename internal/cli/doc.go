// Package cli implements the cephdash command-line interface.
//
// The root command carries the global flags (--config, --verbose,
// --no-color). Subcommands:
//
//	cephdash dash      - Run the interactive dashboard
//	cephdash init      - Create a .cephdash.yaml config
//	cephdash routes    - List dashboard routes and metric kinds
//	cephdash version   - Print version information
//
// Commands load config through the config package and report failures as
// structured errors from the errors package, which Execute prints with
// their suggestion.
package cli
