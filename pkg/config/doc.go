/*
Package config loads tokenalyzer settings from a file.

	            +-------------+
	            |   Config    |
	            |   Loader    |
	            +------+------+
	                   |
	   +---------+-----+-----+---------+
	   |         |           |         |
	+--+---+  +--+--+    +---+--+  +---+--+
	| YAML |  | HCL |    | JSON |  | TOML |
	+------+  +-----+    +------+  +------+

🎯 Purpose:
- Reads .tokenalyzer.yaml (or .yml, .hcl, .json, .toml)
- Rejects unknown keys in every format
- Fills in defaults and validates values
- Loads .env so tokens need not live in the config file

🔄 Flow:
1. Resolve picks the explicit path, a file found in the working directory, or defaults
2. GetParser chooses the parser by extension
3. Validate normalises format, workers, archive format and tokenizer settings

🤝 Interfaces:
- Parser: format-specific parsing, registered from init

🔍 Example:

	if err := config.LoadDotEnv(ctx, "."); err != nil {
		return err
	}
	cfg, err := config.Resolve(ctx, flagPath, ".")
	if err != nil {
		return err
	}
	scorers, err := score.DefaultSet(cfg.TokenizerOptions())

HCL files can read the environment:

	github {
	  token = env.GITHUB_TOKEN
	}
*/
package config
