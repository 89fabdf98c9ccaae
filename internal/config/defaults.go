package config

const (
	defaultDataDir               = "~/.local/share/simdb"
	defaultDBFileName            = "issue_db.sqlite"
	defaultCatalogBaseURL        = "https://api.fatcat.wiki/v0"
	defaultCatalogTimeoutSeconds = 30
	defaultSearchBaseURL         = "https://search.fatcat.wiki"
	defaultSearchIndex           = "fatcat_release"
	defaultSearchTimeoutSeconds  = 30
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Catalog: Catalog{
			BaseURL:        defaultCatalogBaseURL,
			TimeoutSeconds: defaultCatalogTimeoutSeconds,
		},
		Search: Search{
			BaseURL:        defaultSearchBaseURL,
			Index:          defaultSearchIndex,
			TimeoutSeconds: defaultSearchTimeoutSeconds,
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
	}
}
