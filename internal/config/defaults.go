package config

const (
	defaultDataDir              = "~/.local/share/reelgate"
	defaultLogDir               = "~/.local/share/reelgate/logs"
	defaultAPIBind              = "127.0.0.1:7917"
	defaultCatalogBaseURL       = "https://stashdb.org"
	defaultCatalogTimeout       = 30
	defaultMediaServerURL       = "http://127.0.0.1:9999"
	defaultSceneDelayMS         = 1000
	defaultNotifyRequestTimeout = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Catalog: Catalog{
			BaseURL:        defaultCatalogBaseURL,
			RequestTimeout: defaultCatalogTimeout,
		},
		MediaServer: MediaServer{
			URL:            defaultMediaServerURL,
			RequestTimeout: 0,
		},
		Workflow: Workflow{
			SceneDelayMS: defaultSceneDelayMS,
		},
		Notifications: Notifications{
			Enabled:        true,
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
