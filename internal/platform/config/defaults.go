package config

import "time"

// DefaultConfig returns the built-in configuration. The candidate list
// mirrors the hosts a development build typically has to guess between;
// deployments override it via config file or environment.
func DefaultConfig() *Config {
	return &Config{
		Platform: "any",
		Log: LogConfig{
			Level: "info",
		},
		Endpoint: EndpointConfig{
			Candidates: []HostCandidate{
				{URL: "http://10.0.2.2:8000", Affinity: "android"},
				{URL: "http://127.0.0.1:8000", Affinity: "ios"},
				{URL: "http://localhost:8000", Affinity: "web"},
				{URL: "http://192.168.1.10:8000", Affinity: "any"},
			},
			ProbePath:    "/health",
			ProbeTimeout: 2 * time.Second,
		},
		Request: RequestConfig{
			ReadTimeout:     10 * time.Second,
			MutationTimeout: 5 * time.Second,
			RetryBackoff:    400 * time.Millisecond,
		},
		Session: SessionConfig{
			Store: StoreConfig{
				Driver: "file",
			},
		},
		Profile: ProfileConfig{
			MaxAge: 5 * time.Minute,
		},
		DevServer: DevServerConfig{
			Addr:          "0.0.0.0:8000",
			JWTSecret:     "campuslink_dev_secret",
			EmbeddedRedis: true,
			ReportLimit:   3,
		},
	}
}
