package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Mattermost.PollIntervalSeconds == 0 {
		cfg.Mattermost.PollIntervalSeconds = 2
	}
	if cfg.Mattermost.ChannelRefreshSeconds == 0 {
		cfg.Mattermost.ChannelRefreshSeconds = 30
	}
	if cfg.Mattermost.TimeoutSeconds == 0 {
		cfg.Mattermost.TimeoutSeconds = 30
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "llama3.3:70b"
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 4096
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.1
	}
	if cfg.LLM.TimeoutSeconds == 0 {
		cfg.LLM.TimeoutSeconds = 120
	}
	if cfg.Confluence.MaxDepth == 0 {
		cfg.Confluence.MaxDepth = 5
	}
	if cfg.Confluence.TimeoutSeconds == 0 {
		cfg.Confluence.TimeoutSeconds = 30
	}
	if cfg.Analysis.MaxDocChars == 0 {
		cfg.Analysis.MaxDocChars = 8000
	}
	if cfg.Analysis.ChunkWords == 0 {
		cfg.Analysis.ChunkWords = 3000
	}
	if cfg.Analysis.ChunkOverlapWords == 0 {
		cfg.Analysis.ChunkOverlapWords = 150
	}
	if cfg.Analysis.MaxChunksPerArtifact == 0 {
		cfg.Analysis.MaxChunksPerArtifact = 4
	}
	if cfg.Analysis.Workers == 0 {
		cfg.Analysis.Workers = 4
	}
	if cfg.Analysis.MaxRetries == 0 {
		cfg.Analysis.MaxRetries = 3
	}
	if cfg.Analysis.MaxEvidence == 0 {
		cfg.Analysis.MaxEvidence = 3
	}
	if cfg.Session.ExpiryHours == 0 {
		cfg.Session.ExpiryHours = 24
	}
	if cfg.Session.DedupWindow == 0 {
		cfg.Session.DedupWindow = 1000
	}
	if cfg.Report.FontPath == "" {
		cfg.Report.FontPath = "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf"
	}
	if cfg.Report.BoldFontPath == "" {
		cfg.Report.BoldFontPath = "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
}
