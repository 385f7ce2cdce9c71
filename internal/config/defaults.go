package config

const (
	defaultConfigPath    = "~/.config/connect2vid/config.toml"
	defaultWorkDir       = "."
	defaultStateDir      = "~/.local/share/connect2vid"
	defaultHostDomain    = "adobeconnect.com"
	defaultURLTemplate   = "https://my.adobeconnect.com/{id}/output/{id}.zip?download=zip"
	defaultWgetBinary    = "wget"
	defaultUnzipBinary   = "unzip"
	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"
	defaultVoicePattern  = "cameraVoip_*.flv"
	defaultScreenPattern = "screenshare_*.flv"
	defaultExtension     = ".flv"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// URLPlaceholder marks where the session identifier goes in connect.url_template.
const URLPlaceholder = "{id}"

// Failure policies accepted by pipeline.failure_policy.
const (
	FailurePolicyContinue = "continue"
	FailurePolicyAbort    = "abort"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:  defaultWorkDir,
			StateDir: defaultStateDir,
		},
		Connect: Connect{
			HostDomain:  defaultHostDomain,
			URLTemplate: defaultURLTemplate,
		},
		Tools: Tools{
			Wget:    defaultWgetBinary,
			Unzip:   defaultUnzipBinary,
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
		},
		Tracks: Tracks{
			VoicePattern:  defaultVoicePattern,
			ScreenPattern: defaultScreenPattern,
			Extension:     defaultExtension,
		},
		Pipeline: Pipeline{
			FailurePolicy: FailurePolicyContinue,
			RecordHistory: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
