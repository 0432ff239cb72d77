package domain

import "time"

// Task names. These are the command line contract.
const (
	TaskClean   = "clean"
	TaskStyles  = "scss"
	TaskScripts = "js"
	TaskImages  = "images"
	TaskDefault = "default"
	TaskWatch   = "watch"

	// WatchSuffix is appended to a builder's name to form its watch variant.
	WatchSuffix = ":watch"
)

// WatchName returns the name of the watch variant of a builder task.
func WatchName(task string) string {
	return task + WatchSuffix
}

const (
	// ConfigFileName is the name of the optional project configuration file.
	ConfigFileName = "kiln.yaml"

	// DefaultOutputDir is the output root, relative to the project root.
	DefaultOutputDir = "dist"

	// DefaultStyleRoot holds the stylesheet sources.
	DefaultStyleRoot = "src/scss"
	// DefaultStyleGlob selects stylesheets below DefaultStyleRoot.
	DefaultStyleGlob = "**/*.scss"
	// DefaultStyleOutput is the compiled stylesheet, relative to the output root.
	DefaultStyleOutput = "css/index.css"

	// DefaultScriptRoot holds the script sources.
	DefaultScriptRoot = "src/js"
	// DefaultScriptEntry is the bundle entry point, relative to DefaultScriptRoot.
	DefaultScriptEntry = "index.js"
	// DefaultScriptGlob selects the scripts whose changes trigger a rebuild.
	DefaultScriptGlob = "**/*.js"
	// DefaultScriptOutput is the bundle, relative to the output root.
	DefaultScriptOutput = "js/index.js"
	// DefaultScriptTarget is the language level the bundle is lowered to.
	DefaultScriptTarget = "es2015"

	// DefaultImageRoot holds the image sources.
	DefaultImageRoot = "src/images"
	// DefaultImageGlob selects every file below DefaultImageRoot.
	DefaultImageGlob = "**/*"
	// DefaultImageOutput mirrors the image tree, relative to the output root.
	DefaultImageOutput = "img"
	// DefaultJPEGQuality is used when re-encoding JPEG files.
	DefaultJPEGQuality = 85
	// DefaultSVGPrecision is the number of significant digits kept in SVG numbers (0 keeps all).
	DefaultSVGPrecision = 0

	// DefaultDebounceWindow coalesces bursts of file events into a single rebuild.
	DefaultDebounceWindow = 50 * time.Millisecond

	// DirPerm is the default permission for output directories (rwxr-xr-x).
	DirPerm = 0o755

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// ScriptTargets lists the language levels the bundler can lower scripts to.
var ScriptTargets = []string{
	"es5", "es2015", "es2016", "es2017", "es2018", "es2019",
	"es2020", "es2021", "es2022", "es2023", "es2024", "esnext",
}
