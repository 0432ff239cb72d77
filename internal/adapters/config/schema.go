package config

// Kilnfile represents the structure of the kiln.yaml configuration file.
// Every field is optional; unset fields keep their default value.
type Kilnfile struct {
	Version string     `yaml:"version"`
	Root    string     `yaml:"root"`
	Output  string     `yaml:"output"`
	Styles  *StylesDTO `yaml:"styles"`
	Scripts *ScriptDTO `yaml:"scripts"`
	Images  *ImagesDTO `yaml:"images"`
	Watch   *WatchDTO  `yaml:"watch"`
}

// StylesDTO configures the stylesheet builder.
type StylesDTO struct {
	Root         string   `yaml:"root"`
	Glob         string   `yaml:"glob"`
	Output       string   `yaml:"output"`
	OutputStyle  string   `yaml:"outputStyle"`
	IncludePaths []string `yaml:"includePaths"`
}

// ScriptDTO configures the script bundler.
type ScriptDTO struct {
	Root      string `yaml:"root"`
	Entry     string `yaml:"entry"`
	Glob      string `yaml:"glob"`
	Output    string `yaml:"output"`
	Target    string `yaml:"target"`
	SourceMap *bool  `yaml:"sourceMap"`
	Minify    *bool  `yaml:"minify"`
}

// ImagesDTO configures the image optimizer.
type ImagesDTO struct {
	Root         string `yaml:"root"`
	Glob         string `yaml:"glob"`
	Output       string `yaml:"output"`
	Progressive  *bool  `yaml:"progressive"`
	Interlaced   *bool  `yaml:"interlaced"`
	Quantize     *bool  `yaml:"quantize"`
	JPEGQuality  *int   `yaml:"jpegQuality"`
	SVGPrecision *int   `yaml:"svgPrecision"`
}

// WatchDTO configures the watch reactor.
type WatchDTO struct {
	Debounce string `yaml:"debounce"`
}
