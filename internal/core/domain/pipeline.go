package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// StyleOutputStyle selects how compiled CSS is formatted.
type StyleOutputStyle string

const (
	// StyleCompressed removes all insignificant whitespace.
	StyleCompressed StyleOutputStyle = "compressed"
	// StyleExpanded keeps one declaration per line.
	StyleExpanded StyleOutputStyle = "expanded"
)

// StyleOptions configures the stylesheet builder.
type StyleOptions struct {
	Root         string
	Glob         string
	Output       string
	OutputStyle  StyleOutputStyle
	IncludePaths []string
}

// ScriptOptions configures the script bundler.
type ScriptOptions struct {
	Root      string
	Entry     string
	Glob      string
	Output    string
	Target    string
	SourceMap bool
	Minify    bool
}

// ImageOptions configures the image optimizer.
type ImageOptions struct {
	Root        string
	Glob        string
	Output      string
	Progressive bool
	Interlaced  bool
	Quantize    bool
	JPEGQuality int

	// SVGPrecision limits significant digits in SVG numbers. The viewBox
	// attribute is always kept.
	SVGPrecision int
}

// WatchOptions configures the watch reactor.
type WatchOptions struct {
	Debounce time.Duration
}

// Pipeline is the resolved build definition of a project.
// Relative paths in the option structs are resolved against Root, except
// builder outputs, which are relative to Output.
type Pipeline struct {
	Root    string
	Output  string
	Styles  StyleOptions
	Scripts ScriptOptions
	Images  ImageOptions
	Watch   WatchOptions
}

// DefaultPipeline returns the pipeline used when no configuration file overrides it.
func DefaultPipeline(root string) *Pipeline {
	return &Pipeline{
		Root:   root,
		Output: DefaultOutputDir,
		Styles: StyleOptions{
			Root:        DefaultStyleRoot,
			Glob:        DefaultStyleGlob,
			Output:      DefaultStyleOutput,
			OutputStyle: StyleCompressed,
		},
		Scripts: ScriptOptions{
			Root:      DefaultScriptRoot,
			Entry:     DefaultScriptEntry,
			Glob:      DefaultScriptGlob,
			Output:    DefaultScriptOutput,
			Target:    DefaultScriptTarget,
			SourceMap: true,
			Minify:    true,
		},
		Images: ImageOptions{
			Root:         DefaultImageRoot,
			Glob:         DefaultImageGlob,
			Output:       DefaultImageOutput,
			Progressive:  true,
			Interlaced:   true,
			Quantize:     true,
			JPEGQuality:  DefaultJPEGQuality,
			SVGPrecision: DefaultSVGPrecision,
		},
		Watch: WatchOptions{
			Debounce: DefaultDebounceWindow,
		},
	}
}

// ResolvePath joins a project-relative path onto Root. Absolute paths are returned unchanged.
func (p *Pipeline) ResolvePath(rel string) string {
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(p.Root, rel)
}

// OutputDir returns the absolute output root.
func (p *Pipeline) OutputDir() string {
	return p.ResolvePath(p.Output)
}

// OutputPath joins an output-relative path onto the output root.
func (p *Pipeline) OutputPath(rel string) string {
	return filepath.Join(p.OutputDir(), rel)
}

// ValidateOutput checks that the output root lies strictly inside the project
// root, so Clean can never delete sources or anything outside the project.
func (p *Pipeline) ValidateOutput() error {
	rel, err := filepath.Rel(p.Root, p.OutputDir())
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return Annotate(ErrOutputPathOutsideRoot, "output", p.Output)
	}
	return nil
}

// Graph builds the task graph: clean, the three builders, their watch
// variants, and the default and watch aggregates.
func (p *Pipeline) Graph() (*Graph, error) {
	g := NewGraph()
	g.SetRoot(p.Root)

	clean := NewInternedString(TaskClean)
	styles := p.builderTask(TaskStyles, KindStyle, "Compile and compress all stylesheets",
		filepath.Join(p.Styles.Root, p.Styles.Glob), p.Styles.Output)
	scripts := p.builderTask(TaskScripts, KindScript, "Bundle, transpile and minify scripts",
		filepath.Join(p.Scripts.Root, p.Scripts.Glob), p.Scripts.Output)
	images := p.builderTask(TaskImages, KindImage, "Optimize all images",
		filepath.Join(p.Images.Root, p.Images.Glob), p.Images.Output)

	tasks := []*Task{
		{
			Name:        clean,
			Kind:        KindClean,
			Description: "Remove the " + p.Output + " directory",
			Outputs:     []InternedString{NewInternedString(p.Output)},
		},
	}
	for _, builder := range []*Task{styles, scripts, images} {
		watch := *builder
		watch.Name = NewInternedString(WatchName(builder.Name.String()))
		watch.Description = "Build, then rebuild " + builder.Name.String() + " when sources change"
		watch.Watch = true
		tasks = append(tasks, builder, &watch)
	}
	tasks = append(tasks,
		&Task{
			Name:        NewInternedString(TaskDefault),
			Kind:        KindAggregate,
			Description: "Clean and build everything",
			Dependencies: NewInternedStrings([]string{
				TaskClean, TaskStyles, TaskScripts, TaskImages,
			}),
		},
		&Task{
			Name:        NewInternedString(TaskWatch),
			Kind:        KindAggregate,
			Description: "Clean, build everything and watch for changes",
			Dependencies: NewInternedStrings([]string{
				TaskClean, WatchName(TaskStyles), WatchName(TaskScripts), WatchName(TaskImages),
			}),
		},
	)

	for _, t := range tasks {
		if err := g.AddTask(t); err != nil {
			return nil, err
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (p *Pipeline) builderTask(name string, kind TaskKind, desc, input, output string) *Task {
	return &Task{
		Name:         NewInternedString(name),
		Kind:         kind,
		Description:  desc,
		Inputs:       []InternedString{NewInternedString(input)},
		Outputs:      []InternedString{NewInternedString(filepath.Join(p.Output, output))},
		Dependencies: []InternedString{NewInternedString(TaskClean)},
	}
}
