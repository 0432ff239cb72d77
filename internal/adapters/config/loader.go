// Package config loads the optional kiln.yaml project file.
package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// SupportedVersion is the only kiln.yaml schema version understood by the loader.
const SupportedVersion = "1"

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
	FS     FileSystem
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return NewLoaderWithFS(logger, NewOSFS())
}

// NewLoaderWithFS creates a Loader that reads through fsys.
func NewLoaderWithFS(logger ports.Logger, fsys FileSystem) *Loader {
	return &Loader{Logger: logger, FS: fsys}
}

// Load resolves the pipeline for the project containing cwd.
func (l *Loader) Load(cwd string) (*domain.Pipeline, error) {
	absCwd, err := filepath.Abs(cwd)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrFailedToGetRoot.Error()), "cwd", cwd)
	}

	configPath, found := l.findConfiguration(absCwd)
	if !found {
		return domain.DefaultPipeline(absCwd), nil
	}

	var kilnfile Kilnfile
	if err := l.readAndUnmarshalYAML(configPath, &kilnfile); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	if kilnfile.Version != "" && kilnfile.Version != SupportedVersion {
		l.Logger.Warn(fmt.Sprintf("unknown version %q in %s, reading it as version %s",
			kilnfile.Version, domain.ConfigFileName, SupportedVersion))
	}

	p, err := buildPipeline(resolveRoot(configPath, kilnfile.Root), &kilnfile)
	if err != nil {
		return nil, zerr.With(err, "path", configPath)
	}
	if err := validatePipeline(p); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}
	return p, nil
}

// DiscoverRoot returns the directory holding the nearest kiln.yaml, or cwd.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	absCwd, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrFailedToGetRoot.Error()), "cwd", cwd)
	}
	if configPath, found := l.findConfiguration(absCwd); found {
		return filepath.Dir(configPath), nil
	}
	return absCwd, nil
}

func (l *Loader) findConfiguration(cwd string) (string, bool) {
	currentDir := cwd
	for {
		configPath := filepath.Join(currentDir, domain.ConfigFileName)
		if info, err := l.FS.Stat(configPath); err == nil && !info.IsDir() {
			return configPath, true
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", false
		}
		currentDir = parentDir
	}
}

func buildPipeline(root string, kf *Kilnfile) (*domain.Pipeline, error) {
	p := domain.DefaultPipeline(root)
	if kf.Output != "" {
		p.Output = filepath.Clean(kf.Output)
	}

	if s := kf.Styles; s != nil {
		setString(&p.Styles.Root, s.Root)
		setString(&p.Styles.Glob, s.Glob)
		setString(&p.Styles.Output, s.Output)
		if s.OutputStyle != "" {
			p.Styles.OutputStyle = domain.StyleOutputStyle(s.OutputStyle)
		}
		if len(s.IncludePaths) > 0 {
			p.Styles.IncludePaths = slices.Clone(s.IncludePaths)
		}
	}

	if s := kf.Scripts; s != nil {
		setString(&p.Scripts.Root, s.Root)
		setString(&p.Scripts.Entry, s.Entry)
		setString(&p.Scripts.Glob, s.Glob)
		setString(&p.Scripts.Output, s.Output)
		if s.Target != "" {
			p.Scripts.Target = strings.ToLower(s.Target)
		}
		setBool(&p.Scripts.SourceMap, s.SourceMap)
		setBool(&p.Scripts.Minify, s.Minify)
	}

	if i := kf.Images; i != nil {
		setString(&p.Images.Root, i.Root)
		setString(&p.Images.Glob, i.Glob)
		setString(&p.Images.Output, i.Output)
		setBool(&p.Images.Progressive, i.Progressive)
		setBool(&p.Images.Interlaced, i.Interlaced)
		setBool(&p.Images.Quantize, i.Quantize)
		if i.JPEGQuality != nil {
			p.Images.JPEGQuality = *i.JPEGQuality
		}
		if i.SVGPrecision != nil {
			p.Images.SVGPrecision = *i.SVGPrecision
		}
	}

	if kf.Watch != nil && kf.Watch.Debounce != "" {
		d, err := time.ParseDuration(kf.Watch.Debounce)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidConfig.Error()), "field", "watch.debounce")
		}
		p.Watch.Debounce = d
	}

	return p, nil
}

func validatePipeline(p *domain.Pipeline) error {
	if err := p.ValidateOutput(); err != nil {
		return err
	}

	switch p.Styles.OutputStyle {
	case domain.StyleCompressed, domain.StyleExpanded:
	default:
		return invalidField("styles.outputStyle", p.Styles.OutputStyle)
	}

	if !slices.Contains(domain.ScriptTargets, p.Scripts.Target) {
		return invalidField("scripts.target", p.Scripts.Target)
	}

	if p.Images.JPEGQuality < 1 || p.Images.JPEGQuality > 100 {
		return invalidField("images.jpegQuality", p.Images.JPEGQuality)
	}
	if p.Images.SVGPrecision < 0 {
		return invalidField("images.svgPrecision", p.Images.SVGPrecision)
	}
	if p.Watch.Debounce < 0 {
		return invalidField("watch.debounce", p.Watch.Debounce)
	}

	for field, glob := range map[string]string{
		"styles.glob":  p.Styles.Glob,
		"scripts.glob": p.Scripts.Glob,
		"images.glob":  p.Images.Glob,
	} {
		if filepath.IsAbs(glob) {
			return invalidField(field, glob)
		}
	}
	return nil
}

func invalidField(field string, value any) error {
	err := domain.Annotate(domain.ErrInvalidConfig, "field", field)
	return zerr.With(err, "value", value)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func resolveRoot(configPath, configuredRoot string) string {
	configDir := filepath.Dir(configPath)
	if configuredRoot == "" {
		return filepath.Clean(configDir)
	}
	if filepath.IsAbs(configuredRoot) {
		return filepath.Clean(configuredRoot)
	}
	return filepath.Clean(filepath.Join(configDir, configuredRoot))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func (l *Loader) readAndUnmarshalYAML(configPath string, target *Kilnfile) error {
	configFile, err := l.FS.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}
	return nil
}
