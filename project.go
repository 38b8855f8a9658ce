package main

import (
	"io/ioutil"
	"os"

	"github.com/ztrue/tracerr"
	"gopkg.in/yaml.v2"
)

// ProjectFile is read from the working directory by check and build.
const ProjectFile = "ojava.yml"

type project struct {
	Package    string `yaml:"package"`
	Library    string `yaml:"library"`
	Source     string `yaml:"source"`
	Output     string `yaml:"output"`
	Stdlib     *bool  `yaml:"stdlib,omitempty"`
	ImportPath string `yaml:"import_path"`
}

func defaultProject(name string) project {
	stdlib := true
	return project{
		Package:    name,
		Library:    "lib",
		Source:     "src",
		Output:     "generated",
		Stdlib:     &stdlib,
		ImportPath: name + "/generated",
	}
}

// withDefaults fills every field left empty by the project file.
func (p project) withDefaults() project {
	name := p.Package
	if name == "" {
		name = "app"
	}
	def := defaultProject(name)

	if p.Package == "" {
		p.Package = def.Package
	}
	if p.Library == "" {
		p.Library = def.Library
	}
	if p.Source == "" {
		p.Source = def.Source
	}
	if p.Output == "" {
		p.Output = def.Output
	}
	if p.Stdlib == nil {
		p.Stdlib = def.Stdlib
	}
	if p.ImportPath == "" {
		p.ImportPath = p.Package + "/" + p.Output
	}
	return p
}

func (p project) useStdlib() bool {
	return p.Stdlib == nil || *p.Stdlib
}

// loadProject reads path. A missing file yields the defaults.
func loadProject(path string) (project, error) {
	data, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		return project{}.withDefaults(), nil
	}
	if err != nil {
		return project{}, tracerr.Wrap(err)
	}

	var p project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return project{}, tracerr.Wrap(err)
	}
	return p.withDefaults(), nil
}

func writeProject(path string, p project) error {
	out, err := yaml.Marshal(p)
	if err != nil {
		return tracerr.Wrap(err)
	}
	return tracerr.Wrap(ioutil.WriteFile(path, out, 0644))
}
