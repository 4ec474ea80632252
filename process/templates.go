package process

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"

	"cssbust/bust"
	"cssbust/config"
)

// Values is a struct that holds variables we make available for path
// template expansion, one asset at a time.
type Values struct {
	Origin string // reference path as written in the stylesheet
	Dir    string // Origin up to and including last "/"
	Name   string // last element of Origin
	Stem   string // Name without extension
	Ext    string // extension of Name including "."
	Asset  string // resolved filesystem path

	mtime *bust.Generator
	cache *bust.Cache
}

// MTime returns modification time marker of the asset.
func (v Values) MTime() (string, error) {
	return v.mtime.Generate(v.Asset, v.Origin)
}

// Checksum returns hex digest of the asset content.
func (v Values) Checksum(algorithm string) (string, error) {
	return v.cache.Checksum(v.Asset, bust.NormalizeAlgorithm(algorithm))
}

func newValues(asset, origin string, mtime *bust.Generator, cache *bust.Cache) Values {
	v := Values{Origin: origin, Asset: asset, mtime: mtime, cache: cache}
	if i := strings.LastIndexByte(origin, '/'); i >= 0 {
		v.Dir, v.Name = origin[:i+1], origin[i+1:]
	} else {
		v.Name = origin
	}
	v.Ext = path.Ext(v.Name)
	v.Stem = strings.TrimSuffix(v.Name, v.Ext)
	return v
}

func funcMap() template.FuncMap {
	fm := sprig.FuncMap()
	fm["slug"] = slug.Make
	return fm
}

// newPathTemplate compiles path template and returns custom cachebuster
// function which expands it for every asset. Checksums share cache with the
// rest of the run.
func newPathTemplate(text string, cache *bust.Cache) (bust.CustomFunc, error) {
	name := string(config.PathTemplateFieldName)
	tmpl, err := template.New(name).Funcs(funcMap()).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("unable to parse template field %s: %w", name, err)
	}
	mtime := bust.NewGenerator(bust.Strategy{Kind: bust.StrategyKindMtime}, cache)

	return func(asset, origin string) (string, error) {
		buf := new(bytes.Buffer)
		if err := tmpl.Execute(buf, newValues(asset, origin, mtime, cache)); err != nil {
			return "", err
		}
		return strings.TrimSpace(buf.String()), nil
	}, nil
}
