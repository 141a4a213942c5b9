package main

import (
	"bytes"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cloudsketch/cloudsketch/pkg/cfn"
	"github.com/cloudsketch/cloudsketch/pkg/config"
	"github.com/cloudsketch/cloudsketch/pkg/construct"
	"github.com/cloudsketch/cloudsketch/pkg/grouping"
	"github.com/cloudsketch/cloudsketch/pkg/layout"
	"github.com/cloudsketch/cloudsketch/pkg/placement"
	"github.com/cloudsketch/cloudsketch/pkg/render"
	"github.com/cloudsketch/cloudsketch/pkg/render/docs"
	dotrender "github.com/cloudsketch/cloudsketch/pkg/render/dot"
	"github.com/cloudsketch/cloudsketch/pkg/render/drawio"
	"github.com/cloudsketch/cloudsketch/pkg/render/svg"
)

// renderAll runs the shared back half of every command: layout the store in
// the configured mode, then emit each requested format into the out dir.
func renderAll(cfg config.Config, region string, store *construct.Store, rels *construct.RelationshipSet) error {
	if store.Len() == 0 {
		return layout.ErrNoResources
	}

	engine := layout.NewEngine(cfg.Policy())
	var diagram *layout.Diagram
	if cfg.Mode == config.ModeRelationships {
		diagram = engine.LayoutGroups(grouping.Build(store, rels), rels)
	} else {
		diagram = engine.LayoutHierarchy(placement.Resolve(store, region), rels)
	}

	prefix := cfg.AppName + "-"
	var files []render.File
	if cfg.HasFormat("svg") {
		files = append(files, &svg.File{FilenamePrefix: prefix, Diagram: diagram})
	}
	if cfg.HasFormat("drawio") {
		files = append(files, &drawio.File{FilenamePrefix: prefix, Diagram: diagram})
	}
	if cfg.HasFormat("dot") {
		files = append(files, &dotrender.File{FilenamePrefix: prefix, Diagram: diagram})
	}
	if cfg.HasFormat("html") {
		files = append(files, &docs.File{
			FilenamePrefix: prefix,
			AppName:        cfg.AppName,
			Region:         region,
			Store:          store,
			Relationships:  rels,
		})
	}
	if cfg.HasFormat("cfn") {
		files = append(files, &cfn.File{
			FilenamePrefix: prefix,
			AppName:        cfg.AppName,
			Region:         region,
			Store:          store,
		})
	}

	if err := render.WriteFiles(cfg.OutDir, files...); err != nil {
		return err
	}
	if cfg.HasFormat("dot") {
		rasterize(cfg, prefix, diagram)
	}
	zap.S().Infof("wrote %d artifacts to %s", len(files), cfg.OutDir)
	return nil
}

// rasterize shells out to graphviz for a PNG companion to the DOT file.
// Missing graphviz downgrades to a warning; the .gv file already exists.
func rasterize(cfg config.Config, prefix string, diagram *layout.Diagram) {
	buf := new(bytes.Buffer)
	if _, err := (&dotrender.File{Diagram: diagram}).WriteTo(buf); err != nil {
		zap.S().Warnf("dot render failed: %v", err)
		return
	}
	png, err := dotrender.Raster(buf, "png")
	if err != nil {
		zap.S().Warnf("graphviz raster skipped: %v", err)
		return
	}
	path := filepath.Join(cfg.OutDir, prefix+"diagram.png")
	if err := os.WriteFile(path, png, 0644); err != nil {
		zap.S().Warnf("writing %s: %v", path, err)
	}
}
