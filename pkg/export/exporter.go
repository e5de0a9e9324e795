package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lintang-b-s/streetscan/pkg"
	"github.com/lintang-b-s/streetscan/pkg/datastructure"
	"go.uber.org/zap"
)

const (
	ATTRIBUTE_ORDER       = "order"
	ATTRIBUTE_INDEX       = "index"
	ATTRIBUTE_NAME        = "Name"
	ATTRIBUTE_DESCRIPTION = "Description"

	GEOJSON_SUFFIX = ".geojson"
)

type Exporter struct {
	logger *zap.Logger
}

func NewExporter(logger *zap.Logger) *Exporter {
	return &Exporter{logger: logger}
}

// Annotate names every stop that has an order and an index after its visit
// order and drops the shape metadata.
func Annotate(route *datastructure.Route) {
	for _, stop := range route.Stops {
		order, ok := stop.Attributes[ATTRIBUTE_ORDER]
		if !ok {
			continue
		}
		index, ok := stop.Attributes[ATTRIBUTE_INDEX]
		if !ok {
			continue
		}
		stop.Attributes[ATTRIBUTE_NAME] = order
		stop.Attributes[ATTRIBUTE_DESCRIPTION] = fmt.Sprintf("Stop %s @ %s", index, order)
	}
	route.ShapeMeta = nil
}

type document struct {
	path  string
	write func(w io.Writer, route *datastructure.Route) error
	tmp   string
}

// Export writes route as GPX to outputPath and as GeoJSON to
// outputPath.geojson. Either both files are written or neither is.
func (ex *Exporter) Export(route *datastructure.Route, outputPath string) error {
	Annotate(route)

	docs := []*document{
		{path: outputPath + GEOJSON_SUFFIX, write: WriteGeoJSON},
		{path: outputPath, write: WriteGPX},
	}
	defer func() {
		for _, d := range docs {
			if d.tmp != "" {
				os.Remove(d.tmp)
			}
		}
	}()

	for _, d := range docs {
		tmp, err := writeTemp(d.path, route, d.write)
		if err != nil {
			return fmt.Errorf("write %s: %w", d.path, err)
		}
		d.tmp = tmp
	}

	for _, d := range docs {
		if err := os.Rename(d.tmp, d.path); err != nil {
			return fmt.Errorf("rename %s: %w", d.path, err)
		}
		d.tmp = ""
		ex.logger.Info("Route written", zap.String("file", d.path))
	}
	return nil
}

func writeTemp(target string, route *datastructure.Route, write func(w io.Writer, route *datastructure.Route) error) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(target), filepath.Base(target)+"-*"+pkg.TEMP_FILE_SUFFIX)
	if err != nil {
		return "", err
	}
	if err := write(f, route); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
