// Package csvexport writes a decoded flight's CSV rendering to disk,
// optionally gzip-compressed.
package csvexport

import (
	"os"

	"github.com/klauspost/compress/gzip"

	"jpiedm/edm"
)

// WriteCSV writes f's CSV rendering to path, gzip-compressing it when
// gzipped is true (in which case path should end in ".gz").
func WriteCSV(path string, f *edm.Flight, gzipped bool) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if !gzipped {
		_, err := file.WriteString(f.ToCSV())
		return err
	}

	gw := gzip.NewWriter(file)
	if _, err := gw.Write([]byte(f.ToCSV())); err != nil {
		gw.Close()
		return err
	}
	return gw.Close()
}
