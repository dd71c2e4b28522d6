// Command jpidump decodes a JPI EDM flight-data file and prints a
// colorized summary table, optionally exporting each flight's CSV
// (gzip-compressed or not) to an output directory.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/lestrrat-go/strftime"
	. "github.com/logrusorgru/aurora"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/tzneal/coordconv"
	"gopkg.in/yaml.v3"

	"jpiedm/csvexport"
	"jpiedm/edm"
)

type config struct {
	TempUnit   string `yaml:"temp_unit"`
	OutputDir  string `yaml:"output_dir"`
	TimeFormat string `yaml:"time_format"`
}

const defaultTimeFormat = "%Y-%m-%d %H:%M:%S"

func loadConfig(path string) (*config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

func main() {
	var (
		configPath = pflag.StringP("config", "c", "", "optional YAML config file")
		tempUnit   = pflag.StringP("temp-unit", "t", "", "output temperature unit: celsius, fahrenheit, original")
		outputDir  = pflag.StringP("output-dir", "o", "", "directory to write per-flight CSV files (empty: summary only)")
		gzipFlag   = pflag.Bool("gzip", false, "gzip-compress exported CSV files")
		verbose    = pflag.BoolP("verbose", "v", false, "enable debug logging")
	)
	pflag.Parse()

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if pflag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: jpidump [flags] <edm-file>")
		os.Exit(2)
	}

	cfg := &config{TempUnit: "original", TimeFormat: defaultTimeFormat}
	if *configPath != "" {
		loaded, err := loadConfig(*configPath)
		if err != nil {
			log.WithError(err).Fatal("loading config")
		}
		cfg = loaded
	}
	if *tempUnit != "" {
		cfg.TempUnit = *tempUnit
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	unit := parseTempUnit(cfg.TempUnit)

	buf, err := os.ReadFile(pflag.Arg(0))
	if err != nil {
		log.WithError(err).Fatal("reading file")
	}

	parser, err := edm.Open(buf, unit)
	if err != nil {
		log.WithError(err).Fatal("opening EDM file")
	}

	fmt.Println(Bold(Sprintf("Tail %s  Model %s  Flights %d",
		Green(parser.TailNumber()), Green(parser.ModelString()), parser.FlightCount())))

	for _, f := range parser.Flights() {
		printFlightSummary(f, cfg.TimeFormat)
		if cfg.OutputDir != "" && !f.Empty() {
			if err := exportFlight(cfg.OutputDir, parser.TailNumber(), f, *gzipFlag); err != nil {
				log.WithError(err).WithField("flight", f.Number).Warn("exporting CSV")
			}
		}
	}
}

func parseTempUnit(s string) edm.TempUnit {
	switch s {
	case "celsius":
		return edm.TempCelsius
	case "fahrenheit":
		return edm.TempFahrenheit
	default:
		return edm.TempOriginal
	}
}

func printFlightSummary(f *edm.Flight, timeFormat string) {
	status := Green("ok")
	if !f.Valid() {
		status = Red("invalid")
	}
	started := ""
	if f.Header != nil && !f.Header.StartTime.IsZero() {
		if s, err := strftime.Format(timeFormat, f.Header.StartTime); err == nil {
			started = s
		}
	}
	fmt.Printf(" flight %-6d start=%-20s samples=%-6d duration=%5.1fh gps=%-5v %s\n",
		f.Number, started, len(f.Samples), f.DurationHours(), f.HasGPS(), status)

	for _, w := range f.ParseWarnings() {
		fmt.Println("   " + Yellow("warning: "+w).String())
	}

	if f.HasGPS() && len(f.Samples) > 0 {
		printLastFixUTM(f)
	}
}

// printLastFixUTM shows the last GPS fix's UTM projection alongside
// the raw lat/long, using coordconv's ellipsoidal conversion rather
// than the flat degrees CSV export carries.
func printLastFixUTM(f *edm.Flight) {
	for i := len(f.Samples) - 1; i >= 0; i-- {
		s := f.Samples[i]
		if s.Lat == nil || s.Long == nil {
			continue
		}
		latlng := s2.LatLng{Lat: s1.Angle(*s.Lat) * s1.Degree, Lng: s1.Angle(*s.Long) * s1.Degree}
		utm, err := coordconv.DefaultUTMConverter.ConvertFromGeodetic(latlng, 0)
		if err != nil {
			return
		}
		fmt.Printf("   last fix: zone %d%c  easting=%.0f  northing=%.0f\n",
			utm.Zone, hemisphereRune(utm.Hemisphere), utm.Easting, utm.Northing)
		return
	}
}

func hemisphereRune(h coordconv.Hemisphere) rune {
	switch h {
	case coordconv.HemisphereNorth:
		return 'N'
	case coordconv.HemisphereSouth:
		return 'S'
	default:
		return '?'
	}
}

func exportFlight(dir, tailNumber string, f *edm.Flight, gzipped bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := tailNumber + "_" + strconv.Itoa(int(f.Number)) + ".csv"
	if gzipped {
		name += ".gz"
	}
	return csvexport.WriteCSV(filepath.Join(dir, name), f, gzipped)
}
