// Command jpiserver opens a JPI EDM file, persists its decoded flights
// to a durable store, and serves them over HTTP while broadcasting
// each sample to connected websocket clients (and, optionally, a NATS
// subject) as it is replayed.
package main

import (
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"jpiedm/api"
	"jpiedm/edm"
	"jpiedm/store"
	"jpiedm/stream"
)

func main() {
	var (
		listenAddr = pflag.StringP("listen", "l", ":8080", "HTTP listen address")
		sqlitePath = pflag.String("sqlite", "", "path to a SQLite store (empty: in-memory hot cache only)")
		natsURL    = pflag.String("nats", "", "NATS server URL (empty: websocket broadcast only)")
		natsSubj   = pflag.String("nats-subject", "jpiedm.samples", "NATS subject prefix for published samples")
		replayRate = pflag.Duration("replay-rate", 50*time.Millisecond, "delay between broadcast samples during replay")
	)
	pflag.Parse()

	log := logrus.New().WithField("component", "jpiserver")

	if pflag.NArg() < 1 {
		log.Fatal("usage: jpiserver [flags] <edm-file>")
	}

	buf, err := os.ReadFile(pflag.Arg(0))
	if err != nil {
		log.WithError(err).Fatal("reading file")
	}
	parser, err := edm.Open(buf, edm.TempOriginal)
	if err != nil {
		log.WithError(err).Fatal("opening EDM file")
	}

	hotCache := store.NewHotCache(10*time.Minute, 5*time.Minute)

	var sqliteStore *store.SQLiteStore
	if *sqlitePath != "" {
		sqliteStore, err = store.OpenSQLite(*sqlitePath)
		if err != nil {
			log.WithError(err).Fatal("opening sqlite store")
		}
		defer sqliteStore.Close()
	}

	broadcaster := stream.NewSampleBroadcaster(log)

	var natsPub *stream.NATSPublisher
	if *natsURL != "" {
		natsPub, err = stream.DialNATS(*natsURL, *natsSubj)
		if err != nil {
			log.WithError(err).Fatal("connecting to nats")
		}
		defer natsPub.Close()
	}

	persistAndCache(parser, sqliteStore, hotCache, log)

	go replayFlights(parser, broadcaster, natsPub, *replayRate, log)

	srv := api.NewServer(parser, log)
	mux := srv.Router()
	mux.Handle("/stream", http.HandlerFunc(broadcaster.ServeHTTP))

	log.WithField("addr", *listenAddr).Info("listening")
	if err := http.ListenAndServe(*listenAddr, mux); err != nil {
		log.WithError(err).Fatal("serving")
	}
}

// persistAndCache decodes every flight once up front so the HTTP
// handlers and the durable store both see a warm, populated parser
// cache rather than paying per-request decode latency.
func persistAndCache(parser *edm.Parser, sqliteStore *store.SQLiteStore, hot *store.HotCache, log *logrus.Entry) {
	for _, f := range parser.Flights() {
		key := store.CacheKey([]byte(f.ToCSV()), edm.TempOriginal)
		hot.Set(key, f)

		if sqliteStore == nil {
			continue
		}
		if err := sqliteStore.Put(parser.TailNumber(), parser.ModelString(), f); err != nil {
			log.WithError(err).WithField("flight", f.Number).Warn("persisting flight")
		}
	}
}

// replayFlights walks each flight's samples in order, publishing them
// to every configured sink at replayRate, simulating the live feed a
// connected engine monitor would produce.
func replayFlights(parser *edm.Parser, broadcaster *stream.SampleBroadcaster, natsPub *stream.NATSPublisher, replayRate time.Duration, log *logrus.Entry) {
	for _, f := range parser.Flights() {
		for _, s := range f.Samples {
			broadcaster.Publish(f.Number, s)
			if natsPub != nil {
				if err := natsPub.Publish(f.Number, s); err != nil {
					log.WithError(err).Debug("publishing to nats")
				}
			}
			time.Sleep(replayRate)
		}
	}
}
